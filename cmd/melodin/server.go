package main

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"melodin/internal/app/playlists"
	"melodin/internal/app/ratings"
	"melodin/internal/app/users"
	"melodin/internal/auth"
	"melodin/internal/httpapi"
	"melodin/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store, log zerolog.Logger) http.Handler {
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	playlistSvc := playlists.New(dataStore, dataStore, log)
	ratingSvc := ratings.New(dataStore, log)
	userSvc := users.New(dataStore, issuer, log)

	api := httpapi.New(playlistSvc, ratingSvc, userSvc, issuer, log)
	return withCORS(cfg.AllowedOrigins, api.Routes())
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
