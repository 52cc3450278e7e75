// Package httpapi exposes the playlist, rating, and account services
// over REST. Handlers translate the service error kinds into HTTP
// status codes; no store internals leak into responses.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"melodin/internal/apperr"
	"melodin/internal/auth"
	"melodin/internal/middleware"
	"melodin/internal/models"
	"melodin/internal/store"
)

// PlaylistService coordinates playlist and membership operations.
type PlaylistService interface {
	Create(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error)
	List(ctx context.Context) ([]*models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Playlist, error)
	ListVisible(ctx context.Context, userID int64) ([]*models.Playlist, error)
	Get(ctx context.Context, id int64) (*models.Playlist, error)
	Update(ctx context.Context, playlist *models.Playlist, requestingUserID int64) (*models.Playlist, error)
	Delete(ctx context.Context, playlistID, requestingUserID int64) error
	AddSong(ctx context.Context, playlistID, songID, requestingUserID int64) (*models.PlaylistSong, error)
	RemoveSong(ctx context.Context, playlistID, songID, requestingUserID int64) (bool, error)
	Songs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error)
	SongInPlaylist(ctx context.Context, playlistID, songID int64) (bool, error)
	PlaylistsContaining(ctx context.Context, songID int64) ([]int64, error)
	ClearSongs(ctx context.Context, playlistID, requestingUserID int64) (int64, error)
}

// RatingService coordinates rating upserts and aggregate queries.
type RatingService interface {
	Add(ctx context.Context, rating models.Rating) (int64, error)
	All(ctx context.Context) ([]models.Rating, error)
	ByUser(ctx context.Context, username string) ([]models.Rating, error)
	Find(ctx context.Context, username string, songID int64) (*models.Rating, error)
	TopRated(ctx context.Context) (int64, error)
	LowestRated(ctx context.Context) (int64, error)
	MostPopular(ctx context.Context) (int64, error)
}

// UserService handles account signup and login.
type UserService interface {
	Signup(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	playlists PlaylistService
	ratings   RatingService
	users     UserService
	issuer    *auth.Issuer
	log       zerolog.Logger
}

// New configures a Server with the given services.
func New(playlists PlaylistService, ratings RatingService, users UserService, issuer *auth.Issuer, log zerolog.Logger) *Server {
	return &Server{
		playlists: playlists,
		ratings:   ratings,
		users:     users,
		issuer:    issuer,
		log:       log,
	}
}

// Routes exposes the HTTP handlers wrapped in logging and recovery.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("/api/v1/auth/login", s.handleLogin)

	mux.HandleFunc("/api/v1/playlists", s.handlePlaylists)
	mux.HandleFunc("/api/v1/playlists/", s.handlePlaylist)

	mux.HandleFunc("/api/v1/ratings", s.handleRatings)
	mux.HandleFunc("/api/v1/ratings/", s.handleRatingQueries)

	return middleware.RequestLogging(s.log)(middleware.Recovery(s.log)(mux))
}

// requestUser extracts and verifies the bearer token, returning the
// requesting user's id.
func (s *Server) requestUser(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return 0, auth.ErrInvalidToken
	}
	return s.issuer.Verify(strings.TrimPrefix(header, "Bearer "))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to status codes. Unclassified
// store failures surface as an opaque 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(err))
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, store.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody(err))
	case errors.Is(err, apperr.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody(err))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(err))
	default:
		s.log.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
