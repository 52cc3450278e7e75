package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"melodin/internal/models"
)

// handleRatings handles GET (list, optionally by username) and POST
// (upsert) on the ratings collection.
func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRatings(w, r)
	case http.MethodPost:
		s.addRating(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRatingQueries serves the derived song aggregates and the
// single-rating lookup.
func (s *Server) handleRatingQueries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/v1/ratings/") {
	case "top":
		s.aggregate(w, r, s.ratings.TopRated)
	case "lowest":
		s.aggregate(w, r, s.ratings.LowestRated)
	case "popular":
		s.aggregate(w, r, s.ratings.MostPopular)
	case "find":
		s.findRating(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) listRatings(w http.ResponseWriter, r *http.Request) {
	var (
		ratings []models.Rating
		err     error
	)
	if username := r.URL.Query().Get("username"); username != "" {
		ratings, err = s.ratings.ByUser(r.Context(), username)
	} else {
		ratings, err = s.ratings.All(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Ratings []models.Rating `json:"ratings"`
	}{Ratings: ratings})
}

func (s *Server) addRating(w http.ResponseWriter, r *http.Request) {
	var rating models.Rating
	if err := json.NewDecoder(r.Body).Decode(&rating); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	affected, err := s.ratings.Add(r.Context(), rating)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func (s *Server) findRating(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	songID, err := strconv.ParseInt(r.URL.Query().Get("song_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid song ID", http.StatusBadRequest)
		return
	}

	rating, err := s.ratings.Find(r.Context(), username, songID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

func (s *Server) aggregate(w http.ResponseWriter, r *http.Request, query func(ctx context.Context) (int64, error)) {
	songID, err := query(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"song_id": songID})
}
