// Package ratings validates and forwards rating upserts and the
// song-aggregate queries built over the ratings table.
package ratings

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"melodin/internal/apperr"
	"melodin/internal/models"
)

// Store captures the rating persistence and aggregate queries the
// service depends on. Aggregate queries report apperr.ErrNotFound when
// the ratings table is empty; callers treat that as "no result", not
// as a failure.
type Store interface {
	UpsertRating(ctx context.Context, rating models.Rating) (int64, error)
	AllRatings(ctx context.Context) ([]models.Rating, error)
	RatingsByUser(ctx context.Context, username string) ([]models.Rating, error)
	RatingByUserAndSong(ctx context.Context, username string, songID int64) (*models.Rating, error)
	TopRatedSongID(ctx context.Context) (int64, error)
	LowestRatedSongID(ctx context.Context) (int64, error)
	MostPopularSongID(ctx context.Context) (int64, error)
}

// Service coordinates rating updates and aggregate queries.
type Service struct {
	store Store
	log   zerolog.Logger
}

// New constructs a ratings Service backed by the given Store.
func New(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log}
}

// Add inserts a rating or updates it in place when the user has already
// rated the song. Returns the number of affected rows.
func (s *Service) Add(ctx context.Context, rating models.Rating) (int64, error) {
	if strings.TrimSpace(rating.Username) == "" {
		return 0, fmt.Errorf("%w: username is required", apperr.ErrInvalid)
	}
	if rating.SongID <= 0 {
		return 0, fmt.Errorf("%w: song id must be positive", apperr.ErrInvalid)
	}

	s.log.Info().Str("username", rating.Username).Int64("song_id", rating.SongID).
		Float64("user_rating", rating.UserRating).Msg("upserting rating")
	return s.store.UpsertRating(ctx, rating)
}

// All returns every rating.
func (s *Service) All(ctx context.Context) ([]models.Rating, error) {
	return s.store.AllRatings(ctx)
}

// ByUser returns every rating submitted by one user.
func (s *Service) ByUser(ctx context.Context, username string) ([]models.Rating, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", apperr.ErrInvalid)
	}
	return s.store.RatingsByUser(ctx, username)
}

// Find returns one rating by username and song id.
func (s *Service) Find(ctx context.Context, username string, songID int64) (*models.Rating, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", apperr.ErrInvalid)
	}
	if songID <= 0 {
		return nil, fmt.Errorf("%w: song id must be positive", apperr.ErrInvalid)
	}
	return s.store.RatingByUserAndSong(ctx, username, songID)
}

// TopRated returns the song with the highest mean rating.
func (s *Service) TopRated(ctx context.Context) (int64, error) {
	return s.store.TopRatedSongID(ctx)
}

// LowestRated returns the song with the lowest mean rating.
func (s *Service) LowestRated(ctx context.Context) (int64, error) {
	return s.store.LowestRatedSongID(ctx)
}

// MostPopular returns the song with the most ratings.
func (s *Service) MostPopular(ctx context.Context) (int64, error) {
	return s.store.MostPopularSongID(ctx)
}
