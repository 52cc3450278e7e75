package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"melodin/internal/apperr"
	"melodin/internal/models"
)

// UpsertRating inserts a rating, or updates the stored value in place
// when the (username, song) pair already exists. Returns the number of
// affected rows.
func (s *Store) UpsertRating(ctx context.Context, rating models.Rating) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (username, song_id, user_rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (username, song_id)
		DO UPDATE SET user_rating = EXCLUDED.user_rating
	`, rating.Username, rating.SongID, rating.UserRating)
	if err != nil {
		return 0, fmt.Errorf("upsert rating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// AllRatings returns every rating row.
func (s *Store) AllRatings(ctx context.Context) ([]models.Rating, error) {
	return s.queryRatings(ctx, `
		SELECT username, song_id, user_rating
		FROM ratings
		ORDER BY username ASC, song_id ASC
	`)
}

// RatingsByUser returns every rating submitted by one user.
func (s *Store) RatingsByUser(ctx context.Context, username string) ([]models.Rating, error) {
	return s.queryRatings(ctx, `
		SELECT username, song_id, user_rating
		FROM ratings
		WHERE username = $1
		ORDER BY song_id ASC
	`, username)
}

// RatingByUserAndSong returns a single rating row.
func (s *Store) RatingByUserAndSong(ctx context.Context, username string, songID int64) (*models.Rating, error) {
	var rating models.Rating
	err := s.db.QueryRowContext(ctx, `
		SELECT username, song_id, user_rating
		FROM ratings
		WHERE username = $1 AND song_id = $2
	`, username, songID).Scan(&rating.Username, &rating.SongID, &rating.UserRating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rating for %q on song %d: %w", username, songID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return &rating, nil
}

// TopRatedSongID returns the song with the highest mean rating. Ties
// break on the lowest song id so the result is deterministic.
func (s *Store) TopRatedSongID(ctx context.Context) (int64, error) {
	return s.aggregateSongID(ctx, `
		SELECT song_id
		FROM ratings
		GROUP BY song_id
		ORDER BY AVG(user_rating) DESC, song_id ASC
		LIMIT 1
	`)
}

// LowestRatedSongID returns the song with the lowest mean rating.
func (s *Store) LowestRatedSongID(ctx context.Context) (int64, error) {
	return s.aggregateSongID(ctx, `
		SELECT song_id
		FROM ratings
		GROUP BY song_id
		ORDER BY AVG(user_rating) ASC, song_id ASC
		LIMIT 1
	`)
}

// MostPopularSongID returns the song with the most ratings.
func (s *Store) MostPopularSongID(ctx context.Context) (int64, error) {
	return s.aggregateSongID(ctx, `
		SELECT song_id
		FROM ratings
		GROUP BY song_id
		ORDER BY COUNT(*) DESC, song_id ASC
		LIMIT 1
	`)
}

func (s *Store) aggregateSongID(ctx context.Context, query string) (int64, error) {
	var songID int64
	err := s.db.QueryRowContext(ctx, query).Scan(&songID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no ratings recorded: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("aggregate rating query: %w", err)
	}
	return songID, nil
}

func (s *Store) queryRatings(ctx context.Context, query string, args ...interface{}) ([]models.Rating, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]models.Rating, 0)
	for rows.Next() {
		var rating models.Rating
		if err := rows.Scan(&rating.Username, &rating.SongID, &rating.UserRating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}
