package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"melodin/internal/apperr"
	"melodin/internal/models"
)

// AddSong inserts a (playlist, song) membership row. The duplicate
// pre-check and the insert share one transaction; a unique violation
// slipping past the pre-check under concurrency is still reported as a
// conflict.
func (s *Store) AddSong(ctx context.Context, playlistID, songID int64) (*models.PlaylistSong, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM playlist_songs
			WHERE playlist_id = $1 AND song_id = $2
		)
	`, playlistID, songID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("song %d already in playlist %d: %w", songID, playlistID, apperr.ErrConflict)
	}

	var maxPos sql.NullInt32
	if err := tx.QueryRowContext(ctx, `
		SELECT MAX(position) FROM playlist_songs WHERE playlist_id = $1
	`, playlistID).Scan(&maxPos); err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}
	position := 0
	if maxPos.Valid {
		position = int(maxPos.Int32) + 1
	}

	song := models.PlaylistSong{
		PlaylistID: playlistID,
		SongID:     songID,
		Position:   position,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id, position, added_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, added_at
	`, playlistID, songID, position, time.Now().UTC()).Scan(&song.ID, &song.AddedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("song %d already in playlist %d: %w", songID, playlistID, apperr.ErrConflict)
		}
		return nil, fmt.Errorf("insert playlist song: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit playlist song: %w", err)
	}
	tx = nil
	return &song, nil
}

// SongsByPlaylist lists the membership rows of a playlist in position order.
func (s *Store) SongsByPlaylist(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, playlist_id, song_id, position, added_at
		FROM playlist_songs
		WHERE playlist_id = $1
		ORDER BY position ASC, id ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer rows.Close()

	songs := make([]models.PlaylistSong, 0)
	for rows.Next() {
		var song models.PlaylistSong
		if err := rows.Scan(&song.ID, &song.PlaylistID, &song.SongID, &song.Position, &song.AddedAt); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}

// RemoveSong deletes one membership row. Removing a pair that does not
// exist reports false without an error.
func (s *Store) RemoveSong(ctx context.Context, playlistID, songID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID)
	if err != nil {
		return false, fmt.Errorf("delete playlist song: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// SongInPlaylist reports whether the pair exists.
func (s *Store) SongInPlaylist(ctx context.Context, playlistID, songID int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM playlist_songs
			WHERE playlist_id = $1 AND song_id = $2
		)
	`, playlistID, songID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// PlaylistsBySong returns the ids of every playlist containing the song.
func (s *Store) PlaylistsBySong(ctx context.Context, songID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT playlist_id
		FROM playlist_songs
		WHERE song_id = $1
		ORDER BY playlist_id ASC
	`, songID)
	if err != nil {
		return nil, fmt.Errorf("list playlists by song: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan playlist id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist ids: %w", err)
	}
	return ids, nil
}

// ClearPlaylist removes every membership row of a playlist and returns
// how many were deleted. Zero is a valid result.
func (s *Store) ClearPlaylist(ctx context.Context, playlistID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1
	`, playlistID)
	if err != nil {
		return 0, fmt.Errorf("clear playlist songs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}
