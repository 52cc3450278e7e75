package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"melodin/internal/apperr"
	"melodin/internal/models"
)

// CreatePlaylist persists a new playlist and returns it with the
// generated id and creation timestamp filled in.
func (s *Store) CreatePlaylist(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error) {
	if playlist == nil {
		return nil, fmt.Errorf("%w: playlist is required", apperr.ErrInvalid)
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (user_id, name, description, is_public, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, playlist.UserID, playlist.Name, nullIfEmpty(playlist.Description), playlist.IsPublic,
		pq.Array(playlist.Tags), time.Now().UTC()).Scan(&playlist.ID, &playlist.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	return playlist, nil
}

// ListPlaylists returns every playlist in the store.
func (s *Store) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	return s.queryPlaylists(ctx, `
		SELECT id, user_id, name, description, is_public, tags, created_at
		FROM playlists
		ORDER BY created_at DESC, id DESC
	`)
}

// PlaylistsByOwner returns the playlists owned by the given user.
func (s *Store) PlaylistsByOwner(ctx context.Context, ownerID int64) ([]*models.Playlist, error) {
	return s.queryPlaylists(ctx, `
		SELECT id, user_id, name, description, is_public, tags, created_at
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerID)
}

// VisiblePlaylists returns the playlists the given user may see: their
// own plus every public one. The predicate runs in the database rather
// than over a full scan.
func (s *Store) VisiblePlaylists(ctx context.Context, userID int64) ([]*models.Playlist, error) {
	return s.queryPlaylists(ctx, `
		SELECT id, user_id, name, description, is_public, tags, created_at
		FROM playlists
		WHERE user_id = $1 OR is_public
		ORDER BY created_at DESC, id DESC
	`, userID)
}

// PlaylistByID returns a single playlist.
func (s *Store) PlaylistByID(ctx context.Context, id int64) (*models.Playlist, error) {
	var playlist models.Playlist
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, is_public, tags, created_at
		FROM playlists
		WHERE id = $1
	`, id).Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &description,
		&playlist.IsPublic, pq.Array(&playlist.Tags), &playlist.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("playlist %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	playlist.Description = description.String
	return &playlist, nil
}

// UpdatePlaylist replaces the mutable fields of an existing playlist.
// The owner and creation timestamp are never touched.
func (s *Store) UpdatePlaylist(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error) {
	if playlist == nil {
		return nil, fmt.Errorf("%w: playlist is required", apperr.ErrInvalid)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE playlists
		SET name = $1, description = $2, is_public = $3, tags = $4
		WHERE id = $5
	`, playlist.Name, nullIfEmpty(playlist.Description), playlist.IsPublic,
		pq.Array(playlist.Tags), playlist.ID)
	if err != nil {
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("playlist %d: %w", playlist.ID, apperr.ErrNotFound)
	}
	return s.PlaylistByID(ctx, playlist.ID)
}

// DeletePlaylist removes a playlist together with its membership rows.
// Both deletes happen in one transaction so no orphaned memberships
// can be observed.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete playlist songs: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM playlists
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("playlist %d: %w", id, apperr.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit playlist delete: %w", err)
	}
	tx = nil
	return nil
}

func (s *Store) queryPlaylists(ctx context.Context, query string, args ...interface{}) ([]*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		var playlist models.Playlist
		var description sql.NullString
		if err := rows.Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &description,
			&playlist.IsPublic, pq.Array(&playlist.Tags), &playlist.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlist.Description = description.String
		playlists = append(playlists, &playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}
