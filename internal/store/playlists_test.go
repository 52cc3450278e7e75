package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"melodin/internal/apperr"
	"melodin/internal/models"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreatePlaylistSuccess(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO playlists (user_id, name, description, is_public, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`)).
		WithArgs(int64(1), "Road Trip", "Windows down", true,
			pq.Array([]string{"rock", "summer"}), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	playlist, err := s.CreatePlaylist(context.Background(), &models.Playlist{
		UserID:      1,
		Name:        "Road Trip",
		Description: "Windows down",
		IsPublic:    true,
		Tags:        []string{"rock", "summer"},
	})
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if playlist.ID != 7 {
		t.Fatalf("expected id 7, got %d", playlist.ID)
	}
	if !playlist.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %v, got %v", now, playlist.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVisiblePlaylists(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "description", "is_public", "tags", "created_at"}).
		AddRow(int64(2), int64(1), "Mine", "own private", false, "{indie}", now).
		AddRow(int64(3), int64(9), "Theirs", nil, true, "{}", now)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, user_id, name, description, is_public, tags, created_at
		FROM playlists
		WHERE user_id = $1 OR is_public
		ORDER BY created_at DESC, id DESC
	`)).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	playlists, err := s.VisiblePlaylists(context.Background(), 1)
	if err != nil {
		t.Fatalf("VisiblePlaylists: %v", err)
	}
	if len(playlists) != 2 {
		t.Fatalf("expected 2 playlists, got %d", len(playlists))
	}
	if playlists[0].Tags[0] != "indie" {
		t.Fatalf("expected tags scan, got %v", playlists[0].Tags)
	}
	if playlists[1].Description != "" {
		t.Fatalf("NULL description should scan to empty string, got %q", playlists[1].Description)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaylistByIDNotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, user_id, name, description, is_public, tags, created_at
		FROM playlists
		WHERE id = $1
	`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "description", "is_public", "tags", "created_at"}))

	if _, err := s.PlaylistByID(context.Background(), 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePlaylistNotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE playlists
		SET name = $1, description = $2, is_public = $3, tags = $4
		WHERE id = $5
	`)).
		WithArgs("Renamed", nil, false, pq.Array([]string(nil)), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.UpdatePlaylist(context.Background(), &models.Playlist{ID: 99, Name: "Renamed"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeletePlaylistCascades(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM playlist_songs
		WHERE playlist_id = $1
	`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM playlists
		WHERE id = $1
	`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.DeletePlaylist(context.Background(), 7); err != nil {
		t.Fatalf("DeletePlaylist: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeletePlaylistNotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM playlist_songs
		WHERE playlist_id = $1
	`)).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM playlists
		WHERE id = $1
	`)).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := s.DeletePlaylist(context.Background(), 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
