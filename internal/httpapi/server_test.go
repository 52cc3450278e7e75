package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"melodin/internal/apperr"
	"melodin/internal/auth"
	"melodin/internal/models"
	"melodin/internal/store"
)

// playlistStub returns its configured values, or err when set.
type playlistStub struct {
	playlist *models.Playlist
	song     *models.PlaylistSong
	songs    []models.PlaylistSong
	removed  bool
	deleted  int64
	ids      []int64
	err      error
}

func (p *playlistStub) Create(context.Context, *models.Playlist) (*models.Playlist, error) {
	return p.playlist, p.err
}

func (p *playlistStub) List(context.Context) ([]*models.Playlist, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []*models.Playlist{p.playlist}, nil
}

func (p *playlistStub) ListByOwner(context.Context, int64) ([]*models.Playlist, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []*models.Playlist{p.playlist}, nil
}

func (p *playlistStub) ListVisible(context.Context, int64) ([]*models.Playlist, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []*models.Playlist{p.playlist}, nil
}

func (p *playlistStub) Get(context.Context, int64) (*models.Playlist, error) {
	return p.playlist, p.err
}

func (p *playlistStub) Update(context.Context, *models.Playlist, int64) (*models.Playlist, error) {
	return p.playlist, p.err
}

func (p *playlistStub) Delete(context.Context, int64, int64) error {
	return p.err
}

func (p *playlistStub) AddSong(context.Context, int64, int64, int64) (*models.PlaylistSong, error) {
	return p.song, p.err
}

func (p *playlistStub) RemoveSong(context.Context, int64, int64, int64) (bool, error) {
	return p.removed, p.err
}

func (p *playlistStub) Songs(context.Context, int64) ([]models.PlaylistSong, error) {
	return p.songs, p.err
}

func (p *playlistStub) SongInPlaylist(context.Context, int64, int64) (bool, error) {
	return p.removed, p.err
}

func (p *playlistStub) PlaylistsContaining(context.Context, int64) ([]int64, error) {
	return p.ids, p.err
}

func (p *playlistStub) ClearSongs(context.Context, int64, int64) (int64, error) {
	return p.deleted, p.err
}

type ratingStub struct {
	rating *models.Rating
	songID int64
	err    error
}

func (r *ratingStub) Add(context.Context, models.Rating) (int64, error) {
	return 1, r.err
}

func (r *ratingStub) All(context.Context) ([]models.Rating, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []models.Rating{*r.rating}, nil
}

func (r *ratingStub) ByUser(context.Context, string) ([]models.Rating, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []models.Rating{*r.rating}, nil
}

func (r *ratingStub) Find(context.Context, string, int64) (*models.Rating, error) {
	return r.rating, r.err
}

func (r *ratingStub) TopRated(context.Context) (int64, error)    { return r.songID, r.err }
func (r *ratingStub) LowestRated(context.Context) (int64, error) { return r.songID, r.err }
func (r *ratingStub) MostPopular(context.Context) (int64, error) { return r.songID, r.err }

type userStub struct {
	user  *models.User
	token string
	err   error
}

func (u *userStub) Signup(context.Context, string, string) (*models.User, error) {
	return u.user, u.err
}

func (u *userStub) Login(context.Context, string, string) (string, *models.User, error) {
	return u.token, u.user, u.err
}

func newTestServer(playlists PlaylistService, ratings RatingService, users UserService) (http.Handler, *auth.Issuer) {
	issuer := auth.NewIssuer("test-secret-0123456789", time.Hour)
	server := New(playlists, ratings, users, issuer, zerolog.Nop())
	return server.Routes(), issuer
}

func bearerFor(t *testing.T, issuer *auth.Issuer, userID int64) string {
	t.Helper()
	token, err := issuer.Mint(userID, "demo")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return "Bearer " + token
}

func TestHealth(t *testing.T) {
	handler, _ := newTestServer(&playlistStub{}, &ratingStub{}, &userStub{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid input",
			err:        fmt.Errorf("%w: name is required", apperr.ErrInvalid),
			method:     http.MethodPost,
			path:       "/api/v1/playlists",
			body:       `{"name": ""}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "forbidden update",
			err:        fmt.Errorf("playlist 7: %w", apperr.ErrForbidden),
			method:     http.MethodPut,
			path:       "/api/v1/playlists/7",
			body:       `{"name": "Hijacked"}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing playlist",
			err:        fmt.Errorf("playlist 99: %w", apperr.ErrNotFound),
			method:     http.MethodGet,
			path:       "/api/v1/playlists/99",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "duplicate song",
			err:        fmt.Errorf("song 5 already in playlist 7: %w", apperr.ErrConflict),
			method:     http.MethodPost,
			path:       "/api/v1/playlists/7/songs",
			body:       `{"song_id": 5}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unclassified store failure",
			err:        errors.New("connection refused"),
			method:     http.MethodGet,
			path:       "/api/v1/playlists/7",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler, issuer := newTestServer(&playlistStub{err: tc.err}, &ratingStub{}, &userStub{})

			var body *strings.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			req.Header.Set("Authorization", bearerFor(t, issuer, 1))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d (body %s)", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestInternalErrorIsOpaque(t *testing.T) {
	handler, issuer := newTestServer(&playlistStub{err: errors.New("pq: deadlock detected")}, &ratingStub{}, &userStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/7", nil)
	req.Header.Set("Authorization", bearerFor(t, issuer, 1))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "internal error" {
		t.Fatalf("store details must not leak, got %q", body["error"])
	}
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	handler, _ := newTestServer(&playlistStub{}, &ratingStub{}, &userStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", strings.NewReader(`{"name": "Mix"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	handler, _ := newTestServer(&playlistStub{}, &ratingStub{}, &userStub{err: store.ErrInvalidCredentials})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username": "demo", "password": "wrong"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAddSongCreated(t *testing.T) {
	stub := &playlistStub{song: &models.PlaylistSong{ID: 11, PlaylistID: 7, SongID: 5}}
	handler, issuer := newTestServer(stub, &ratingStub{}, &userStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/7/songs", strings.NewReader(`{"song_id": 5}`))
	req.Header.Set("Authorization", bearerFor(t, issuer, 1))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}

	var song models.PlaylistSong
	if err := json.Unmarshal(rec.Body.Bytes(), &song); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if song.ID != 11 || song.SongID != 5 {
		t.Fatalf("unexpected membership row: %+v", song)
	}
}

func TestRemoveSongNoOp(t *testing.T) {
	handler, issuer := newTestServer(&playlistStub{removed: false}, &ratingStub{}, &userStub{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/7/songs/99", nil)
	req.Header.Set("Authorization", bearerFor(t, issuer, 1))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["removed"] {
		t.Fatal("expected removed = false")
	}
}

func TestTopRatedEmptyTable(t *testing.T) {
	handler, _ := newTestServer(&playlistStub{}, &ratingStub{err: fmt.Errorf("no ratings recorded: %w", apperr.ErrNotFound)}, &userStub{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ratings/top", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTopRated(t *testing.T) {
	handler, _ := newTestServer(&playlistStub{}, &ratingStub{songID: 5}, &userStub{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ratings/top", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["song_id"] != 5 {
		t.Fatalf("expected song 5, got %d", body["song_id"])
	}
}
