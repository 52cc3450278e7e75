// Package playlists enforces the ownership and visibility rules around
// playlist and membership lifecycle. Every playlist mutation passes
// through this service.
package playlists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"melodin/internal/apperr"
	"melodin/internal/models"
)

// PlaylistStore captures the playlist persistence needs of the service.
type PlaylistStore interface {
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error)
	ListPlaylists(ctx context.Context) ([]*models.Playlist, error)
	PlaylistsByOwner(ctx context.Context, ownerID int64) ([]*models.Playlist, error)
	VisiblePlaylists(ctx context.Context, userID int64) ([]*models.Playlist, error)
	PlaylistByID(ctx context.Context, id int64) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id int64) error
}

// MembershipStore captures the song-in-playlist persistence needs.
type MembershipStore interface {
	AddSong(ctx context.Context, playlistID, songID int64) (*models.PlaylistSong, error)
	SongsByPlaylist(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error)
	RemoveSong(ctx context.Context, playlistID, songID int64) (bool, error)
	SongInPlaylist(ctx context.Context, playlistID, songID int64) (bool, error)
	PlaylistsBySong(ctx context.Context, songID int64) ([]int64, error)
	ClearPlaylist(ctx context.Context, playlistID int64) (int64, error)
}

// Service coordinates playlist and membership operations.
type Service struct {
	playlists   PlaylistStore
	memberships MembershipStore
	log         zerolog.Logger
}

// New constructs a Service backed by the provided stores.
func New(playlists PlaylistStore, memberships MembershipStore, log zerolog.Logger) *Service {
	return &Service{playlists: playlists, memberships: memberships, log: log}
}

// Create stores a new playlist. The owner comes from the caller's
// authenticated context, not inferred.
func (s *Service) Create(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error) {
	if playlist == nil {
		return nil, fmt.Errorf("%w: playlist is required", apperr.ErrInvalid)
	}
	if playlist.UserID <= 0 {
		return nil, fmt.Errorf("%w: owner id must be positive", apperr.ErrInvalid)
	}
	if strings.TrimSpace(playlist.Name) == "" {
		return nil, fmt.Errorf("%w: playlist name is required", apperr.ErrInvalid)
	}

	s.log.Info().Str("name", playlist.Name).Int64("owner_id", playlist.UserID).Msg("creating playlist")
	return s.playlists.CreatePlaylist(ctx, playlist)
}

// List returns every playlist.
func (s *Service) List(ctx context.Context) ([]*models.Playlist, error) {
	return s.playlists.ListPlaylists(ctx)
}

// ListByOwner returns the playlists owned by one user.
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Playlist, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("%w: owner id must be positive", apperr.ErrInvalid)
	}
	return s.playlists.PlaylistsByOwner(ctx, ownerID)
}

// ListVisible returns the playlists visible to a user: the ones they
// own plus every public one, with no duplicates.
func (s *Service) ListVisible(ctx context.Context, userID int64) ([]*models.Playlist, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", apperr.ErrInvalid)
	}
	return s.playlists.VisiblePlaylists(ctx, userID)
}

// Get returns a single playlist by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Playlist, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: playlist id must be positive", apperr.ErrInvalid)
	}
	return s.playlists.PlaylistByID(ctx, id)
}

// Update replaces the name, description, visibility, and tags of an
// existing playlist. Authorization is checked against the stored owner,
// never against an owner field supplied in the payload.
func (s *Service) Update(ctx context.Context, playlist *models.Playlist, requestingUserID int64) (*models.Playlist, error) {
	if playlist == nil {
		return nil, fmt.Errorf("%w: playlist is required", apperr.ErrInvalid)
	}
	if playlist.ID <= 0 {
		return nil, fmt.Errorf("%w: playlist id must be positive", apperr.ErrInvalid)
	}
	if strings.TrimSpace(playlist.Name) == "" {
		return nil, fmt.Errorf("%w: playlist name is required", apperr.ErrInvalid)
	}

	current, err := s.playlists.PlaylistByID(ctx, playlist.ID)
	if err != nil {
		return nil, err
	}
	if current.UserID != requestingUserID {
		s.log.Warn().Int64("playlist_id", playlist.ID).Int64("owner_id", current.UserID).
			Int64("requesting_user_id", requestingUserID).Msg("update denied: not the owner")
		return nil, fmt.Errorf("%w: only the owner may update a playlist", apperr.ErrForbidden)
	}

	// Owner and creation time are immutable.
	playlist.UserID = current.UserID
	playlist.CreatedAt = current.CreatedAt

	s.log.Info().Int64("playlist_id", playlist.ID).Int64("user_id", requestingUserID).Msg("updating playlist")
	return s.playlists.UpdatePlaylist(ctx, playlist)
}

// Delete removes a playlist and all of its membership rows. Only the
// owner may delete, regardless of visibility.
func (s *Service) Delete(ctx context.Context, playlistID, requestingUserID int64) error {
	if playlistID <= 0 {
		return fmt.Errorf("%w: playlist id must be positive", apperr.ErrInvalid)
	}
	if requestingUserID <= 0 {
		return fmt.Errorf("%w: requesting user id must be positive", apperr.ErrInvalid)
	}

	playlist, err := s.playlists.PlaylistByID(ctx, playlistID)
	if err != nil {
		return err
	}
	if playlist.UserID != requestingUserID {
		s.log.Warn().Int64("playlist_id", playlistID).Int64("owner_id", playlist.UserID).
			Int64("requesting_user_id", requestingUserID).Msg("delete denied: not the owner")
		return fmt.Errorf("%w: only the owner may delete a playlist", apperr.ErrForbidden)
	}

	s.log.Info().Int64("playlist_id", playlistID).Int64("user_id", requestingUserID).Msg("deleting playlist")
	return s.playlists.DeletePlaylist(ctx, playlistID)
}

// AddSong adds a song to a playlist. A private playlist accepts songs
// only from its owner; a public playlist accepts them from anyone.
// Adding a song that is already present is a conflict.
func (s *Service) AddSong(ctx context.Context, playlistID, songID, requestingUserID int64) (*models.PlaylistSong, error) {
	if playlistID <= 0 {
		return nil, fmt.Errorf("%w: playlist id must be positive", apperr.ErrInvalid)
	}
	if songID <= 0 {
		return nil, fmt.Errorf("%w: song id must be positive", apperr.ErrInvalid)
	}
	if requestingUserID <= 0 {
		return nil, fmt.Errorf("%w: requesting user id must be positive", apperr.ErrInvalid)
	}

	playlist, err := s.playlists.PlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if !playlist.IsPublic && playlist.UserID != requestingUserID {
		s.log.Warn().Int64("playlist_id", playlistID).Int64("song_id", songID).
			Int64("requesting_user_id", requestingUserID).Msg("add song denied: private playlist")
		return nil, fmt.Errorf("%w: only the owner may add songs to a private playlist", apperr.ErrForbidden)
	}

	s.log.Info().Int64("playlist_id", playlistID).Int64("song_id", songID).
		Int64("user_id", requestingUserID).Msg("adding song to playlist")
	return s.memberships.AddSong(ctx, playlistID, songID)
}

// RemoveSong removes a song from a playlist. The owner may always
// remove; anyone may remove from a public playlist. Removing a pair
// that is not present reports false without an error.
func (s *Service) RemoveSong(ctx context.Context, playlistID, songID, requestingUserID int64) (bool, error) {
	if playlistID <= 0 {
		return false, fmt.Errorf("%w: playlist id must be positive", apperr.ErrInvalid)
	}
	if songID <= 0 {
		return false, fmt.Errorf("%w: song id must be positive", apperr.ErrInvalid)
	}
	if requestingUserID <= 0 {
		return false, fmt.Errorf("%w: requesting user id must be positive", apperr.ErrInvalid)
	}

	playlist, err := s.playlists.PlaylistByID(ctx, playlistID)
	if err != nil {
		return false, err
	}
	if playlist.UserID != requestingUserID && !playlist.IsPublic {
		s.log.Warn().Int64("playlist_id", playlistID).Int64("song_id", songID).
			Int64("requesting_user_id", requestingUserID).Msg("remove song denied")
		return false, fmt.Errorf("%w: no permission to modify this playlist", apperr.ErrForbidden)
	}

	s.log.Info().Int64("playlist_id", playlistID).Int64("song_id", songID).
		Int64("user_id", requestingUserID).Msg("removing song from playlist")
	return s.memberships.RemoveSong(ctx, playlistID, songID)
}

// Songs returns the membership rows of a playlist in position order.
func (s *Service) Songs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error) {
	if playlistID <= 0 {
		return nil, fmt.Errorf("%w: playlist id must be positive", apperr.ErrInvalid)
	}
	return s.memberships.SongsByPlaylist(ctx, playlistID)
}

// SongInPlaylist reports whether the pair exists. Non-positive ids
// yield false rather than an error.
func (s *Service) SongInPlaylist(ctx context.Context, playlistID, songID int64) (bool, error) {
	if playlistID <= 0 || songID <= 0 {
		return false, nil
	}
	return s.memberships.SongInPlaylist(ctx, playlistID, songID)
}

// PlaylistsContaining returns the ids of every playlist holding the song.
func (s *Service) PlaylistsContaining(ctx context.Context, songID int64) ([]int64, error) {
	if songID <= 0 {
		return nil, fmt.Errorf("%w: song id must be positive", apperr.ErrInvalid)
	}
	return s.memberships.PlaylistsBySong(ctx, songID)
}

// ClearSongs removes every song from a playlist and returns the count.
// Unlike AddSong/RemoveSong this requires strict ownership, the same
// rule as deleting the playlist itself.
func (s *Service) ClearSongs(ctx context.Context, playlistID, requestingUserID int64) (int64, error) {
	if playlistID <= 0 {
		return 0, fmt.Errorf("%w: playlist id must be positive", apperr.ErrInvalid)
	}
	if requestingUserID <= 0 {
		return 0, fmt.Errorf("%w: requesting user id must be positive", apperr.ErrInvalid)
	}

	playlist, err := s.playlists.PlaylistByID(ctx, playlistID)
	if err != nil {
		return 0, err
	}
	if playlist.UserID != requestingUserID {
		s.log.Warn().Int64("playlist_id", playlistID).
			Int64("requesting_user_id", requestingUserID).Msg("clear songs denied: not the owner")
		return 0, fmt.Errorf("%w: only the owner may clear a playlist", apperr.ErrForbidden)
	}

	s.log.Info().Int64("playlist_id", playlistID).Int64("user_id", requestingUserID).Msg("clearing playlist songs")
	return s.memberships.ClearPlaylist(ctx, playlistID)
}

// UserOwnsPlaylist reports whether a user owns a playlist. Non-positive
// ids and missing playlists yield false rather than an error.
func (s *Service) UserOwnsPlaylist(ctx context.Context, playlistID, userID int64) (bool, error) {
	if playlistID <= 0 || userID <= 0 {
		return false, nil
	}
	playlist, err := s.playlists.PlaylistByID(ctx, playlistID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return playlist.UserID == userID, nil
}
