package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"melodin/internal/models"
)

// handlePlaylists handles GET (list) and POST (create) on the
// playlists collection.
func (s *Server) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listPlaylists(w, r)
	case http.MethodPost:
		s.createPlaylist(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePlaylist dispatches the playlist sub-resources:
//
//	GET            /playlists/visible
//	GET            /playlists/mine
//	GET            /playlists/containing-song/{songId}
//	GET|PUT|DELETE /playlists/{id}
//	GET|POST|DELETE /playlists/{id}/songs
//	DELETE         /playlists/{id}/songs/{songId}
func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/playlists/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Playlist ID required", http.StatusBadRequest)
		return
	}

	switch parts[0] {
	case "visible":
		s.listVisiblePlaylists(w, r)
		return
	case "mine":
		s.listOwnPlaylists(w, r)
		return
	case "containing-song":
		if len(parts) != 2 {
			http.Error(w, "Song ID required", http.StatusBadRequest)
			return
		}
		songID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			http.Error(w, "Invalid song ID", http.StatusBadRequest)
			return
		}
		s.playlistsContainingSong(w, r, songID)
		return
	}

	playlistID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	if len(parts) >= 2 && parts[1] == "songs" {
		if len(parts) == 2 {
			switch r.Method {
			case http.MethodGet:
				s.listPlaylistSongs(w, r, playlistID)
			case http.MethodPost:
				s.addSongToPlaylist(w, r, playlistID)
			case http.MethodDelete:
				s.clearPlaylistSongs(w, r, playlistID)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}
		if len(parts) == 3 {
			songID, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil {
				http.Error(w, "Invalid song ID", http.StatusBadRequest)
				return
			}
			if r.Method == http.MethodDelete {
				s.removeSongFromPlaylist(w, r, playlistID, songID)
				return
			}
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getPlaylist(w, r, playlistID)
	case http.MethodPut:
		s.updatePlaylist(w, r, playlistID)
	case http.MethodDelete:
		s.deletePlaylist(w, r, playlistID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type playlistRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"is_public"`
	Tags        []string `json:"tags"`
}

func (s *Server) listPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.playlists.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Playlists []*models.Playlist `json:"playlists"`
	}{Playlists: playlists})
}

func (s *Server) listOwnPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	playlists, err := s.playlists.ListByOwner(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Playlists []*models.Playlist `json:"playlists"`
	}{Playlists: playlists})
}

func (s *Server) listVisiblePlaylists(w http.ResponseWriter, r *http.Request) {
	userID, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	playlists, err := s.playlists.ListVisible(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Playlists []*models.Playlist `json:"playlists"`
	}{Playlists: playlists})
}

func (s *Server) getPlaylist(w http.ResponseWriter, r *http.Request, id int64) {
	playlist, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) createPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.playlists.Create(r.Context(), &models.Playlist{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updatePlaylist(w http.ResponseWriter, r *http.Request, id int64) {
	userID, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := s.playlists.Update(r.Context(), &models.Playlist{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	}, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deletePlaylist(w http.ResponseWriter, r *http.Request, id int64) {
	userID, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.playlists.Delete(r.Context(), id, userID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPlaylistSongs(w http.ResponseWriter, r *http.Request, playlistID int64) {
	songs, err := s.playlists.Songs(r.Context(), playlistID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.PlaylistSong `json:"songs"`
	}{Songs: songs})
}

func (s *Server) addSongToPlaylist(w http.ResponseWriter, r *http.Request, playlistID int64) {
	userID, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req struct {
		SongID int64 `json:"song_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	membership, err := s.playlists.AddSong(r.Context(), playlistID, req.SongID, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

func (s *Server) removeSongFromPlaylist(w http.ResponseWriter, r *http.Request, playlistID, songID int64) {
	userID, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	removed, err := s.playlists.RemoveSong(r.Context(), playlistID, songID, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) clearPlaylistSongs(w http.ResponseWriter, r *http.Request, playlistID int64) {
	userID, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	deleted, err := s.playlists.ClearSongs(r.Context(), playlistID, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (s *Server) playlistsContainingSong(w http.ResponseWriter, r *http.Request, songID int64) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ids, err := s.playlists.PlaylistsContaining(r.Context(), songID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		PlaylistIDs []int64 `json:"playlist_ids"`
	}{PlaylistIDs: ids})
}
