package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"melodin/internal/apperr"
	"melodin/internal/models"
	"melodin/internal/store"
)

// bootstrapDemoData seeds a demo account with a public and a private
// playlist so a fresh instance has something to browse. Reruns are
// no-ops.
func bootstrapDemoData(ctx context.Context, dataStore *store.Store, log zerolog.Logger) error {
	user, err := dataStore.CreateUser(ctx, "demo", "demo123")
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil
		}
		return err
	}

	seeds := []*models.Playlist{
		{
			UserID:      user.ID,
			Name:        "Road Trip",
			Description: "Windows down, volume up",
			IsPublic:    true,
			Tags:        []string{"rock", "summer"},
		},
		{
			UserID:      user.ID,
			Name:        "Late Night Study",
			Description: "Quiet focus tracks",
			IsPublic:    false,
			Tags:        []string{"ambient"},
		},
	}

	for _, playlist := range seeds {
		if _, err := dataStore.CreatePlaylist(ctx, playlist); err != nil {
			return err
		}
	}

	log.Info().Int64("user_id", user.ID).Msg("seeded demo data")
	return nil
}
