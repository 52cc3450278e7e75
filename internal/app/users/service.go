// Package users handles account signup and login.
package users

import (
	"context"

	"github.com/rs/zerolog"

	"melodin/internal/auth"
	"melodin/internal/models"
)

// Store defines the credential persistence the service depends on.
type Store interface {
	CreateUser(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// Service registers accounts and issues tokens on login.
type Service struct {
	store  Store
	issuer *auth.Issuer
	log    zerolog.Logger
}

// New constructs a users Service.
func New(store Store, issuer *auth.Issuer, log zerolog.Logger) *Service {
	return &Service{store: store, issuer: issuer, log: log}
}

// Signup registers a new account.
func (s *Service) Signup(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.CreateUser(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("username", user.Username).Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login validates credentials and returns a signed token plus the user.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.issuer.Mint(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
