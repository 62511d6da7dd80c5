package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/narvaro/internal/models"
	"github.com/shrimpsizemoose/narvaro/internal/store"
)

type Service struct {
	Config *Config
	Store  store.RecordStore
	Auth   *Auth
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return &Service{
		Config: config,
		Store:  store,
		Auth:   auth,
	}, nil
}

// CurrentUser resolves the acting user for a request. With auth enabled the
// user header names the account and the bearer token must match the one in
// Redis; with auth disabled the configured fallback account is used, or a
// synthetic admin when none is configured.
func (s *Service) CurrentUser(r *http.Request) (*models.User, error) {
	if !s.Config.Server.EnableAuth {
		if s.Config.Auth.FallbackUser != "" {
			user, err := s.Store.GetUser(s.Config.Auth.FallbackUser)
			if err != nil {
				return nil, err
			}
			if user != nil {
				return user, nil
			}
		}
		return &models.User{Username: "local", Role: models.RoleAdmin}, nil
	}

	username := r.Header.Get(s.Config.Auth.UserHeader)
	if username == "" {
		return nil, fmt.Errorf("missing user header")
	}

	authHeader := r.Header.Get(s.Auth.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	if err := s.Auth.ValidateToken(r.Context(), username, token); err != nil {
		return nil, err
	}

	user, err := s.Store.GetUser(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("unknown user %s", username)
	}
	return user, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
