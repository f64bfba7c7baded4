// Package service contains the business logic layer.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and context, never *http.Request, and return
// domain errors from the apperror package, never status codes. The
// handlers translate in both directions. Services receive repository
// interfaces (not the concrete sqlite type), so tests run against
// in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/codespace/internal/apperror"
	"github.com/sakif/codespace/internal/auth"
	"github.com/sakif/codespace/internal/repository"
	"github.com/sakif/codespace/internal/session"
)

// touchTimeout bounds the background last_active update. It runs detached
// from the request, so it needs its own deadline.
const touchTimeout = 5 * time.Second

// AuthService handles login and logout.
type AuthService struct {
	users     repository.UserRepository
	sessions  *session.Manager
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	sessions *session.Manager,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult is what a successful login hands back to the handler: the
// session token for the cookie plus the fields of the login response body.
type LoginResult struct {
	Token    string
	Username string
	IsAdmin  bool
}

// Login authenticates a username/password pair and issues a session.
//
// ENUMERATION SAFETY:
// An unknown username and a wrong password both return the identical
// Unauthenticated("Invalid credentials") error. Nothing in the response
// may reveal which half was wrong — callers must not be able to test
// whether an account exists.
//
// On success, last_active is refreshed in a detached goroutine. Its
// failure is logged and otherwise ignored: a broken timestamp update must
// never fail a correct login.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperror.Unauthenticated("Invalid credentials")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Same answer as a wrong password.
			return nil, apperror.Unauthenticated("Invalid credentials")
		}
		s.logger.Error("login lookup failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated("Invalid credentials")
	}

	token, err := s.sessions.Create(user)
	if err != nil {
		s.logger.Error("session creation failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating session: %w", err)
	}

	// Fire-and-forget: the request context may be gone by the time this
	// runs, so the update gets its own context and deadline.
	go func(userID string) {
		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		if err := s.users.TouchLastActive(ctx, userID); err != nil {
			s.logger.Warn("failed to update last_active",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		}
	}(user.ID)

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
		slog.Bool("isAdmin", user.IsAdmin),
	)

	return &LoginResult{
		Token:    token,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}, nil
}

// Logout destroys the session for the given token. Idempotent: logging
// out with a stale or missing token still succeeds.
func (s *AuthService) Logout(token string) {
	s.sessions.Destroy(token)
}
