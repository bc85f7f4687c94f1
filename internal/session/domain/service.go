package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type Service interface {
	// Login verifies credentials and opens a new session.
	Login(ctx context.Context, req LoginRequest) (Session, error)
	// Validate checks that the session can still act. Detecting a closed
	// session or an inactive owner closes the related open conversations
	// (and, for an inactive owner, all of the user's open sessions) as a
	// side effect before the error is returned.
	Validate(ctx context.Context, sessionID uuid.UUID) (Session, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	// OtherOpenSessions powers the "more than one open session" warning.
	OtherOpenSessions(ctx context.Context, sessionID uuid.UUID) ([]Session, error)
	CloseOthers(ctx context.Context, sessionID uuid.UUID) (int, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionClosed      = errors.New("session_closed")
	ErrUserNotActive      = errors.New("user_not_active")
)
