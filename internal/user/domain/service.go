package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Login        string    `json:"login"`
	FullName     string    `json:"full_name"`
	Password     string    `json:"password"`
	IsSuperuser  bool      `json:"is_superuser"`
	DepartmentID uuid.UUID `json:"department_uuid"`
}

type UpdateUserRequest struct {
	ID           uuid.UUID  `json:"-"`
	FullName     *string    `json:"full_name"`
	Password     *string    `json:"password"`
	IsActive     *bool      `json:"is_active"`
	IsSuperuser  *bool      `json:"is_superuser"`
	DepartmentID *uuid.UUID `json:"department_uuid"`
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	Update(ctx context.Context, req UpdateUserRequest) (User, error)
	// Delete removes a user. It is rejected while the user owns sessions
	// that participate in conversations.
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context) ([]User, error)
}

var (
	ErrInvalidLogin     = errors.New("invalid_login")
	ErrInvalidPassword  = errors.New("invalid_password")
	ErrLoginTaken       = errors.New("login_taken")
	ErrNotFound         = errors.New("user_not_found")
	ErrHasConversations = errors.New("user_has_conversations")
)
