package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type CreateDepartmentRequest struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	UTCOffset string `json:"utc_offset"`
}

type UpdateDepartmentRequest struct {
	ID        uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	UTCOffset string    `json:"utc_offset"`
}

type Service interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (Department, error)
	Update(ctx context.Context, req UpdateDepartmentRequest) (Department, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Department, error)
	List(ctx context.Context) ([]Department, error)
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidOffset = errors.New("invalid_utc_offset")
	ErrNotFound      = errors.New("department_not_found")
	ErrHasUsers      = errors.New("department_has_users")
	ErrDefault       = errors.New("default_department_immutable")
)
