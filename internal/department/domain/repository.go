package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, department *Department) error
	Update(ctx context.Context, db *gorm.DB, department *Department) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Department, error)
	List(ctx context.Context, db *gorm.DB) ([]*Department, error)
}
