package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/audio/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, audio *domain.Audio) error {
	return db.WithContext(ctx).Create(audio).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Audio, error) {
	var audio domain.Audio
	err := db.WithContext(ctx).Where("primary_uuid = ?", id).Take(&audio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &audio, nil
}
