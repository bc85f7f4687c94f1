package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/department/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, department *domain.Department) error {
	return db.WithContext(ctx).Create(department).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, department *domain.Department) error {
	return db.WithContext(ctx).
		Model(&domain.Department{}).
		Where("primary_uuid = ?", department.ID).
		Updates(map[string]any{
			"name":       department.Name,
			"address":    department.Address,
			"utc_offset": department.UTCOffset,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).
		Where("primary_uuid = ?", id).
		Delete(&domain.Department{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Department, error) {
	var department domain.Department
	err := db.WithContext(ctx).
		Where("primary_uuid = ?", id).
		Take(&department).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Department, error) {
	var departments []*domain.Department
	err := db.WithContext(ctx).
		Order("name asc").
		Find(&departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}
