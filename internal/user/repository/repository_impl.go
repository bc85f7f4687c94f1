package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("primary_uuid = ?", user.ID).
		Updates(map[string]any{
			"full_name":       user.FullName,
			"password":        user.Password,
			"is_active":       user.IsActive,
			"is_superuser":    user.IsSuperuser,
			"department_uuid": user.DepartmentID,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).
		Where("primary_uuid = ?", id).
		Delete(&domain.User{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Preload("Department").
		Where("primary_uuid = ?", id).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByLogin(ctx context.Context, db *gorm.DB, login string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Preload("Department").
		Where("login = ?", login).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.User, error) {
	var users []*domain.User
	err := db.WithContext(ctx).
		Preload("Department").
		Order("full_name asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
