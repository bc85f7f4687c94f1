package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/session/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).
		Preload("User").
		Preload("User.Department").
		Where("primary_uuid = ?", id).
		Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repo) ListOpen(ctx context.Context, db *gorm.DB) ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := db.WithContext(ctx).
		Preload("User").
		Preload("User.Department").
		Where("logout_ts IS NULL").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) ListOtherOpen(ctx context.Context, db *gorm.DB, userID, exceptID uuid.UUID) ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := db.WithContext(ctx).
		Where("user_uuid = ? AND logout_ts IS NULL AND primary_uuid <> ?", userID, exceptID).
		Order("login_ts asc").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) Close(ctx context.Context, db *gorm.DB, id uuid.UUID, logoutTS time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sessions SET logout_ts = ? WHERE primary_uuid = ? AND logout_ts IS NULL`,
		logoutTS,
		id,
	).Error
}
