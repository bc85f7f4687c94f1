package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/text/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, text *domain.Text) error {
	return db.WithContext(ctx).Create(text).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Text, error) {
	var text domain.Text
	err := db.WithContext(ctx).Where("primary_uuid = ?", id).Take(&text).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &text, nil
}

func (r *repo) ListByConversation(ctx context.Context, db *gorm.DB, conversationID uuid.UUID) ([]*domain.Text, error) {
	var texts []*domain.Text
	err := db.WithContext(ctx).
		Where("conversation_uuid = ?", conversationID).
		Order("create_ts asc").
		Find(&texts).Error
	if err != nil {
		return nil, err
	}
	return texts, nil
}

func (r *repo) Fix(ctx context.Context, db *gorm.DB, id uuid.UUID, fixedText, translated string, editTS time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE texts SET fixed_text = ?, translated = ?, edit_ts = ? WHERE primary_uuid = ?`,
		fixedText,
		translated,
		editTS,
		id,
	).Error
}
