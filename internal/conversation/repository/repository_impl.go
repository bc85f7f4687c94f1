package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/conversation/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, conversation *domain.Conversation) error {
	return db.WithContext(ctx).Create(conversation).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := db.WithContext(ctx).
		Where("primary_uuid = ?", id).
		Take(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *repo) FindWaiting(ctx context.Context, db *gorm.DB, excludeSessionID, excludeUserID uuid.UUID) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := db.WithContext(ctx).
		Joins("JOIN sessions ON sessions.primary_uuid = conversations.first_session_uuid").
		Where("conversations.second_session_uuid IS NULL AND conversations.end_ts IS NULL").
		Where("NOT (conversations.first_session_uuid = ? AND sessions.user_uuid = ?)", excludeSessionID, excludeUserID).
		Order("conversations.start_ts desc").
		Limit(1).
		Take(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *repo) Claim(ctx context.Context, db *gorm.DB, id, sessionID uuid.UUID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE conversations
		 SET second_session_uuid = ?
		 WHERE primary_uuid = ? AND second_session_uuid IS NULL AND end_ts IS NULL`,
		sessionID,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) FindOpenForSession(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := db.WithContext(ctx).
		Where("first_session_uuid = ? OR second_session_uuid = ?", sessionID, sessionID).
		Order("start_ts desc").
		Take(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// The most recent conversation wins even when closed: a session whose
	// last conversation ended has nothing to resume.
	if conversation.EndTS != nil {
		return nil, nil
	}
	return &conversation, nil
}

func (r *repo) Close(ctx context.Context, db *gorm.DB, id uuid.UUID, endTS time.Time, selectedLang string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE conversations SET end_ts = ?, selected_lang = ? WHERE primary_uuid = ? AND end_ts IS NULL`,
		endTS,
		selectedLang,
		id,
	).Error
}

func (r *repo) CloseOpenForSession(ctx context.Context, db *gorm.DB, sessionID uuid.UUID, endTS time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE conversations
		 SET end_ts = ?
		 WHERE end_ts IS NULL AND (first_session_uuid = ? OR second_session_uuid = ?)`,
		endTS,
		sessionID,
		sessionID,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) SaveQuestionnaire(ctx context.Context, db *gorm.DB, id uuid.UUID, questionnaire datatypes.JSONMap) error {
	return db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("primary_uuid = ?", id).
		Update("questionnaire", questionnaire).Error
}
