package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, conversation *Conversation) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Conversation, error)
	// FindWaiting returns the most recently opened conversation that still
	// has no counterpart and no end timestamp, excluding the one opened by
	// the exact (session, user) pair doing the lookup. Note: other sessions
	// of the same user are deliberately not excluded; see DESIGN.md.
	FindWaiting(ctx context.Context, db *gorm.DB, excludeSessionID, excludeUserID uuid.UUID) (*Conversation, error)
	// Claim atomically sets second_session_uuid on a still-waiting row.
	// It reports false when another session won the race.
	Claim(ctx context.Context, db *gorm.DB, id, sessionID uuid.UUID) (bool, error)
	// FindOpenForSession returns the most recent open conversation in which
	// the session participates in either slot, or nil.
	FindOpenForSession(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (*Conversation, error)
	Close(ctx context.Context, db *gorm.DB, id uuid.UUID, endTS time.Time, selectedLang string) error
	// CloseOpenForSession closes every open conversation the session
	// participates in and reports how many rows changed.
	CloseOpenForSession(ctx context.Context, db *gorm.DB, sessionID uuid.UUID, endTS time.Time) (int64, error)
	SaveQuestionnaire(ctx context.Context, db *gorm.DB, id uuid.UUID, questionnaire datatypes.JSONMap) error
}
