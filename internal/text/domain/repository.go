package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, text *Text) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Text, error)

	// ListByConversation returns the full transcript ordered oldest first.
	ListByConversation(ctx context.Context, db *gorm.DB, conversationID uuid.UUID) ([]*Text, error)

	// Fix stores the manual correction together with its fresh translation.
	Fix(ctx context.Context, db *gorm.DB, id uuid.UUID, fixedText, translated string, editTS time.Time) error
}
