package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Session, error)
	// ListOpen returns all sessions without a logout timestamp, with the
	// owning user and department eagerly loaded for the sweeper.
	ListOpen(ctx context.Context, db *gorm.DB) ([]*Session, error)
	// ListOtherOpen returns the user's open sessions other than the given one.
	ListOtherOpen(ctx context.Context, db *gorm.DB, userID, exceptID uuid.UUID) ([]*Session, error)
	// Close stamps logout_ts. Closing an already-closed session is a no-op.
	Close(ctx context.Context, db *gorm.DB, id uuid.UUID, logoutTS time.Time) error
}
