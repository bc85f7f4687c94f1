package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Resolver attaches a session to exactly one conversation, preferring to
// join an existing waiting one.
type Resolver interface {
	// JoinOrCreate pairs the session with the most recent waiting
	// conversation or opens a new one. Callers must try Resume first so a
	// page reload never opens a duplicate.
	JoinOrCreate(ctx context.Context, sessionID, userID uuid.UUID) (Conversation, error)
	// Resume returns the session's open conversation, or ErrNoConversation.
	Resume(ctx context.Context, sessionID uuid.UUID) (Conversation, error)
	// Close and SaveQuestionnaire act on behalf of a participant; strangers
	// are rejected.
	Close(ctx context.Context, conversationID, sessionID uuid.UUID) error
	SaveQuestionnaire(ctx context.Context, conversationID, sessionID uuid.UUID, questionnaire datatypes.JSONMap) error
}

var (
	ErrNoConversation = errors.New("no_open_conversation")
	ErrNotFound       = errors.New("conversation_not_found")
	ErrClosed         = errors.New("conversation_closed")
	// ErrPairingConflict is internal to JoinOrCreate (the fallback creates a
	// fresh conversation) but exported so metrics and tests can observe it.
	ErrPairingConflict = errors.New("pairing_conflict")
)
