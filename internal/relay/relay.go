// Package relay runs the utterance pipeline of a live conversation:
// recognize the audio, translate the transcript for the interlocutor,
// persist both, then queue the message for delivery.
package relay

import (
	"context"
	"errors"

	"github.com/google/uuid"
	audiodomain "github.com/parleyhq/parley/internal/audio/domain"
	textdomain "github.com/parleyhq/parley/internal/text/domain"
	"github.com/parleyhq/parley/internal/translation"
)

var (
	// ErrNotReady means the conversation cannot carry utterances yet: a
	// slot is empty or a side has not picked a language.
	ErrNotReady = errors.New("conversation_not_ready")
	// ErrUnsupportedLang means the requested language is not in the
	// translation service's inventory.
	ErrUnsupportedLang = errors.New("unsupported_lang")
	ErrTextNotFound    = errors.New("text_not_found")
	ErrAudioNotFound   = errors.New("audio_not_found")
)

// Status is the poller's view of the conversation.
type Status struct {
	Paired             bool   `json:"paired"`
	ReadyToStart       bool   `json:"ready_to_start"`
	OwnLang            string `json:"own_lang,omitempty"`
	InterlocutorLang   string `json:"interlocutor_lang,omitempty"`
	ConversationClosed bool   `json:"conversation_closed"`
}

type Service interface {
	// SubmitUtterance runs the full pipeline for one recording. Nothing is
	// persisted when any stage fails.
	SubmitUtterance(ctx context.Context, conversationID, sessionID uuid.UUID, audio []byte, mimeType string) (*textdomain.Text, error)

	// PullMessage pops the oldest undelivered message for the session, or
	// nil when the queue is empty.
	PullMessage(ctx context.Context, conversationID, sessionID uuid.UUID) (*textdomain.Text, error)

	// History returns the durable transcript, oldest first, for either
	// participant.
	History(ctx context.Context, conversationID, sessionID uuid.UUID) ([]*textdomain.Text, error)

	// SetLanguage records the session's language after checking it against
	// the translation inventory.
	SetLanguage(ctx context.Context, conversationID, sessionID uuid.UUID, lang string) error

	Languages(ctx context.Context) ([]translation.Language, error)

	Status(ctx context.Context, conversationID, sessionID uuid.UUID) (Status, error)

	// FixText records a manual correction of an utterance made by one of
	// the conversation's participants. The correction is re-translated and
	// stored alongside the original transcript, which stays untouched.
	FixText(ctx context.Context, textID, sessionID uuid.UUID, fixedText string) (*textdomain.Text, error)

	GetAudio(ctx context.Context, audioID uuid.UUID) (*audiodomain.Audio, error)
}
