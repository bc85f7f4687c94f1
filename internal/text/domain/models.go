package domain

import (
	"time"

	"github.com/google/uuid"
	conversationdomain "github.com/parleyhq/parley/internal/conversation/domain"
	sessiondomain "github.com/parleyhq/parley/internal/session/domain"
)

// Text is one recognized-and-translated utterance. Rows are append-only;
// a later manual correction fills fixed_text and edit_ts and replaces the
// translation, the recognized text itself is never rewritten.
type Text struct {
	ID             uuid.UUID  `gorm:"column:primary_uuid;type:uuid;primaryKey" json:"text_uuid"`
	CreateTS       time.Time  `gorm:"column:create_ts;not null;index" json:"create_ts"`
	EditTS         *time.Time `gorm:"column:edit_ts" json:"edit_ts,omitempty"`
	Lang           string     `gorm:"column:lang;not null" json:"lang"`
	Text           string     `gorm:"column:text;not null" json:"text"`
	TranslatedLang string     `gorm:"column:translated_lang;not null" json:"translated_lang"`
	Translated     string     `gorm:"column:translated;not null" json:"translated"`
	FixedText      *string    `gorm:"column:fixed_text" json:"fixed_text,omitempty"`
	ConversationID uuid.UUID  `gorm:"column:conversation_uuid;type:uuid;not null;index" json:"conversation_uuid"`
	SessionID      *uuid.UUID `gorm:"column:owner_session_uuid;type:uuid" json:"owner_session_uuid,omitempty"`
	AudioID        *uuid.UUID `gorm:"column:audio_uuid;type:uuid" json:"audio_uuid,omitempty"`

	Conversation *conversationdomain.Conversation `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Session      *sessiondomain.Session           `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Text) TableName() string {
	return "texts"
}

// Corrected reports whether a manual correction was recorded.
func (t *Text) Corrected() bool {
	return t.FixedText != nil
}
