package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Conversation is the durable record of a paired exchange. At most two
// sessions ever participate: the opener is always first_session_uuid, the
// counterpart claims second_session_uuid exactly once.
type Conversation struct {
	ID              uuid.UUID         `gorm:"column:primary_uuid;type:uuid;primaryKey" json:"primary_uuid"`
	StartTS         time.Time         `gorm:"column:start_ts;not null;index" json:"start_ts"`
	EndTS           *time.Time        `gorm:"column:end_ts" json:"end_ts,omitempty"`
	SelectedLang    string            `gorm:"column:selected_lang" json:"selected_lang,omitempty"` // legacy summary, written at close
	Questionnaire   datatypes.JSONMap `gorm:"column:questionnaire;type:json" json:"questionnaire,omitempty"`
	FirstSessionID  uuid.UUID         `gorm:"column:first_session_uuid;type:uuid;not null;index" json:"first_session_uuid"`
	SecondSessionID *uuid.UUID        `gorm:"column:second_session_uuid;type:uuid;index" json:"second_session_uuid,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) Open() bool { return c.EndTS == nil }

func (c *Conversation) Paired() bool { return c.SecondSessionID != nil }

// Participant reports whether the given session occupies either slot.
func (c *Conversation) Participant(sessionID uuid.UUID) bool {
	if c.FirstSessionID == sessionID {
		return true
	}
	return c.SecondSessionID != nil && *c.SecondSessionID == sessionID
}
