package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audio is the raw recording an utterance was recognized from, kept for
// later review of the transcript.
type Audio struct {
	ID       uuid.UUID `gorm:"column:primary_uuid;type:uuid;primaryKey" json:"audio_uuid"`
	CreateTS time.Time `gorm:"column:create_ts;not null" json:"create_ts"`
	MimeType string    `gorm:"column:mime_type;not null" json:"mime_type"`
	Data     []byte    `gorm:"column:data;not null" json:"-"`
}

func (Audio) TableName() string {
	return "audio"
}
