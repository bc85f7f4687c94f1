package domain

import (
	"time"

	"github.com/google/uuid"
	userdomain "github.com/parleyhq/parley/internal/user/domain"
)

// Session is one authenticated login of one user on one device. A user may
// hold several open sessions at once; that is surfaced as a warning, not
// forbidden.
type Session struct {
	ID       uuid.UUID        `gorm:"column:primary_uuid;type:uuid;primaryKey" json:"primary_uuid"`
	LoginTS  time.Time        `gorm:"column:login_ts;not null" json:"login_ts"`
	LogoutTS *time.Time       `gorm:"column:logout_ts" json:"logout_ts,omitempty"`
	UserID   uuid.UUID        `gorm:"column:user_uuid;type:uuid;not null;index" json:"user_uuid"`
	User     *userdomain.User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (Session) TableName() string { return "sessions" }

func (s *Session) Open() bool { return s.LogoutTS == nil }
