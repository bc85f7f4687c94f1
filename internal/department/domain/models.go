package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// DefaultDepartmentID is the well-known department every legacy user falls
// back to. Seeded at migration time with a +00:00 offset.
var DefaultDepartmentID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

var offsetPattern = regexp.MustCompile(`^[+-](0\d|1[0-4]):[0-5]\d$`)

// Department defines the local-midnight boundary used for session expiry.
type Department struct {
	ID        uuid.UUID `gorm:"column:primary_uuid;type:uuid;primaryKey" json:"primary_uuid"`
	Name      string    `gorm:"not null" json:"name"`
	Address   string    `gorm:"not null" json:"address"`
	UTCOffset string    `gorm:"column:utc_offset;not null" json:"utc_offset"`
}

func (Department) TableName() string { return "departments" }

// Offset converts the stored "+HH:MM" offset string into a duration.
func (d Department) Offset() (time.Duration, error) {
	return ParseOffset(d.UTCOffset)
}

func ValidOffset(offset string) bool {
	return offsetPattern.MatchString(offset)
}

func ParseOffset(offset string) (time.Duration, error) {
	if !ValidOffset(offset) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, offset)
	}
	var hours, minutes time.Duration
	if _, err := fmt.Sscanf(offset[1:], "%02d:%02d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, offset)
	}
	d := hours*time.Hour + minutes*time.Minute
	if offset[0] == '-' {
		d = -d
	}
	return d, nil
}
