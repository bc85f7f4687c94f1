package domain

import (
	"time"

	"github.com/google/uuid"
	departmentdomain "github.com/parleyhq/parley/internal/department/domain"
)

// User is an operator account. Clients authenticate with the same mechanism;
// the distinction between the two sides of a conversation is purely which
// session joined first.
type User struct {
	ID           uuid.UUID                        `gorm:"column:primary_uuid;type:uuid;primaryKey" json:"primary_uuid"`
	Login        string                           `gorm:"uniqueIndex;not null" json:"login"`
	FullName     string                           `gorm:"not null" json:"full_name"`
	Password     string                           `gorm:"not null" json:"-"`
	IsActive     bool                             `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser  bool                             `gorm:"not null;default:false" json:"is_superuser"`
	CreateTS     time.Time                        `gorm:"column:create_ts;not null" json:"create_ts"`
	DepartmentID uuid.UUID                        `gorm:"column:department_uuid;type:uuid;not null;index" json:"department_uuid"`
	Department   *departmentdomain.Department     `gorm:"foreignKey:DepartmentID;references:ID" json:"department,omitempty"`
}

func (User) TableName() string { return "users" }
