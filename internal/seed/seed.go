// Package seed bootstraps the rows the application cannot run without: the
// default department and the root user.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/auth/password"
	departmentdomain "github.com/parleyhq/parley/internal/department/domain"
	userdomain "github.com/parleyhq/parley/internal/user/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultDepartmentName   = "Main"
	defaultDepartmentOffset = "+00:00"
)

// EnsureDefaultDepartment seeds the zero-uuid department every user without
// an explicit department belongs to.
func EnsureDefaultDepartment(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var department departmentdomain.Department
		err := tx.WithContext(ctx).
			Where("primary_uuid = ?", departmentdomain.DefaultDepartmentID).
			First(&department).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		department = departmentdomain.Department{
			ID:        departmentdomain.DefaultDepartmentID,
			Name:      defaultDepartmentName,
			UTCOffset: defaultDepartmentOffset,
		}
		return tx.WithContext(ctx).Create(&department).Error
	})
}

// EnsureRootUser seeds the superuser from ROOT_LOGIN/ROOT_PASSWORD so a
// fresh deployment has someone who can create accounts.
func EnsureRootUser(db *gorm.DB, log *zap.Logger, login, plainPassword string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	login = strings.TrimSpace(login)
	if login == "" || plainPassword == "" {
		return errors.New("root credentials are required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user userdomain.User
		err := tx.WithContext(ctx).Where("login = ?", login).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(plainPassword)
		if err != nil {
			return err
		}
		user = userdomain.User{
			ID:           uuid.New(),
			Login:        login,
			FullName:     "Root",
			Password:     hashed,
			IsActive:     true,
			IsSuperuser:  true,
			CreateTS:     time.Now().UTC(),
			DepartmentID: departmentdomain.DefaultDepartmentID,
		}
		if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}
		log.Warn("seeded root user with the configured password, change it",
			zap.String("login", login),
		)
		return nil
	})
}
