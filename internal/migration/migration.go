package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	audiodomain "github.com/parleyhq/parley/internal/audio/domain"
	conversationdomain "github.com/parleyhq/parley/internal/conversation/domain"
	departmentdomain "github.com/parleyhq/parley/internal/department/domain"
	sessiondomain "github.com/parleyhq/parley/internal/session/domain"
	textdomain "github.com/parleyhq/parley/internal/text/domain"
	userdomain "github.com/parleyhq/parley/internal/user/domain"
	"gorm.io/gorm"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "sql"

// RunMigrations applies the embedded SQL migrations to a postgres handle,
// so a fresh deployment is usable without external tooling.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate builds the schema through gorm for the sqlite and mysql
// development targets, where the versioned postgres migrations do not apply.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&departmentdomain.Department{},
		&userdomain.User{},
		&sessiondomain.Session{},
		&conversationdomain.Conversation{},
		&audiodomain.Audio{},
		&textdomain.Text{},
	)
}
