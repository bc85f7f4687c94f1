package migration

import (
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		if err := seed.EnsureDefaultDepartment(conn); err != nil {
			return err
		}
		return seed.EnsureRootUser(conn, log, cfg.RootLogin, cfg.RootPassword)
	}),
)
