package main

import (
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/migration"
	"github.com/parleyhq/parley/internal/server"
	"github.com/parleyhq/parley/pkg/db"
	"github.com/parleyhq/parley/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		db.Module,
		migration.Module,
		server.Module,
		// Session expiry runs in apps/sweeper, one instance per deployment,
		// never in the horizontally scaled web workers.
	)
	app.Run()
}
