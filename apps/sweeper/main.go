package main

import (
	"github.com/parleyhq/parley/internal/clock"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/conversation"
	"github.com/parleyhq/parley/internal/observability"
	"github.com/parleyhq/parley/internal/registry"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/sweeper"
	"github.com/parleyhq/parley/pkg/db"
	"github.com/parleyhq/parley/pkg/log"
	"go.uber.org/fx"
)

// Standalone sweeper deployment, for running the expiry sweep separately
// from the API nodes.
func main() {
	app := fx.New(
		config.Module,
		log.Module,
		db.Module,
		observability.Module,
		clock.Module,
		registry.Module,
		session.Module,
		conversation.Module,

		// No server module.
		sweeper.Module,
	)
	app.Run()
}
