package session

import (
	"github.com/parleyhq/parley/internal/session/repository"
	"github.com/parleyhq/parley/internal/session/service"
	"go.uber.org/fx"
)

var Module = fx.Module("session.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
