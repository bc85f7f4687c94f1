package user

import (
	"github.com/parleyhq/parley/internal/user/repository"
	"github.com/parleyhq/parley/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
