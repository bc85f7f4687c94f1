package department

import (
	"github.com/parleyhq/parley/internal/department/repository"
	"github.com/parleyhq/parley/internal/department/service"
	"go.uber.org/fx"
)

var Module = fx.Module("department.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
