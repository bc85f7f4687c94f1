package conversation

import (
	"github.com/parleyhq/parley/internal/conversation/repository"
	"github.com/parleyhq/parley/internal/conversation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("conversation.resolver",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
