package text

import (
	"github.com/parleyhq/parley/internal/text/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("text.repository",
	fx.Provide(repository.Provide),
)
