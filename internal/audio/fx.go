package audio

import (
	"github.com/parleyhq/parley/internal/audio/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("audio.repository",
	fx.Provide(repository.Provide),
)
