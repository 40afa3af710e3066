//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/substrate/internal/core/world"
)

func InitializeWorld(cfg world.Config) *world.World {
	wire.Build(WorldSet)
	return nil
}
