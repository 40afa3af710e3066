package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/substrate/internal/core/events/bus"
	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/observability/log"
	"github.com/zeusync/substrate/internal/core/props"
	"github.com/zeusync/substrate/internal/core/timers"
	"github.com/zeusync/substrate/internal/core/world"
)

// WorldSet builds a world and its components from a world.Config.
var WorldSet = wire.NewSet(
	ProvideLogger,
	world.NewClock,
	identity.NewAllocator,
	props.NewStore,
	timers.New,
	bus.New,
	world.Assemble,
)

func ProvideLogger(cfg world.Config) log.Log {
	return log.New(log.ParseLevel(cfg.LogLevel))
}
