package world

import (
	"github.com/zeusync/substrate/internal/core/events/bus"
	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/observability/log"
)

// Event types published on the world bus. Handlers run synchronously inside
// the tick that produced the event.
const (
	EventObjectCreated    = "object.created"
	EventObjectDestroyed  = "object.destroyed"
	EventBehaviorAttached = "behavior.attached"
	EventBehaviorDetached = "behavior.detached"
	EventBehaviorFault    = "behavior.fault" // data: *behavior.Fault
	EventTimerFired       = "timer.fired"    // data: timers.Fired
	EventOutputMutated    = "output.mutated"
)

type ObjectEvent struct {
	Object identity.ID
	Name   string
}

type BehaviorEvent struct {
	Object identity.ID
	Unit   identity.ID
	Name   string
}

// MutationEvent reports an output pass that changed the property store.
type MutationEvent struct {
	Object identity.ID
	Frame  uint64
	Before uint64
	After  uint64
}

// publish delivers an event synchronously. Handler errors and panics are
// logged and never reach the tick.
func (w *World) publish(typ string, data any) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("event bus panicked", log.String("event", typ), log.Any("panic", r))
		}
	}()
	ev := bus.NewEventAt(typ, w.source, w.clock.Now(), data, map[string]any{"frame": w.clock.Frame()})
	if err := w.events.Publish(ev); err != nil {
		w.log.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}
