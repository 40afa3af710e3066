package world

import (
	"errors"
	"time"

	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/input"
	"github.com/zeusync/substrate/internal/core/observability/log"
)

// TickReport summarizes one tick.
type TickReport struct {
	Frame       uint64
	Delta       time.Duration
	Commands    int
	TimersFired int
	Objects     int
	Faults      []*behavior.Fault
	// Mutated lists objects whose output pass changed the property store.
	// Only filled with verify_output on.
	Mutated  []identity.ID
	FlushErr error
	Duration time.Duration
}

// Err joins the faults and the flush error of the tick.
func (r TickReport) Err() error {
	errs := make([]error, 0, len(r.Faults)+1)
	for _, f := range r.Faults {
		errs = append(errs, f)
	}
	if r.FlushErr != nil {
		errs = append(errs, r.FlushErr)
	}
	return errors.Join(errs...)
}

type Stats struct {
	Ticks       uint64
	Objects     int
	Behaviors   int
	Timers      int
	TimersFired uint64
	TimerPanics uint64
	Faults      uint64
	Mutations   uint64
	LastTick    time.Duration
	FPS         float64
}

// Stats is a snapshot of the world counters. Call it from the tick goroutine
// or through Post.
func (w *World) Stats() Stats {
	st := w.stats
	st.Objects = len(w.Objects())
	w.objects.Each(func(_ identity.ID, obj *object) {
		if !obj.doomed {
			st.Behaviors += obj.scripts.Len()
		}
	})
	ts := w.timers.Stats()
	st.Timers = ts.Active
	st.TimersFired = ts.Fired
	st.TimerPanics = ts.Panics
	st.FPS = w.clock.FPS()
	return st
}

var passes = [...]behavior.Pass{behavior.PassInput, behavior.PassProcess, behavior.PassOutput}

// Tick advances the world by one frame: queued commands, clock, timers, then
// the input, process and output passes of every object in ascending id order.
// Attaches, detaches and destroys made during the tick are applied at the
// end, followed by the sink flush and the input frame end.
func (w *World) Tick() TickReport {
	start := time.Now()
	rep := TickReport{Commands: w.drain()}

	w.ticking = true
	w.objects.Each(func(_ identity.ID, obj *object) {
		obj.scripts.Hold()
	})
	rep.Delta = w.clock.Advance()
	rep.Frame = w.clock.Frame()
	rep.TimersFired = w.timers.Advance(rep.Delta)

	env := behavior.Env{
		Store:  w.store,
		Timers: w.timers,
		Input:  w.input,
		Sink:   w.sink,
		Log:    w.log,
	}
	now := behavior.Time{Delta: rep.Delta, Elapsed: w.clock.Elapsed(), Frame: rep.Frame}

	w.objects.Each(func(id identity.ID, obj *object) {
		if obj.doomed {
			return
		}
		rep.Objects++
		ctx := behavior.NewContext(env, id, now)
		for _, pass := range passes {
			if obj.doomed {
				return
			}
			if pass == behavior.PassOutput && w.cfg.VerifyOutput {
				w.verifiedOutput(id, obj, ctx, &rep)
				continue
			}
			rep.Faults = append(rep.Faults, behavior.Faults(obj.scripts.Run(pass, ctx))...)
		}
	})
	w.ticking = false

	w.settle()

	if f, ok := w.sink.(behavior.Flusher); ok {
		if err := f.Flush(rep.Frame); err != nil {
			rep.FlushErr = err
			w.log.Warn("sink flush failed", log.Uint64("frame", rep.Frame), log.Error(err))
		}
	}
	if fe, ok := w.input.(input.FrameEnder); ok {
		fe.EndFrame()
	}

	rep.Duration = time.Since(start)
	w.stats.Ticks++
	w.stats.LastTick = rep.Duration
	return rep
}

func (w *World) verifiedOutput(id identity.ID, obj *object, ctx *behavior.Context, rep *TickReport) {
	before := w.store.Digest()
	rep.Faults = append(rep.Faults, behavior.Faults(obj.scripts.Run(behavior.PassOutput, ctx))...)
	after := w.store.Digest()
	if before == after {
		return
	}
	w.stats.Mutations++
	rep.Mutated = append(rep.Mutated, id)
	w.log.Warn("output pass mutated properties",
		log.Uint32("object", uint32(id)),
		log.String("name", obj.name),
		log.Uint64("frame", rep.Frame),
	)
	w.publish(EventOutputMutated, MutationEvent{Object: id, Frame: rep.Frame, Before: before, After: after})
}

// settle applies the work deferred during the passes.
func (w *World) settle() {
	w.objects.Each(func(_ identity.ID, obj *object) {
		obj.scripts.Settle()
	})
	for _, id := range w.doomed {
		if obj, ok := w.objects.Get(id); ok {
			w.destroy(id, obj)
		}
	}
	w.doomed = w.doomed[:0]
}
