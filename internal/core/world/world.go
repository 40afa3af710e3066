package world

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/clock"
	"github.com/zeusync/substrate/internal/core/events/bus"
	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/input"
	"github.com/zeusync/substrate/internal/core/observability/log"
	"github.com/zeusync/substrate/internal/core/props"
	"github.com/zeusync/substrate/internal/core/timers"
)

type object struct {
	name    string
	scripts *behavior.ScriptMap
	doomed  bool
}

// World is the composition root: it owns the clock, ids, properties, timers
// and every object's behaviors. A World is driven by Tick from one goroutine;
// other goroutines talk to it through Post.
type World struct {
	id     uuid.UUID
	source string
	cfg    Config
	log    log.Log

	clock   *clock.Clock
	alloc   *identity.Allocator
	store   *props.Store
	timers  *timers.Scheduler
	events  bus.EventBus
	objects *identity.Registry[*object]

	input input.Source
	sink  behavior.Sink

	commands chan func(*World)

	ticking bool
	doomed  []identity.ID
	stats   Stats
}

type options struct {
	logger log.Log
	clock  *clock.Clock
	events bus.EventBus
	input  input.Source
	sink   behavior.Sink
}

type Option func(*options)

func WithLogger(l log.Log) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces the clock built from the config, e.g. with one on a
// clock.ManualProvider in tests.
func WithClock(c *clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithEventBus(b bus.EventBus) Option {
	return func(o *options) { o.events = b }
}

func WithInput(src input.Source) Option {
	return func(o *options) { o.input = src }
}

func WithSink(s behavior.Sink) Option {
	return func(o *options) { o.sink = s }
}

// NewClock builds the clock described by cfg.
func NewClock(cfg Config) *clock.Clock {
	return clock.New(
		clock.WithFixedStep(cfg.FixedStep.Std()),
		clock.WithMaxDelta(cfg.MaxDelta.Std()),
		clock.WithTimeScale(cfg.TimeScale),
	)
}

// New builds a world with its own components. Zero config fields take their
// defaults.
func New(cfg Config, opts ...Option) *World {
	cfg = cfg.normalized()
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(log.ParseLevel(cfg.LogLevel))
	}
	if o.clock == nil {
		o.clock = NewClock(cfg)
	}
	if o.events == nil {
		o.events = bus.New()
	}

	alloc := identity.NewAllocator()
	w := Assemble(cfg, o.logger, o.clock, alloc, props.NewStore(), timers.New(alloc, o.logger), o.events)
	w.input = o.input
	w.sink = o.sink
	return w
}

// Assemble wires a world from explicit components. The scheduler must draw
// its ids from alloc.
func Assemble(
	cfg Config,
	logger log.Log,
	clk *clock.Clock,
	alloc *identity.Allocator,
	store *props.Store,
	sched *timers.Scheduler,
	events bus.EventBus,
) *World {
	cfg = cfg.normalized()
	id := uuid.New()
	w := &World{
		id:       id,
		source:   "world:" + id.String(),
		cfg:      cfg,
		log:      logger.With(log.String("component", "world"), log.Stringer("world", id)),
		clock:    clk,
		alloc:    alloc,
		store:    store,
		timers:   sched,
		events:   events,
		objects:  identity.NewRegistry[*object](alloc, identity.DomainBodies),
		commands: make(chan func(*World), cfg.CommandBuffer),
	}
	sched.OnFire(w.onTimerFired)
	w.log.Info("world created",
		log.Float64("tick_rate", cfg.TickRate),
		log.Duration("fixed_step", cfg.FixedStep.Std()),
		log.Bool("verify_output", cfg.VerifyOutput),
	)
	return w
}

func (w *World) ID() uuid.UUID                  { return w.id }
func (w *World) Config() Config                 { return w.cfg }
func (w *World) Logger() log.Log                { return w.log }
func (w *World) Clock() *clock.Clock            { return w.clock }
func (w *World) Allocator() *identity.Allocator { return w.alloc }
func (w *World) Store() *props.Store            { return w.store }
func (w *World) Timers() *timers.Scheduler      { return w.timers }
func (w *World) Events() bus.EventBus           { return w.events }

// Global is the world-wide property scope.
func (w *World) Global() *props.Scoped { return w.store.Global() }

// Local is the property scope of one object.
func (w *World) Local(id identity.ID) *props.Scoped { return w.store.Local(id) }

// SetInput replaces the input source. Call it between ticks.
func (w *World) SetInput(src input.Source) { w.input = src }

// SetSink replaces the output sink. Call it between ticks.
func (w *World) SetSink(s behavior.Sink) { w.sink = s }

func (w *World) CreateObject() identity.ID {
	return w.CreateNamed("")
}

// CreateNamed creates an object with a label used in logs and events. Names
// need not be unique. An object created during a tick joins the next one.
func (w *World) CreateNamed(name string) identity.ID {
	obj := &object{name: name}
	id := w.objects.Add(obj)
	obj.scripts = behavior.NewScriptMap(id, w.alloc, w.log)
	obj.scripts.OnFault(w.onFault)
	if w.ticking {
		obj.scripts.Hold()
	}
	w.store.ClearLocal(id)

	w.log.Debug("object created", log.Uint32("object", uint32(id)), log.String("name", name))
	w.publish(EventObjectCreated, ObjectEvent{Object: id, Name: name})
	return id
}

func (w *World) lookup(id identity.ID) (*object, error) {
	obj, ok := w.objects.Get(id)
	if !ok || obj.doomed {
		return nil, fmt.Errorf("%w: %d", ErrObjectNotFound, id)
	}
	return obj, nil
}

func (w *World) Name(id identity.ID) (string, bool) {
	obj, err := w.lookup(id)
	if err != nil {
		return "", false
	}
	return obj.name, true
}

// Exists reports whether id is a live object. Objects pending destruction
// do not exist.
func (w *World) Exists(id identity.ID) bool {
	_, err := w.lookup(id)
	return err == nil
}

// Objects lists live objects in ascending id order.
func (w *World) Objects() []identity.ID {
	ids := w.objects.IDs()
	out := ids[:0]
	for _, id := range ids {
		if w.Exists(id) {
			out = append(out, id)
		}
	}
	return out
}

// DestroyObject detaches every behavior, cancels the object's timers, clears
// its local properties and releases its id. During a tick the object is
// skipped for the remaining passes and destroyed at the tick boundary.
func (w *World) DestroyObject(id identity.ID) error {
	obj, err := w.lookup(id)
	if err != nil {
		return err
	}
	if w.ticking {
		obj.doomed = true
		w.doomed = append(w.doomed, id)
		return nil
	}
	w.destroy(id, obj)
	return nil
}

func (w *World) destroy(id identity.ID, obj *object) {
	units := obj.scripts.Len()
	obj.scripts.Destroy()
	cancelled := w.timers.CancelOwned(id)
	w.store.ClearLocal(id)
	w.objects.Remove(id)

	w.log.Debug("object destroyed",
		log.Uint32("object", uint32(id)),
		log.String("name", obj.name),
		log.Int("behaviors", units),
		log.Int("timers", cancelled),
	)
	w.publish(EventObjectDestroyed, ObjectEvent{Object: id, Name: obj.name})
}

// Attach appends a behavior unit to an object. A unit attached during a tick
// starts on the next one.
func (w *World) Attach(id identity.ID, u behavior.Unit) (identity.ID, error) {
	obj, err := w.lookup(id)
	if err != nil {
		return identity.None, err
	}
	unit, err := obj.scripts.Attach(u)
	if err != nil {
		return identity.None, err
	}
	w.publish(EventBehaviorAttached, BehaviorEvent{Object: id, Unit: unit, Name: u.Name()})
	return unit, nil
}

// Detach removes a unit by its id. During a tick the unit is skipped at once
// and its id is released at the tick boundary.
func (w *World) Detach(id, unit identity.ID) error {
	obj, err := w.lookup(id)
	if err != nil {
		return err
	}
	name := ""
	for _, a := range obj.scripts.Units() {
		if a.ID == unit {
			name = a.Unit.Name()
			break
		}
	}
	if err := obj.scripts.Detach(unit); err != nil {
		return err
	}
	w.publish(EventBehaviorDetached, BehaviorEvent{Object: id, Unit: unit, Name: name})
	return nil
}

// DetachUnit removes the first attachment of u.
func (w *World) DetachUnit(id identity.ID, u behavior.Unit) error {
	obj, err := w.lookup(id)
	if err != nil {
		return err
	}
	unit, ok := obj.scripts.Find(u)
	if !ok {
		return obj.scripts.DetachUnit(u)
	}
	return w.Detach(id, unit)
}

// Behaviors lists the units attached to an object in invocation order.
func (w *World) Behaviors(id identity.ID) ([]behavior.Attached, error) {
	obj, err := w.lookup(id)
	if err != nil {
		return nil, err
	}
	return obj.scripts.Units(), nil
}

// Schedule arms a world timer. See timers.Scheduler.Schedule.
func (w *World) Schedule(interval time.Duration, repeats int, cb timers.Callback, opts ...timers.Option) (identity.ID, error) {
	return w.timers.Schedule(interval, repeats, cb, opts...)
}

// Cancel disarms a timer. Cancelling an inactive timer is a no-op.
func (w *World) Cancel(id identity.ID) bool {
	return w.timers.Cancel(id)
}

func (w *World) onTimerFired(f timers.Fired) {
	w.publish(EventTimerFired, f)
}

func (w *World) onFault(f *behavior.Fault) {
	w.stats.Faults++
	w.publish(EventBehaviorFault, f)
}

// Post queues cmd to run on the tick goroutine at the start of the next tick.
// It is the only World method safe to call from other goroutines.
func (w *World) Post(cmd func(*World)) error {
	if cmd == nil {
		return nil
	}
	select {
	case w.commands <- cmd:
		return nil
	default:
		return fmt.Errorf("%w: %d pending", ErrQueueFull, cap(w.commands))
	}
}

// drain runs the commands queued before the call. Commands posted while
// draining wait for the next tick.
func (w *World) drain() int {
	n := len(w.commands)
	for i := 0; i < n; i++ {
		w.runCommand(<-w.commands)
	}
	return n
}

func (w *World) runCommand(cmd func(*World)) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("command panicked", log.Any("panic", r))
		}
	}()
	cmd(w)
}

// Run ticks at the configured rate until ctx is cancelled.
func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.TickInterval())
	defer ticker.Stop()

	w.log.Info("world running", log.Duration("interval", w.cfg.TickInterval()))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("world stopped", log.Uint64("frames", w.clock.Frame()))
			return nil
		case <-ticker.C:
			w.Tick()
		}
	}
}
