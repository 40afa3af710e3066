package behavior

import (
	"time"

	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/input"
	"github.com/zeusync/substrate/internal/core/observability/log"
	"github.com/zeusync/substrate/internal/core/params"
	"github.com/zeusync/substrate/internal/core/props"
	"github.com/zeusync/substrate/internal/core/timers"
)

// Sink receives parameter bundles from the output pass. Channel names the
// consumer, e.g. "surface", "material" or "light".
type Sink interface {
	Submit(owner identity.ID, channel string, bundle params.Bundle)
}

// Flusher is implemented by sinks that batch per frame.
type Flusher interface {
	Flush(frame uint64) error
}

// Env is what a world lends to the pipeline for one tick.
type Env struct {
	Store  *props.Store
	Timers *timers.Scheduler
	Input  input.Source
	Sink   Sink
	Log    log.Log
}

// Time is the clock reading of the current tick.
type Time struct {
	Delta   time.Duration
	Elapsed time.Duration
	Frame   uint64
}

// OwnerTimers schedules timers bound to one object. They are cancelled when
// the object is destroyed.
type OwnerTimers struct {
	sched *timers.Scheduler
	owner identity.ID
}

func (t OwnerTimers) Schedule(interval time.Duration, repeats int, cb timers.Callback, opts ...timers.Option) (identity.ID, error) {
	opts = append(opts, timers.WithOwner(t.owner))
	return t.sched.Schedule(interval, repeats, cb, opts...)
}

func (t OwnerTimers) Cancel(id identity.ID) bool {
	return t.sched.Cancel(id)
}

// Context is handed to the input and process passes.
type Context struct {
	Owner   identity.ID
	Local   *props.Scoped
	Global  *props.Scoped
	Input   input.Source
	Timers  OwnerTimers
	Delta   time.Duration
	Elapsed time.Duration
	Frame   uint64
	Log     log.Log

	env Env
	now Time
}

func NewContext(env Env, owner identity.ID, now Time) *Context {
	if env.Log == nil {
		env.Log = log.NewNop()
	}
	return &Context{
		Owner:   owner,
		Local:   env.Store.Local(owner),
		Global:  env.Store.Global(),
		Input:   env.Input,
		Timers:  OwnerTimers{sched: env.Timers, owner: owner},
		Delta:   now.Delta,
		Elapsed: now.Elapsed,
		Frame:   now.Frame,
		Log:     env.Log,
		env:     env,
		now:     now,
	}
}

func (c *Context) DeltaSeconds() float64 { return c.Delta.Seconds() }

// Rebind returns a context for another owner in the same tick.
func (c *Context) Rebind(owner identity.ID) *Context {
	return NewContext(c.env, owner, c.now)
}

// Output returns the read-only view used by the output pass.
func (c *Context) Output() *OutputContext {
	return &OutputContext{
		Owner:   c.Owner,
		Local:   c.Local,
		Global:  c.Global,
		Sink:    c.env.Sink,
		Delta:   c.Delta,
		Elapsed: c.Elapsed,
		Frame:   c.Frame,
		Log:     c.Log,
		base:    c,
	}
}

// OutputContext is handed to the output pass. Properties are read-only.
type OutputContext struct {
	Owner   identity.ID
	Local   props.Reader
	Global  props.Reader
	Sink    Sink
	Delta   time.Duration
	Elapsed time.Duration
	Frame   uint64
	Log     log.Log

	base *Context
}

// Rebind returns an output context for another owner in the same tick.
func (c *OutputContext) Rebind(owner identity.ID) *OutputContext {
	if c.base == nil {
		bound := *c
		bound.Owner = owner
		return &bound
	}
	return c.base.Rebind(owner).Output()
}

// Submit sends a bundle for this owner. Without a sink it does nothing.
func (c *OutputContext) Submit(channel string, bundle params.Bundle) {
	if c.Sink != nil {
		c.Sink.Submit(c.Owner, channel, bundle)
	}
}
