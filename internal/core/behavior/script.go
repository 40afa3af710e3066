package behavior

import "github.com/zeusync/substrate/internal/core/identity"

// Script is a function-backed unit. Only the non-nil functions count as
// capabilities.
type Script struct {
	Label     string
	OnInput   func(ctx *Context) error
	OnProcess func(ctx *Context) error
	OnOutput  func(ctx *OutputContext) error
}

var (
	_ InputCollector     = (*Script)(nil)
	_ Processor          = (*Script)(nil)
	_ OutputEmitter      = (*Script)(nil)
	_ CapabilityReporter = (*Script)(nil)
)

func (s *Script) Name() string {
	if s.Label == "" {
		return "script"
	}
	return s.Label
}

func (s *Script) Capabilities() Capability {
	var c Capability
	if s.OnInput != nil {
		c |= CapInput
	}
	if s.OnProcess != nil {
		c |= CapProcess
	}
	if s.OnOutput != nil {
		c |= CapOutput
	}
	return c
}

func (s *Script) CollectInput(ctx *Context) error {
	if s.OnInput == nil {
		return nil
	}
	return s.OnInput(ctx)
}

func (s *Script) Process(ctx *Context) error {
	if s.OnProcess == nil {
		return nil
	}
	return s.OnProcess(ctx)
}

func (s *Script) EmitOutput(ctx *OutputContext) error {
	if s.OnOutput == nil {
		return nil
	}
	return s.OnOutput(ctx)
}

// Actuator is a script that always acts on Target, whichever object it is
// attached to. A controller object can carry actuators that drive other bodies.
type Actuator struct {
	Script
	Target identity.ID
}

func NewActuator(target identity.ID, s Script) *Actuator {
	return &Actuator{Script: s, Target: target}
}

func (a *Actuator) CollectInput(ctx *Context) error {
	return a.Script.CollectInput(ctx.Rebind(a.Target))
}

func (a *Actuator) Process(ctx *Context) error {
	return a.Script.Process(ctx.Rebind(a.Target))
}

func (a *Actuator) EmitOutput(ctx *OutputContext) error {
	return a.Script.EmitOutput(ctx.Rebind(a.Target))
}
