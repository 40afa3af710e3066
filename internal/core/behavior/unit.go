package behavior

import (
	"fmt"
	"strings"

	"github.com/zeusync/substrate/internal/core/identity"
)

// Unit is a pluggable behavior. A unit takes part in a pass by implementing
// InputCollector, Processor or OutputEmitter.
type Unit interface {
	Name() string
}

// InputCollector observes external input and records it in properties.
type InputCollector interface {
	Unit
	CollectInput(ctx *Context) error
}

// Processor runs the per-tick simulation step.
type Processor interface {
	Unit
	Process(ctx *Context) error
}

// OutputEmitter reads properties and hands parameter bundles to the sink.
// It must not write properties.
type OutputEmitter interface {
	Unit
	EmitOutput(ctx *OutputContext) error
}

// Capability is a set of passes.
type Capability uint8

const (
	CapInput Capability = 1 << iota
	CapProcess
	CapOutput

	CapAll = CapInput | CapProcess | CapOutput
)

func (c Capability) Has(o Capability) bool { return c&o == o }

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, p := range []Pass{PassInput, PassProcess, PassOutput} {
		if c.Has(p.Capability()) {
			parts = append(parts, p.String())
		}
	}
	return strings.Join(parts, "|")
}

// CapabilityReporter lets a unit opt out of passes it technically implements,
// as function-backed units do.
type CapabilityReporter interface {
	Capabilities() Capability
}

type Attacher interface {
	OnAttach(owner identity.ID)
}

type Detacher interface {
	OnDetach(owner identity.ID)
}

// CapabilitiesOf derives the passes u takes part in.
func CapabilitiesOf(u Unit) Capability {
	var c Capability
	if _, ok := u.(InputCollector); ok {
		c |= CapInput
	}
	if _, ok := u.(Processor); ok {
		c |= CapProcess
	}
	if _, ok := u.(OutputEmitter); ok {
		c |= CapOutput
	}
	if r, ok := u.(CapabilityReporter); ok {
		c &= r.Capabilities()
	}
	return c
}

// Pass is one stage of the per-object pipeline.
type Pass uint8

const (
	PassInput Pass = iota
	PassProcess
	PassOutput
)

func (p Pass) String() string {
	switch p {
	case PassInput:
		return "input"
	case PassProcess:
		return "process"
	case PassOutput:
		return "output"
	default:
		return fmt.Sprintf("pass(%d)", uint8(p))
	}
}

func (p Pass) Capability() Capability {
	return Capability(1) << p
}
