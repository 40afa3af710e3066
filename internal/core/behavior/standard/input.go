package standard

import (
	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/input"
	"github.com/zeusync/substrate/internal/core/params"
)

// InputActuator runs Action whenever Condition is active. Without an action
// it writes the condition state to the bool property Property.
type InputActuator struct {
	Label     string
	Condition input.Condition
	Property  string
	Action    func(ctx *behavior.Context) error
}

var _ behavior.InputCollector = (*InputActuator)(nil)

func (a *InputActuator) Name() string {
	if a.Label != "" {
		return a.Label
	}
	return "input_flag"
}

func (a *InputActuator) CollectInput(ctx *behavior.Context) error {
	if ctx.Input == nil {
		return nil
	}
	active := ctx.Input.Active(a.Condition)
	if a.Action != nil {
		if active {
			return a.Action(ctx)
		}
		return nil
	}
	ctx.Local.Set(a.Property, params.Bool(active))
	return nil
}

// CursorTracker copies the cursor position into a vec2 property.
type CursorTracker struct {
	Property string
}

var _ behavior.InputCollector = (*CursorTracker)(nil)

func (c *CursorTracker) Name() string { return "cursor" }

func (c *CursorTracker) CollectInput(ctx *behavior.Context) error {
	if ctx.Input == nil {
		return nil
	}
	if p, ok := ctx.Input.Cursor(); ok {
		ctx.Local.Set(c.Property, params.Vec2(p))
	}
	return nil
}
