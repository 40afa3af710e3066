package standard

import (
	"fmt"

	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/input"
	"github.com/zeusync/substrate/internal/core/params"
	"github.com/zeusync/substrate/internal/core/systems/physics"
)

// RegisterBuiltins registers the standard units under their blueprint names.
func RegisterBuiltins(reg *behavior.Registry) {
	reg.Register("mover", newMover)
	reg.Register("bounds", newBounds)
	reg.Register("animation", newAnimation)
	reg.Register("input_flag", newInputFlag)
	reg.Register("cursor", newCursor)
	reg.Register("render", newRender)
}

func newMover(p map[string]any) (behavior.Unit, error) {
	m := NewMover()
	var err error
	if m.Position, err = stringParam(p, "position", m.Position); err != nil {
		return nil, err
	}
	if m.Velocity, err = stringParam(p, "velocity", m.Velocity); err != nil {
		return nil, err
	}
	return m, nil
}

func newBounds(p map[string]any) (behavior.Unit, error) {
	rect, err := rectParam(p)
	if err != nil {
		return nil, err
	}
	modeName, err := stringParam(p, "mode", "clamp")
	if err != nil {
		return nil, err
	}
	mode, err := ParseBoundsMode(modeName)
	if err != nil {
		return nil, err
	}
	b := NewBounds(rect, mode)
	if b.Position, err = stringParam(p, "position", b.Position); err != nil {
		return nil, err
	}
	if b.Inside, err = stringParam(p, "inside", b.Inside); err != nil {
		return nil, err
	}
	return b, nil
}

func newAnimation(p map[string]any) (behavior.Unit, error) {
	a := &Animation{}
	var err error
	if a.MaxFrameRate, err = floatParam(p, "max_frame_rate", 0); err != nil {
		return nil, err
	}
	if a.MaxFrameRate <= 0 {
		return nil, fmt.Errorf("%w: max_frame_rate must be positive", behavior.ErrInvalidParameter)
	}
	if a.Speed, err = floatParam(p, "speed", 1); err != nil {
		return nil, err
	}
	if a.MaxFrame, err = intParam(p, "max_frame", 0); err != nil {
		return nil, err
	}
	if a.Looping, err = boolParam(p, "looping", false); err != nil {
		return nil, err
	}
	if a.StartRunning, err = boolParam(p, "start_running", true); err != nil {
		return nil, err
	}
	return a, nil
}

func newInputFlag(p map[string]any) (behavior.Unit, error) {
	cond, err := conditionParam(p)
	if err != nil {
		return nil, err
	}
	prop, err := stringParam(p, "property", "")
	if err != nil {
		return nil, err
	}
	if prop == "" {
		return nil, fmt.Errorf("%w: property is required", behavior.ErrInvalidParameter)
	}
	return &InputActuator{Condition: cond, Property: prop}, nil
}

func newCursor(p map[string]any) (behavior.Unit, error) {
	prop, err := stringParam(p, "property", "cursor")
	if err != nil {
		return nil, err
	}
	return &CursorTracker{Property: prop}, nil
}

func newRender(p map[string]any) (behavior.Unit, error) {
	ch, err := stringParam(p, "channel", "surface")
	if err != nil {
		return nil, err
	}
	local, err := stringsParam(p, "properties")
	if err != nil {
		return nil, err
	}
	global, err := stringsParam(p, "globals")
	if err != nil {
		return nil, err
	}
	if len(local)+len(global) == 0 {
		return nil, fmt.Errorf("%w: render needs properties or globals", behavior.ErrInvalidParameter)
	}
	return &RenderEmitter{Channel: ch, Properties: local, Globals: global}, nil
}

func invalid(key string, err error) error {
	return fmt.Errorf("%w: %s: %v", behavior.ErrInvalidParameter, key, err)
}

func stringParam(p map[string]any, key, def string) (string, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", behavior.ErrInvalidParameter, key)
	}
	return s, nil
}

func stringsParam(p map[string]any, key string) ([]string, error) {
	raw, ok := p[key]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list", behavior.ErrInvalidParameter, key)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must hold strings", behavior.ErrInvalidParameter, key)
		}
		out = append(out, s)
	}
	return out, nil
}

func floatParam(p map[string]any, key string, def float64) (float64, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	d, err := params.ParseAs(params.KindFloat, raw)
	if err != nil {
		return 0, invalid(key, err)
	}
	return d.AsFloat()
}

func intParam(p map[string]any, key string, def int64) (int64, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	d, err := params.ParseAs(params.KindInt, raw)
	if err != nil {
		return 0, invalid(key, err)
	}
	return d.AsInt()
}

func boolParam(p map[string]any, key string, def bool) (bool, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	d, err := params.ParseAs(params.KindBool, raw)
	if err != nil {
		return false, invalid(key, err)
	}
	return d.AsBool()
}

func vec2Param(p map[string]any, key string) (physics.Vec2, error) {
	d, err := params.ParseAs(params.KindVec2, p[key])
	if err != nil {
		return physics.Vec2{}, invalid(key, err)
	}
	return d.AsVec2()
}

// rectParam reads either rect: [x1, y1, x2, y2] or min: [x, y] / max: [x, y].
func rectParam(p map[string]any) (physics.Rect, error) {
	if raw, ok := p["rect"]; ok {
		items, ok := raw.([]any)
		if !ok || len(items) != 4 {
			return physics.Rect{}, fmt.Errorf("%w: rect must be [x1, y1, x2, y2]", behavior.ErrInvalidParameter)
		}
		a, err := params.ParseAs(params.KindVec2, items[:2])
		if err != nil {
			return physics.Rect{}, invalid("rect", err)
		}
		b, err := params.ParseAs(params.KindVec2, items[2:])
		if err != nil {
			return physics.Rect{}, invalid("rect", err)
		}
		lo, _ := a.AsVec2()
		hi, _ := b.AsVec2()
		return physics.NewRect(lo, hi), nil
	}
	lo, err := vec2Param(p, "min")
	if err != nil {
		return physics.Rect{}, err
	}
	hi, err := vec2Param(p, "max")
	if err != nil {
		return physics.Rect{}, err
	}
	return physics.NewRect(lo, hi), nil
}

func conditionParam(p map[string]any) (input.Condition, error) {
	typeName, err := stringParam(p, "type", "key")
	if err != nil {
		return input.Condition{}, err
	}
	typ, err := input.ParseType(typeName)
	if err != nil {
		return input.Condition{}, invalid("type", err)
	}
	stateName, err := stringParam(p, "state", "pressed")
	if err != nil {
		return input.Condition{}, err
	}
	state, err := input.ParseState(stateName)
	if err != nil {
		return input.Condition{}, invalid("state", err)
	}
	code, err := intParam(p, "code", 0)
	if err != nil {
		return input.Condition{}, err
	}
	return input.Condition{Code: int(code), Type: typ, State: state}, nil
}
