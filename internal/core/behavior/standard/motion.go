package standard

import (
	"errors"
	"fmt"

	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/params"
	"github.com/zeusync/substrate/internal/core/props"
	"github.com/zeusync/substrate/internal/core/systems/physics"
)

const (
	PropPosition     = "position"
	PropVelocity     = "velocity"
	PropBoundsInside = "bounds.inside"
)

// Mover integrates velocity into position.
type Mover struct {
	Position string
	Velocity string
}

var _ behavior.Processor = (*Mover)(nil)

func NewMover() *Mover {
	return &Mover{Position: PropPosition, Velocity: PropVelocity}
}

func (m *Mover) Name() string { return "mover" }

func (m *Mover) Process(ctx *behavior.Context) error {
	vel, err := ctx.Local.GetVec2(m.Velocity)
	if errors.Is(err, props.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	pos, err := optionalVec2(ctx.Local, m.Position)
	if err != nil {
		return err
	}
	ctx.Local.Set(m.Position, params.Vec2(pos.Add(vel.Scale(ctx.DeltaSeconds()))))
	return nil
}

// BoundsMode is what Bounds does with a position outside its rectangle.
type BoundsMode uint8

const (
	BoundsClamp BoundsMode = iota
	BoundsWrap
	BoundsFlag
)

func ParseBoundsMode(s string) (BoundsMode, error) {
	switch s {
	case "", "clamp":
		return BoundsClamp, nil
	case "wrap":
		return BoundsWrap, nil
	case "flag":
		return BoundsFlag, nil
	default:
		return 0, fmt.Errorf("%w: bounds mode %q", behavior.ErrInvalidParameter, s)
	}
}

// Bounds keeps a position inside a rectangle. The inside flag reports the
// position before correction, so other units can react to the crossing.
type Bounds struct {
	Rect     physics.Rect
	Mode     BoundsMode
	Position string
	Inside   string
}

var _ behavior.Processor = (*Bounds)(nil)

func NewBounds(r physics.Rect, mode BoundsMode) *Bounds {
	return &Bounds{Rect: r, Mode: mode, Position: PropPosition, Inside: PropBoundsInside}
}

func (b *Bounds) Name() string { return "bounds" }

func (b *Bounds) Process(ctx *behavior.Context) error {
	pos, err := ctx.Local.GetVec2(b.Position)
	if errors.Is(err, props.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	inside := b.Rect.Contains(pos)
	ctx.Local.Set(b.Inside, params.Bool(inside))
	if inside {
		return nil
	}
	switch b.Mode {
	case BoundsClamp:
		ctx.Local.Set(b.Position, params.Vec2(b.Rect.Clamp(pos)))
	case BoundsWrap:
		ctx.Local.Set(b.Position, params.Vec2(b.Rect.Wrap(pos)))
	}
	return nil
}

func optionalVec2(r props.Reader, name string) (physics.Vec2, error) {
	v, err := r.GetVec2(name)
	if errors.Is(err, props.ErrNotFound) {
		return physics.Vec2{}, nil
	}
	return v, err
}
