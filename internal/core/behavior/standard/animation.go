package standard

import (
	"errors"
	"math"

	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/params"
	"github.com/zeusync/substrate/internal/core/props"
)

const (
	PropAnimFrame  = "anim.frame"
	PropAnimState  = "anim.state"
	PropAnimPaused = "anim.paused"
	PropAnimTime   = "anim.time"
)

// Animation states written to anim.state. Setting the property to
// AnimRunning from another unit starts a ready animation.
const (
	AnimReady   = "ready"
	AnimRunning = "running"
	AnimPaused  = "paused"
	AnimDone    = "done"
)

// Animation advances a frame counter at MaxFrameRate*|Speed| frames per
// second. Progress lives in the owner's properties, so one instance can serve
// many objects.
type Animation struct {
	MaxFrameRate float64
	Speed        float64
	MaxFrame     int64 // frames per cycle; <= 0 means unbounded
	Looping      bool
	StartRunning bool
}

var _ behavior.Processor = (*Animation)(nil)

func (a *Animation) Name() string { return "animation" }

// FrameLength is the duration of one frame in seconds, or 0 when the
// animation cannot advance.
func (a *Animation) FrameLength() float64 {
	rate := a.MaxFrameRate * math.Abs(a.Speed)
	if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
		return 0
	}
	return 1 / rate
}

func (a *Animation) Process(ctx *behavior.Context) error {
	local := ctx.Local

	state, err := local.GetString(PropAnimState)
	if errors.Is(err, props.ErrNotFound) {
		state = AnimReady
		if a.StartRunning {
			state = AnimRunning
		}
		local.Set(PropAnimFrame, params.Int(0))
		local.Set(PropAnimTime, params.Float(0))
	} else if err != nil {
		return err
	}

	paused, err := local.GetBool(PropAnimPaused)
	if err != nil && !errors.Is(err, props.ErrNotFound) {
		return err
	}
	switch {
	case paused && state == AnimRunning:
		state = AnimPaused
	case !paused && state == AnimPaused:
		state = AnimRunning
	}

	if state == AnimRunning {
		if err := a.advance(local, ctx.DeltaSeconds(), &state); err != nil {
			return err
		}
	}
	local.Set(PropAnimState, params.String(state))
	return nil
}

func (a *Animation) advance(local *props.Scoped, dt float64, state *string) error {
	length := a.FrameLength()
	if length == 0 {
		return nil
	}
	frame, err := local.GetInt(PropAnimFrame)
	if err != nil && !errors.Is(err, props.ErrNotFound) {
		return err
	}
	acc, err := local.GetFloat(PropAnimTime)
	if err != nil && !errors.Is(err, props.ErrNotFound) {
		return err
	}

	acc += dt
	for acc >= length {
		acc -= length
		frame++
		if a.MaxFrame > 0 && frame >= a.MaxFrame {
			if a.Looping {
				frame = 0
				continue
			}
			frame = a.MaxFrame - 1
			acc = 0
			*state = AnimDone
			break
		}
	}
	local.Set(PropAnimFrame, params.Int(frame))
	local.Set(PropAnimTime, params.Float(acc))
	return nil
}
