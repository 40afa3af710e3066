package standard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/input"
	"github.com/zeusync/substrate/internal/core/params"
	"github.com/zeusync/substrate/internal/core/props"
	"github.com/zeusync/substrate/internal/core/systems/physics"
)

const owner identity.ID = 1

type sinkFunc func(identity.ID, string, params.Bundle)

func (f sinkFunc) Submit(o identity.ID, ch string, b params.Bundle) { f(o, ch, b) }

func newEnv(src input.Source, sink behavior.Sink) behavior.Env {
	return behavior.Env{Store: props.NewStore(), Input: src, Sink: sink}
}

func step(env behavior.Env, dt time.Duration) *behavior.Context {
	return behavior.NewContext(env, owner, behavior.Time{Delta: dt})
}

func TestMover(t *testing.T) {
	env := newEnv(nil, nil)
	m := NewMover()

	require.NoError(t, m.Process(step(env, time.Second)), "no velocity is a no-op")
	require.False(t, env.Store.Local(owner).Has(PropPosition))

	env.Store.Local(owner).Set(PropVelocity, params.Vec2(physics.Vec2{X: 2, Y: -4}))
	require.NoError(t, m.Process(step(env, 500*time.Millisecond)))
	pos, err := env.Store.Local(owner).GetVec2(PropPosition)
	require.NoError(t, err)
	require.Equal(t, physics.Vec2{X: 1, Y: -2}, pos)

	env.Store.Local(owner).Set(PropVelocity, params.Int(3))
	require.ErrorIs(t, m.Process(step(env, time.Second)), params.ErrTypeMismatch)
}

func TestBounds(t *testing.T) {
	rect := physics.NewRect(physics.Vec2{}, physics.Vec2{X: 10, Y: 10})
	tests := []struct {
		mode   BoundsMode
		start  physics.Vec2
		want   physics.Vec2
		inside bool
	}{
		{BoundsClamp, physics.Vec2{X: 12, Y: 5}, physics.Vec2{X: 10, Y: 5}, false},
		{BoundsWrap, physics.Vec2{X: 12, Y: 5}, physics.Vec2{X: 2, Y: 5}, false},
		{BoundsFlag, physics.Vec2{X: 12, Y: 5}, physics.Vec2{X: 12, Y: 5}, false},
		{BoundsClamp, physics.Vec2{X: 3, Y: 3}, physics.Vec2{X: 3, Y: 3}, true},
	}
	for _, tt := range tests {
		env := newEnv(nil, nil)
		local := env.Store.Local(owner)
		local.Set(PropPosition, params.Vec2(tt.start))

		require.NoError(t, NewBounds(rect, tt.mode).Process(step(env, 0)))
		pos, _ := local.GetVec2(PropPosition)
		require.InDelta(t, tt.want.X, pos.X, 1e-9)
		require.InDelta(t, tt.want.Y, pos.Y, 1e-9)
		inside, err := local.GetBool(PropBoundsInside)
		require.NoError(t, err)
		require.Equal(t, tt.inside, inside)
	}
}

func TestAnimation(t *testing.T) {
	t.Run("FrameLength", func(t *testing.T) {
		require.Equal(t, 0.05, (&Animation{MaxFrameRate: 10, Speed: -2}).FrameLength())
		require.Equal(t, 0.0, (&Animation{MaxFrameRate: 10, Speed: 0}).FrameLength())
	})

	t.Run("Looping", func(t *testing.T) {
		env := newEnv(nil, nil)
		a := &Animation{MaxFrameRate: 4, Speed: 1, MaxFrame: 3, Looping: true, StartRunning: true}
		for range 5 {
			require.NoError(t, a.Process(step(env, 250*time.Millisecond)))
		}
		frame, _ := env.Store.Local(owner).GetInt(PropAnimFrame)
		require.Equal(t, int64(2), frame, "5 frames over a 3 frame loop")
		state, _ := env.Store.Local(owner).GetString(PropAnimState)
		require.Equal(t, AnimRunning, state)
	})

	t.Run("OneShotFinishes", func(t *testing.T) {
		env := newEnv(nil, nil)
		a := &Animation{MaxFrameRate: 10, Speed: 1, MaxFrame: 3, StartRunning: true}
		require.NoError(t, a.Process(step(env, time.Second)))
		local := env.Store.Local(owner)
		frame, _ := local.GetInt(PropAnimFrame)
		state, _ := local.GetString(PropAnimState)
		require.Equal(t, int64(2), frame)
		require.Equal(t, AnimDone, state)
	})

	t.Run("PauseAndStart", func(t *testing.T) {
		env := newEnv(nil, nil)
		local := env.Store.Local(owner)
		a := &Animation{MaxFrameRate: 4, Speed: 1}

		require.NoError(t, a.Process(step(env, time.Second)))
		state, _ := local.GetString(PropAnimState)
		require.Equal(t, AnimReady, state)

		local.Set(PropAnimState, params.String(AnimRunning))
		local.Set(PropAnimPaused, params.Bool(true))
		require.NoError(t, a.Process(step(env, time.Second)))
		state, _ = local.GetString(PropAnimState)
		frame, _ := local.GetInt(PropAnimFrame)
		require.Equal(t, AnimPaused, state)
		require.Equal(t, int64(0), frame)

		local.Set(PropAnimPaused, params.Bool(false))
		require.NoError(t, a.Process(step(env, 500*time.Millisecond)))
		frame, _ = local.GetInt(PropAnimFrame)
		require.Equal(t, int64(2), frame)
	})
}

func TestInputUnits(t *testing.T) {
	buf := input.NewBuffer()
	env := newEnv(buf, nil)
	local := env.Store.Local(owner)

	jump := &InputActuator{Condition: input.Condition{Code: 57, Type: input.Key, State: input.Pressed}, Property: "jump"}
	cursor := &CursorTracker{Property: "aim"}

	require.NoError(t, jump.CollectInput(step(env, 0)))
	require.NoError(t, cursor.CollectInput(step(env, 0)))
	v, _ := local.GetBool("jump")
	require.False(t, v)
	require.False(t, local.Has("aim"))

	buf.Press(input.Key, 57)
	buf.MoveCursor(physics.Vec2{X: 4, Y: 2})
	require.NoError(t, jump.CollectInput(step(env, 0)))
	require.NoError(t, cursor.CollectInput(step(env, 0)))
	v, _ = local.GetBool("jump")
	require.True(t, v)
	aim, _ := local.GetVec2("aim")
	require.Equal(t, physics.Vec2{X: 4, Y: 2}, aim)

	fired := 0
	custom := &InputActuator{Condition: jump.Condition, Action: func(*behavior.Context) error { fired++; return nil }}
	require.NoError(t, custom.CollectInput(step(env, 0)))
	require.Equal(t, 1, fired)

	require.NoError(t, jump.CollectInput(step(newEnv(nil, nil), 0)), "no source is a no-op")
}

func TestRenderEmitter(t *testing.T) {
	var got []params.Bundle
	env := newEnv(nil, sinkFunc(func(o identity.ID, ch string, b params.Bundle) {
		require.Equal(t, owner, o)
		require.Equal(t, "material", ch)
		got = append(got, b)
	}))
	r := &RenderEmitter{Channel: "material", Properties: []string{"tint", "missing"}, Globals: []string{"ambient"}}

	require.NoError(t, r.EmitOutput(step(env, 0).Output()))
	require.Empty(t, got, "empty bundles are not submitted")

	env.Store.Local(owner).Set("tint", params.RGBA(255, 0, 0, 255))
	env.Store.Global().Set("ambient", params.Float(0.3))
	require.NoError(t, r.EmitOutput(step(env, 0).Output()))
	require.Len(t, got, 1)
	require.Len(t, got[0], 2)
	require.True(t, got[0]["ambient"].Equal(params.Float(0.3)))
}

func TestRegisterBuiltins(t *testing.T) {
	reg := behavior.NewRegistry()
	RegisterBuiltins(reg)
	require.Equal(t, []string{"animation", "bounds", "cursor", "input_flag", "mover", "render"}, reg.Names())

	tests := []struct {
		name   string
		params map[string]any
		ok     bool
	}{
		{"mover", nil, true},
		{"mover", map[string]any{"position": 3}, false},
		{"bounds", map[string]any{"rect": []any{0, 0, 10, 10}, "mode": "wrap"}, true},
		{"bounds", map[string]any{"min": []any{0, 0}, "max": []any{5, 5}}, true},
		{"bounds", map[string]any{"rect": []any{0, 0}}, false},
		{"bounds", map[string]any{"rect": []any{0, 0, 1, 1}, "mode": "bounce"}, false},
		{"animation", map[string]any{"max_frame_rate": 12, "max_frame": 8, "looping": true}, true},
		{"animation", map[string]any{"speed": 2}, false},
		{"input_flag", map[string]any{"type": "button", "code": 0, "state": "held", "property": "firing"}, true},
		{"input_flag", map[string]any{"type": "key"}, false},
		{"cursor", nil, true},
		{"render", map[string]any{"properties": []any{"position"}}, true},
		{"render", map[string]any{}, false},
	}
	for _, tt := range tests {
		u, err := reg.New(tt.name, tt.params)
		if !tt.ok {
			require.ErrorIs(t, err, behavior.ErrInvalidParameter, "%s %v", tt.name, tt.params)
			continue
		}
		require.NoError(t, err, "%s %v", tt.name, tt.params)
		require.Equal(t, tt.name, u.Name())
	}

	b, err := reg.New("bounds", map[string]any{"rect": []any{10, 10, 0, 0}, "mode": "flag"})
	require.NoError(t, err)
	require.Equal(t, physics.Vec2{X: 10, Y: 10}, b.(*Bounds).Rect.Max)
	require.Equal(t, BoundsFlag, b.(*Bounds).Mode)
}
