package physics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRect(t *testing.T) {
	r := NewRect(Vec2{10, 10}, Vec2{0, 0})
	require.Equal(t, Vec2{0, 0}, r.Min)
	require.Equal(t, Vec2{10, 10}, r.Max)

	t.Run("Contains", func(t *testing.T) {
		require.True(t, r.Contains(Vec2{0, 10}))
		require.False(t, r.Contains(Vec2{-0.1, 5}))
	})

	t.Run("Clamp", func(t *testing.T) {
		require.Equal(t, Vec2{10, 0}, r.Clamp(Vec2{12, -3}))
		require.Equal(t, Vec2{4, 5}, r.Clamp(Vec2{4, 5}))
	})

	t.Run("Wrap", func(t *testing.T) {
		require.InDelta(t, 2.0, r.Wrap(Vec2{12, 0}).X, 1e-9)
		require.InDelta(t, 7.0, r.Wrap(Vec2{0, -3}).Y, 1e-9)
		flat := Rect{Min: Vec2{1, 1}, Max: Vec2{1, 5}}
		require.Equal(t, 1.0, flat.Wrap(Vec2{9, 2}).X)
	})
}

func TestVec(t *testing.T) {
	a := Vec2{3, 4}
	require.Equal(t, 5.0, a.Len())
	require.Equal(t, Vec2{6, 8}, a.Scale(2))
	require.Equal(t, 5.0, Vec2{}.Distance(a))
	require.Equal(t, Vec2{1, 2}, Vec3{1, 2, 3}.XY())
}
