package props

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/params"
	"github.com/zeusync/substrate/internal/core/systems/physics"
)

func TestScoped(t *testing.T) {
	s := NewStore()
	local := s.Local(7)

	t.Run("SetGetKeepsKind", func(t *testing.T) {
		local.Set("pos", params.Vec2(physics.Vec2{X: 1, Y: 2}))
		v, err := local.Get("pos")
		require.NoError(t, err)
		require.Equal(t, params.KindVec2, v.Kind())

		p, err := local.GetVec2("pos")
		require.NoError(t, err)
		require.Equal(t, physics.Vec2{X: 1, Y: 2}, p)
	})

	t.Run("OverwriteChangesKind", func(t *testing.T) {
		local.Set("hp", params.Int(10))
		local.Set("hp", params.Float(9.5))
		_, err := local.GetInt("hp")
		require.ErrorIs(t, err, params.ErrTypeMismatch)
		f, err := local.GetFloat("hp")
		require.NoError(t, err)
		require.Equal(t, 9.5, f)
	})

	t.Run("RemoveThenGet", func(t *testing.T) {
		local.Remove("hp")
		_, err := local.Get("hp")
		require.ErrorIs(t, err, ErrNotFound)
		_, err = local.GetFloat("hp")
		require.ErrorIs(t, err, ErrNotFound)
		require.NotPanics(t, func() { local.Remove("hp") })
		require.NotPanics(t, func() { s.Local(99).Remove("anything") })
	})

	t.Run("ScopesAreSeparate", func(t *testing.T) {
		s.Global().Set("pos", params.String("global"))
		require.False(t, s.Local(8).Has("pos"))
		g, err := s.Global().GetString("pos")
		require.NoError(t, err)
		require.Equal(t, "global", g)
		l, err := local.GetVec2("pos")
		require.NoError(t, err)
		require.Equal(t, physics.Vec2{X: 1, Y: 2}, l)
	})

	t.Run("PullAndDefault", func(t *testing.T) {
		local.Set("once", params.Bool(true))
		v, err := local.Pull("once")
		require.NoError(t, err)
		require.True(t, v.Equal(params.Bool(true)))
		require.False(t, local.Has("once"))
		_, err = local.Pull("once")
		require.ErrorIs(t, err, ErrNotFound)

		d := local.GetOrDefault("once", params.Int(3))
		require.True(t, d.Equal(params.Int(3)))
	})

	t.Run("KeysSorted", func(t *testing.T) {
		local.Set("b", params.None())
		local.Set("a", params.None())
		require.Equal(t, []string{"a", "b", "pos"}, local.Keys())
		require.Equal(t, 3, local.Len())
	})
}

func TestStore_Maintenance(t *testing.T) {
	s := NewStore()
	s.Local(3).Set("x", params.Int(1))
	s.Local(1).Set("x", params.Int(1))
	s.Local(2).Set("x", params.Int(1))
	s.Local(2).Remove("x")
	s.Global().Set("g", params.Int(1))

	require.Equal(t, []identity.ID{1, 3}, s.Owners())
	require.Equal(t, 3, s.Len())

	s.ClearLocal(3)
	require.Equal(t, 0, s.Local(3).Len())
	require.Equal(t, []identity.ID{1}, s.Owners())

	s.ClearGlobal()
	require.Empty(t, s.Global().Keys())
}

func TestStore_Digest(t *testing.T) {
	a, b := NewStore(), NewStore()
	a.Local(1).Set("x", params.Int(1))
	a.Local(1).Set("y", params.String("s"))
	a.Global().Set("g", params.Float(2))

	b.Global().Set("g", params.Float(2))
	b.Local(1).Set("y", params.String("s"))
	b.Local(1).Set("x", params.Int(1))
	require.Equal(t, a.Digest(), b.Digest())

	b.Local(1).Set("x", params.Int(2))
	require.NotEqual(t, a.Digest(), b.Digest())

	// same name and value under another owner is a different store
	c := NewStore()
	c.Local(2).Set("x", params.Int(1))
	c.Local(2).Set("y", params.String("s"))
	c.Global().Set("g", params.Float(2))
	require.NotEqual(t, a.Digest(), c.Digest())
}

func TestStore_Snapshot(t *testing.T) {
	s := NewStore()
	s.Global().Set("gravity", params.Vec2(physics.Vec2{Y: -9.8}))
	s.Local(4).Set("tint", params.RGBA(1, 2, 3, 255))
	s.Local(5).Set("name", params.String("crate"))

	raw, err := s.MarshalBinary()
	require.NoError(t, err)

	restored := NewStore()
	restored.Local(9).Set("stale", params.Int(1))
	require.NoError(t, restored.UnmarshalBinary(raw))
	require.Equal(t, s.Digest(), restored.Digest())
	require.False(t, restored.Local(9).Has("stale"))

	require.Error(t, restored.UnmarshalBinary([]byte("junk")))
}
