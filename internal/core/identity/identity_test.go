package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack(t *testing.T) {
	t.Run("Sequential", func(t *testing.T) {
		s := NewStack()
		require.Equal(t, ID(1), s.Take())
		require.Equal(t, ID(2), s.Take())
		require.Equal(t, ID(3), s.Take())
		require.Equal(t, DomainStats{Live: 3, HighWater: 3}, s.Stats())
	})

	t.Run("LIFOReuse", func(t *testing.T) {
		s := NewStack()
		for range 4 {
			s.Take()
		}
		require.NoError(t, s.Give(2))
		require.NoError(t, s.Give(4))
		require.Equal(t, ID(4), s.Take())
		require.Equal(t, ID(2), s.Take())
		require.Equal(t, ID(5), s.Take())
	})

	t.Run("ReleaseErrors", func(t *testing.T) {
		s := NewStack()
		id := s.Take()
		require.ErrorIs(t, s.Give(99), ErrUnknownID)
		require.ErrorIs(t, s.Give(None), ErrUnknownID)
		require.NoError(t, s.Give(id))
		require.ErrorIs(t, s.Give(id), ErrDoubleRelease)
		require.Equal(t, DomainStats{Free: 1, HighWater: 1}, s.Stats())
	})

	t.Run("NoDuplicateLiveIDs", func(t *testing.T) {
		s := NewStack()
		live := map[ID]bool{}
		for i := range 200 {
			if i%3 == 2 {
				for id := range live {
					require.NoError(t, s.Give(id))
					delete(live, id)
					break
				}
				continue
			}
			id := s.Take()
			require.False(t, live[id], "id %d issued twice", id)
			live[id] = true
		}
		require.Equal(t, len(live), s.Stats().Live)
	})
}

func TestAllocator(t *testing.T) {
	a := NewAllocator()

	t.Run("DomainsAreIndependent", func(t *testing.T) {
		require.Equal(t, ID(1), a.Acquire(DomainBodies))
		require.Equal(t, ID(1), a.Acquire(DomainTimers))
		require.Equal(t, ID(2), a.Acquire(DomainBodies))
		require.Equal(t, []string{DomainBodies, DomainTimers}, a.Domains())
	})

	t.Run("UnknownDomain", func(t *testing.T) {
		err := a.Release("sounds", 1)
		require.ErrorIs(t, err, ErrUnknownDomain)
		_, ok := a.Stats("sounds")
		require.False(t, ok)
	})

	t.Run("ReleaseWrapsDomain", func(t *testing.T) {
		err := a.Release(DomainTimers, 42)
		require.ErrorIs(t, err, ErrUnknownID)
		assert.Contains(t, err.Error(), DomainTimers)
	})

	t.Run("HandleGeneration", func(t *testing.T) {
		h := a.AcquireHandle(DomainBehaviors)
		require.True(t, a.Valid(DomainBehaviors, h))
		require.NoError(t, a.Release(DomainBehaviors, h.ID))
		require.False(t, a.Valid(DomainBehaviors, h))

		h2 := a.AcquireHandle(DomainBehaviors)
		require.Equal(t, h.ID, h2.ID)
		require.NotEqual(t, h.Gen, h2.Gen)
		require.False(t, a.Valid(DomainBehaviors, h))
		require.True(t, a.Valid(DomainBehaviors, h2))
		require.True(t, a.Live(DomainBehaviors, h2.ID))
	})
}

func TestRegistry(t *testing.T) {
	a := NewAllocator()
	r := NewRegistry[string](a, DomainBodies)

	x := r.Add("x")
	y := r.Add("y")
	z := r.Add("z")
	require.Equal(t, []ID{x, y, z}, r.IDs())

	v, ok := r.Get(y)
	require.True(t, ok)
	require.Equal(t, "y", v)

	_, ok = r.Remove(y)
	require.True(t, ok)
	require.False(t, r.Has(y))
	require.False(t, a.Live(DomainBodies, y))
	_, ok = r.Remove(y)
	require.False(t, ok)

	require.Equal(t, y, r.Add("w"), "released id is reused first")

	t.Run("EachAscendingSkipsRemoved", func(t *testing.T) {
		var seen []string
		r.Each(func(id ID, v string) {
			seen = append(seen, v)
			if id == x {
				r.Remove(z)
			}
		})
		require.Equal(t, []string{"x", "w"}, seen)
	})

	r.Clear()
	require.Equal(t, 0, r.Len())
	st, _ := a.Stats(DomainBodies)
	require.Equal(t, 0, st.Live)
}
