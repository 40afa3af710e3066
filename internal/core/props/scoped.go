package props

import (
	"fmt"

	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/params"
	"github.com/zeusync/substrate/internal/core/systems/physics"
	"github.com/zeusync/substrate/pkg/sequence"
)

// Reader is the read-only part of Scoped.
type Reader interface {
	Scope() Scope
	Owner() identity.ID
	Get(name string) (params.Data, error)
	GetOrDefault(name string, def params.Data) params.Data
	Has(name string) bool
	Keys() []string
	Len() int

	GetBool(name string) (bool, error)
	GetInt(name string) (int64, error)
	GetFloat(name string) (float64, error)
	GetVec2(name string) (physics.Vec2, error)
	GetVec3(name string) (physics.Vec3, error)
	GetColor(name string) (params.Color, error)
	GetString(name string) (string, error)
	GetTexture(name string) (params.TextureHandle, error)
}

var _ Reader = (*Scoped)(nil)

// Scoped is a view over one scope of a Store. Views are cheap and hold no data.
type Scoped struct {
	store *Store
	scope Scope
	owner identity.ID
}

func (s *Scoped) Scope() Scope       { return s.scope }
func (s *Scoped) Owner() identity.ID { return s.owner }

func (s *Scoped) read() values {
	if s.scope == Global {
		return s.store.global
	}
	return s.store.locals[s.owner]
}

func (s *Scoped) write() values {
	if s.scope == Global {
		return s.store.global
	}
	m, ok := s.store.locals[s.owner]
	if !ok {
		m = make(values)
		s.store.locals[s.owner] = m
	}
	return m
}

// Set inserts or overwrites name. The new value may have a different kind.
func (s *Scoped) Set(name string, v params.Data) {
	s.write()[name] = v
}

func (s *Scoped) Get(name string) (params.Data, error) {
	v, ok := s.read()[name]
	if !ok {
		return params.Data{}, s.notFound(name)
	}
	return v, nil
}

func (s *Scoped) GetOrDefault(name string, def params.Data) params.Data {
	if v, ok := s.read()[name]; ok {
		return v
	}
	return def
}

func (s *Scoped) Has(name string) bool {
	_, ok := s.read()[name]
	return ok
}

// Remove deletes name. Removing an absent name does nothing.
func (s *Scoped) Remove(name string) {
	m := s.read()
	if m == nil {
		return
	}
	delete(m, name)
	if len(m) == 0 && s.scope == Local {
		delete(s.store.locals, s.owner)
	}
}

// Pull returns the value and removes it.
func (s *Scoped) Pull(name string) (params.Data, error) {
	v, err := s.Get(name)
	if err != nil {
		return v, err
	}
	s.Remove(name)
	return v, nil
}

// Keys returns the property names in ascending order.
func (s *Scoped) Keys() []string {
	return sequence.Keys(s.read()).Collect()
}

func (s *Scoped) Len() int { return len(s.read()) }

func (s *Scoped) notFound(name string) error {
	if s.scope == Global {
		return fmt.Errorf("%w: global %q", ErrNotFound, name)
	}
	return fmt.Errorf("%w: %q on owner %d", ErrNotFound, name, s.owner)
}

func typed[T any](s *Scoped, name string, as func(params.Data) (T, error)) (T, error) {
	v, err := s.Get(name)
	if err != nil {
		var zero T
		return zero, err
	}
	out, err := as(v)
	if err != nil {
		return out, fmt.Errorf("%q: %w", name, err)
	}
	return out, nil
}

func (s *Scoped) GetBool(name string) (bool, error) {
	return typed(s, name, params.Data.AsBool)
}

func (s *Scoped) GetInt(name string) (int64, error) {
	return typed(s, name, params.Data.AsInt)
}

func (s *Scoped) GetFloat(name string) (float64, error) {
	return typed(s, name, params.Data.AsFloat)
}

func (s *Scoped) GetVec2(name string) (physics.Vec2, error) {
	return typed(s, name, params.Data.AsVec2)
}

func (s *Scoped) GetVec3(name string) (physics.Vec3, error) {
	return typed(s, name, params.Data.AsVec3)
}

func (s *Scoped) GetColor(name string) (params.Color, error) {
	return typed(s, name, params.Data.AsColor)
}

func (s *Scoped) GetString(name string) (string, error) {
	return typed(s, name, params.Data.AsString)
}

func (s *Scoped) GetTexture(name string) (params.TextureHandle, error) {
	return typed(s, name, params.Data.AsTexture)
}
