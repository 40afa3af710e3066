package props

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/params"
	"github.com/zeusync/substrate/pkg/sequence"
)

// Scope selects the global map or one owner's local map.
type Scope uint8

const (
	Global Scope = iota
	Local
)

func (s Scope) String() string {
	if s == Local {
		return "local"
	}
	return "global"
}

type values map[string]params.Data

// Store holds the global properties and the local properties of every owner.
// It is passive and unsynchronized: one tick owns it at a time.
type Store struct {
	global values
	locals map[identity.ID]values
}

func NewStore() *Store {
	return &Store{
		global: make(values),
		locals: make(map[identity.ID]values),
	}
}

// Global returns the view over global properties.
func (s *Store) Global() *Scoped {
	return &Scoped{store: s, scope: Global}
}

// Local returns the view over owner's properties.
func (s *Store) Local(owner identity.ID) *Scoped {
	return &Scoped{store: s, scope: Local, owner: owner}
}

// ClearLocal drops every property of owner.
func (s *Store) ClearLocal(owner identity.ID) {
	delete(s.locals, owner)
}

func (s *Store) ClearGlobal() {
	s.global = make(values)
}

// Owners lists owners holding at least one local property, ascending.
func (s *Store) Owners() []identity.ID {
	return sequence.Keys(s.locals).Collect()
}

// Len counts every property in every scope.
func (s *Store) Len() int {
	n := len(s.global)
	for _, m := range s.locals {
		n += len(m)
	}
	return n
}

// Digest hashes the canonical contents of the store. Equal contents give equal
// digests regardless of insertion order.
func (s *Store) Digest() uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 64)
	write := func(tag byte, owner identity.ID, m values) {
		sequence.Keys(m).Each(func(name string) {
			buf = append(buf[:0], tag, byte(owner>>24), byte(owner>>16), byte(owner>>8), byte(owner))
			buf = append(buf, name...)
			buf = append(buf, 0)
			buf, _ = m[name].AppendBinary(buf)
			_, _ = h.Write(buf)
		})
	}
	write('g', 0, s.global)
	for _, owner := range s.Owners() {
		write('l', owner, s.locals[owner])
	}
	return h.Sum64()
}

type snapshot struct {
	Global map[string]params.Data
	Locals map[identity.ID]map[string]params.Data
}

// MarshalBinary encodes the whole store with gob.
func (s *Store) MarshalBinary() ([]byte, error) {
	snap := snapshot{Global: s.global, Locals: make(map[identity.ID]map[string]params.Data, len(s.locals))}
	for owner, m := range s.locals {
		snap.Locals[owner] = m
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("props: encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the store contents with a snapshot.
func (s *Store) UnmarshalBinary(data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("props: decode snapshot: %w", err)
	}
	s.global = make(values, len(snap.Global))
	for k, v := range snap.Global {
		s.global[k] = v
	}
	s.locals = make(map[identity.ID]values, len(snap.Locals))
	for owner, m := range snap.Locals {
		if len(m) > 0 {
			s.locals[owner] = values(m)
		}
	}
	return nil
}
