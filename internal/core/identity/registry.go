package identity

import (
	"github.com/zeusync/substrate/pkg/sequence"
)

// Registry stores values under ids drawn from one allocator domain.
type Registry[V any] struct {
	alloc  *Allocator
	domain string
	values map[ID]V
}

func NewRegistry[V any](alloc *Allocator, domain string) *Registry[V] {
	return &Registry[V]{alloc: alloc, domain: domain, values: make(map[ID]V)}
}

func (r *Registry[V]) Domain() string { return r.domain }

// Add stores v under a freshly acquired id.
func (r *Registry[V]) Add(v V) ID {
	id := r.alloc.Acquire(r.domain)
	r.values[id] = v
	return id
}

func (r *Registry[V]) Get(id ID) (V, bool) {
	v, ok := r.values[id]
	return v, ok
}

func (r *Registry[V]) Has(id ID) bool {
	_, ok := r.values[id]
	return ok
}

// Remove deletes the value and releases its id.
func (r *Registry[V]) Remove(id ID) (V, bool) {
	v, ok := r.values[id]
	if !ok {
		return v, false
	}
	delete(r.values, id)
	// The id came from Add, so the release cannot fail.
	_ = r.alloc.Release(r.domain, id)
	return v, true
}

// IDs returns the live ids in ascending order.
func (r *Registry[V]) IDs() []ID {
	return sequence.Keys(r.values).Collect()
}

// Each visits values in ascending id order. Entries removed during the walk
// are skipped; entries added during the walk are not visited.
func (r *Registry[V]) Each(fn func(ID, V)) {
	sequence.Keys(r.values).Each(func(id ID) {
		if v, ok := r.values[id]; ok {
			fn(id, v)
		}
	})
}

func (r *Registry[V]) Len() int { return len(r.values) }

// Clear removes every value and releases every id.
func (r *Registry[V]) Clear() {
	for _, id := range r.IDs() {
		r.Remove(id)
	}
}
