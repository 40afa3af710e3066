package identity

import (
	"fmt"

	"github.com/zeusync/substrate/pkg/sequence"
)

// Handle pairs an id with the generation it was issued under. A handle kept
// past its id's release stops being valid even if the id is reissued.
type Handle struct {
	ID  ID
	Gen uint32
}

// Allocator maps domain names to independent id stacks. Domains are created on
// first Acquire. It is not safe for concurrent use.
type Allocator struct {
	domains map[string]*Stack
}

func NewAllocator() *Allocator {
	return &Allocator{domains: make(map[string]*Stack)}
}

func (a *Allocator) stack(domain string) *Stack {
	s, ok := a.domains[domain]
	if !ok {
		s = NewStack()
		a.domains[domain] = s
	}
	return s
}

func (a *Allocator) Acquire(domain string) ID {
	return a.stack(domain).Take()
}

func (a *Allocator) AcquireHandle(domain string) Handle {
	s := a.stack(domain)
	id := s.Take()
	return Handle{ID: id, Gen: s.Generation(id)}
}

func (a *Allocator) Release(domain string, id ID) error {
	s, ok := a.domains[domain]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}
	if err := s.Give(id); err != nil {
		return fmt.Errorf("%s: %w", domain, err)
	}
	return nil
}

func (a *Allocator) Live(domain string, id ID) bool {
	s, ok := a.domains[domain]
	return ok && s.Live(id)
}

// Valid reports whether h still refers to the issue it was created for.
func (a *Allocator) Valid(domain string, h Handle) bool {
	s, ok := a.domains[domain]
	return ok && s.Live(h.ID) && s.Generation(h.ID) == h.Gen
}

func (a *Allocator) Stats(domain string) (DomainStats, bool) {
	s, ok := a.domains[domain]
	if !ok {
		return DomainStats{}, false
	}
	return s.Stats(), true
}

// Domains lists known domains in ascending order.
func (a *Allocator) Domains() []string {
	return sequence.Keys(a.domains).Collect()
}
