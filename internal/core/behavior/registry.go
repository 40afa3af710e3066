package behavior

import (
	"fmt"
	"sync"

	"github.com/zeusync/substrate/pkg/sequence"
)

// Factory builds a unit from decoded blueprint parameters.
type Factory func(params map[string]any) (Unit, error)

// Registry maps behavior names to factories so blueprints can refer to units by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
}

func (r *Registry) New(name string, params map[string]any) (Unit, error) {
	r.mu.RLock()
	f := r.factories[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBehavior, name)
	}
	u, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return u, nil
}

// Names lists registered behaviors in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sequence.Keys(r.factories).Collect()
}
