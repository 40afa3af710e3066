package world

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/params"
	"github.com/zeusync/substrate/internal/core/props"
	"github.com/zeusync/substrate/pkg/sequence"
)

// Blueprints describes the initial contents of a world in YAML or JSON:
//
//	globals:
//	  gravity: {kind: vec2, value: [0, -9.8]}
//	objects:
//	  - name: ball
//	    count: 3
//	    props:
//	      position: {kind: vec2, value: [0, 0]}
//	    behaviors:
//	      - type: mover
//	      - type: bounds
//	        params: {rect: [0, 0, 100, 100], mode: wrap}
type Blueprints struct {
	Globals map[string]PropSpec `json:"globals,omitempty" yaml:"globals,omitempty"`
	Objects []Blueprint         `json:"objects" yaml:"objects"`
}

// Blueprint is one kind of object.
type Blueprint struct {
	Name      string              `json:"name" yaml:"name"`
	Count     int                 `json:"count,omitempty" yaml:"count,omitempty"`
	Props     map[string]PropSpec `json:"props,omitempty" yaml:"props,omitempty"`
	Behaviors []BehaviorSpec      `json:"behaviors,omitempty" yaml:"behaviors,omitempty"`
}

type PropSpec struct {
	Kind  string `json:"kind" yaml:"kind"`
	Value any    `json:"value" yaml:"value"`
}

type BehaviorSpec struct {
	Type   string         `json:"type" yaml:"type"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// LoadBlueprintsJSON loads blueprints from a JSON reader.
func LoadBlueprintsJSON(r io.Reader) (*Blueprints, error) {
	var b Blueprints
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBlueprint, err)
	}
	return &b, nil
}

// LoadBlueprintsYAML loads blueprints from a YAML reader.
func LoadBlueprintsYAML(r io.Reader) (*Blueprints, error) {
	var b Blueprints
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBlueprint, err)
	}
	return &b, nil
}

func (p PropSpec) Data() (params.Data, error) {
	return params.Parse(p.Kind, p.Value)
}

// SpawnAll sets the globals and spawns every blueprint in order. It stops at
// the first failing blueprint and returns the objects spawned so far.
func (b *Blueprints) SpawnAll(w *World, reg *behavior.Registry) ([]identity.ID, error) {
	if err := applyProps(w.Global(), b.Globals); err != nil {
		return nil, fmt.Errorf("globals: %w", err)
	}
	var ids []identity.ID
	for _, bp := range b.Objects {
		spawned, err := bp.Spawn(w, reg)
		if err != nil {
			return ids, err
		}
		ids = append(ids, spawned...)
	}
	return ids, nil
}

// Spawn creates Count objects (at least one) from the blueprint. Every
// object gets its own units. On error the objects created by this call are
// destroyed again.
func (bp Blueprint) Spawn(w *World, reg *behavior.Registry) ([]identity.ID, error) {
	n := bp.Count
	if n <= 0 {
		n = 1
	}
	ids := make([]identity.ID, 0, n)
	for i := 0; i < n; i++ {
		id, err := bp.spawnOne(w, reg)
		if err != nil {
			for _, done := range ids {
				_ = w.DestroyObject(done)
			}
			return nil, fmt.Errorf("blueprint %q: %w", bp.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (bp Blueprint) spawnOne(w *World, reg *behavior.Registry) (identity.ID, error) {
	id := w.CreateNamed(bp.Name)
	fail := func(err error) (identity.ID, error) {
		_ = w.DestroyObject(id)
		return identity.None, err
	}

	if err := applyProps(w.Local(id), bp.Props); err != nil {
		return fail(err)
	}
	for i, spec := range bp.Behaviors {
		if spec.Type == "" {
			return fail(fmt.Errorf("%w: behavior %d has no type", ErrBadBlueprint, i))
		}
		u, err := reg.New(spec.Type, spec.Params)
		if err != nil {
			return fail(err)
		}
		if _, err := w.Attach(id, u); err != nil {
			return fail(err)
		}
	}
	return id, nil
}

func applyProps(scope *props.Scoped, specs map[string]PropSpec) error {
	for _, name := range sequence.Keys(specs).Collect() {
		d, err := specs[name].Data()
		if err != nil {
			return fmt.Errorf("%w: property %q: %w", ErrBadBlueprint, name, err)
		}
		scope.Set(name, d)
	}
	return nil
}
