package behavior

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/observability/log"
)

type entry struct {
	id       identity.ID
	unit     Unit
	caps     Capability
	detached bool
	pending  bool // attached during a run, joins next tick
}

// Attached is a unit together with its id.
type Attached struct {
	ID   identity.ID
	Unit Unit
}

// ScriptMap is the ordered list of units attached to one object. Units run in
// attachment order. Attaching or detaching while a pass is running, or while
// the map is held, takes effect at Settle.
type ScriptMap struct {
	owner   identity.ID
	alloc   *identity.Allocator
	log     log.Log
	entries []*entry

	running int
	held    bool
	dirty   bool
	onFault func(*Fault)
}

func NewScriptMap(owner identity.ID, alloc *identity.Allocator, logger log.Log) *ScriptMap {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ScriptMap{
		owner: owner,
		alloc: alloc,
		log:   logger.With(log.Uint32("owner", uint32(owner))),
	}
}

// OnFault installs a hook called for every contained fault.
func (m *ScriptMap) OnFault(fn func(*Fault)) {
	m.onFault = fn
}

func (m *ScriptMap) Owner() identity.ID { return m.owner }

// Attach appends u and returns its id from the behaviors domain.
func (m *ScriptMap) Attach(u Unit) (identity.ID, error) {
	if u == nil {
		return identity.None, fmt.Errorf("%w: nil unit", ErrNoCapabilities)
	}
	caps := CapabilitiesOf(u)
	if caps == 0 {
		return identity.None, fmt.Errorf("%w: %q", ErrNoCapabilities, u.Name())
	}

	e := &entry{
		id:      m.alloc.Acquire(identity.DomainBehaviors),
		unit:    u,
		caps:    caps,
		pending: m.deferring(),
	}
	m.entries = append(m.entries, e)
	if e.pending {
		m.dirty = true
	}

	if a, ok := u.(Attacher); ok {
		m.hook(e, "attach", func() { a.OnAttach(m.owner) })
	}
	m.log.Debug("behavior attached",
		log.Uint32("unit", uint32(e.id)),
		log.String("name", u.Name()),
		log.Stringer("caps", caps),
	)
	return e.id, nil
}

// Detach removes the unit with the given id. A unit detached during a run is
// skipped for the rest of the tick.
func (m *ScriptMap) Detach(id identity.ID) error {
	for _, e := range m.entries {
		if e.id == id && !e.detached {
			m.detach(e)
			return nil
		}
	}
	return fmt.Errorf("%w: unit %d on owner %d", ErrUnitNotFound, id, m.owner)
}

// DetachUnit removes the first attachment of u.
func (m *ScriptMap) DetachUnit(u Unit) error {
	id, ok := m.Find(u)
	if !ok {
		return fmt.Errorf("%w: %q on owner %d", ErrUnitNotFound, nameOf(u), m.owner)
	}
	return m.Detach(id)
}

// Find returns the id of the first attachment of u.
func (m *ScriptMap) Find(u Unit) (identity.ID, bool) {
	for _, e := range m.entries {
		if !e.detached && sameUnit(e.unit, u) {
			return e.id, true
		}
	}
	return identity.None, false
}

func (m *ScriptMap) detach(e *entry) {
	e.detached = true
	if d, ok := e.unit.(Detacher); ok {
		m.hook(e, "detach", func() { d.OnDetach(m.owner) })
	}
	m.log.Debug("behavior detached", log.Uint32("unit", uint32(e.id)), log.String("name", e.unit.Name()))
	if m.deferring() {
		m.dirty = true
		return
	}
	m.compact()
}

// Hold defers attaches and detaches until the next Settle, whether or not a
// pass is running. The world holds every map for the length of a tick so
// units detached from another object keep their ids until the boundary.
func (m *ScriptMap) Hold() {
	m.held = true
}

func (m *ScriptMap) deferring() bool {
	return m.running > 0 || m.held
}

// Units lists attached units in invocation order.
func (m *ScriptMap) Units() []Attached {
	out := make([]Attached, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.detached {
			out = append(out, Attached{ID: e.id, Unit: e.unit})
		}
	}
	return out
}

func (m *ScriptMap) Len() int {
	n := 0
	for _, e := range m.entries {
		if !e.detached {
			n++
		}
	}
	return n
}

// Run invokes every unit with the pass capability. Failures are contained:
// each one is logged and returned joined, and the remaining units still run.
func (m *ScriptMap) Run(pass Pass, ctx *Context) error {
	m.running++
	defer func() { m.running-- }()

	var out *OutputContext
	if pass == PassOutput {
		out = ctx.Output()
	}

	var errs []error
	for i := 0; i < len(m.entries); i++ {
		e := m.entries[i]
		if e.detached || e.pending || !e.caps.Has(pass.Capability()) {
			continue
		}
		if err := m.invoke(e, pass, ctx, out); err != nil {
			f := &Fault{Owner: m.owner, Unit: e.id, Name: e.unit.Name(), Pass: pass, Err: err}
			m.log.Error("behavior fault",
				log.Uint32("unit", uint32(e.id)),
				log.String("name", f.Name),
				log.Stringer("pass", pass),
				log.Error(err),
			)
			if m.onFault != nil {
				m.onFault(f)
			}
			errs = append(errs, f)
		}
	}
	return errors.Join(errs...)
}

func (m *ScriptMap) invoke(e *entry, pass Pass, ctx *Context, out *OutputContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	switch pass {
	case PassInput:
		return e.unit.(InputCollector).CollectInput(ctx)
	case PassProcess:
		return e.unit.(Processor).Process(ctx)
	case PassOutput:
		return e.unit.(OutputEmitter).EmitOutput(out)
	}
	return nil
}

func (m *ScriptMap) hook(e *entry, stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("behavior hook panicked",
				log.Uint32("unit", uint32(e.id)),
				log.String("name", e.unit.Name()),
				log.String("hook", stage),
				log.Any("panic", r),
			)
		}
	}()
	fn()
}

// Settle releases a hold and applies deferred attaches and detaches. The
// world calls it at the tick boundary.
func (m *ScriptMap) Settle() {
	m.held = false
	if !m.dirty || m.running > 0 {
		return
	}
	for _, e := range m.entries {
		e.pending = false
	}
	m.compact()
}

func (m *ScriptMap) compact() {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !e.detached {
			kept = append(kept, e)
			continue
		}
		if err := m.alloc.Release(identity.DomainBehaviors, e.id); err != nil {
			m.log.Error("behavior id release failed", log.Uint32("unit", uint32(e.id)), log.Error(err))
		}
	}
	clear(m.entries[len(kept):])
	m.entries = kept
	m.dirty = false
	for _, e := range m.entries {
		if e.pending {
			m.dirty = true
			break
		}
	}
}

// Destroy detaches every unit in reverse attachment order and releases their ids.
func (m *ScriptMap) Destroy() {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if e := m.entries[i]; !e.detached {
			e.detached = true
			if d, ok := e.unit.(Detacher); ok {
				m.hook(e, "detach", func() { d.OnDetach(m.owner) })
			}
		}
	}
	m.dirty = true
	if !m.deferring() {
		m.compact()
	}
}

func sameUnit(a, b Unit) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func nameOf(u Unit) string {
	if u == nil {
		return "<nil>"
	}
	return u.Name()
}
