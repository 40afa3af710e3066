package timers

import (
	"fmt"
	"time"

	"github.com/zeusync/substrate/internal/core/identity"
	"github.com/zeusync/substrate/internal/core/observability/log"
	"github.com/zeusync/substrate/pkg/sequence"
)

// Infinite makes a timer repeat until cancelled.
const Infinite = -1

type Callback func()

// Fired describes one timer firing.
type Fired struct {
	ID    identity.ID
	Name  string
	Owner identity.ID
	Count int // firings so far, including this one
}

type timer struct {
	id        identity.ID
	name      string
	owner     identity.ID
	interval  time.Duration
	remaining time.Duration
	repeats   int // firings left, or Infinite
	count     int
	cb        Callback
	armed     bool
}

type Option func(*timer)

// WithName sets the name used in logs and events.
func WithName(name string) Option {
	return func(t *timer) { t.name = name }
}

// WithOwner binds the timer to an object so it can be cancelled with CancelOwned.
func WithOwner(owner identity.ID) Option {
	return func(t *timer) { t.owner = owner }
}

type Stats struct {
	Active int
	Fired  uint64
	Panics uint64
}

// Scheduler runs one-shot and repeating callbacks against the world clock.
// Not safe for concurrent use.
type Scheduler struct {
	alloc  *identity.Allocator
	log    log.Log
	timers map[identity.ID]*timer

	advancing bool
	release   []identity.ID

	onFire func(Fired)
	fired  uint64
	panics uint64
}

func New(alloc *identity.Allocator, logger log.Log) *Scheduler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Scheduler{
		alloc:  alloc,
		log:    logger.With(log.String("component", "timers")),
		timers: make(map[identity.ID]*timer),
	}
}

// OnFire installs a hook called after every firing.
func (s *Scheduler) OnFire(fn func(Fired)) {
	s.onFire = fn
}

// Schedule arms a timer firing every interval, repeats times in total (or
// Infinite). A timer scheduled from inside a callback starts counting on the
// next Advance.
func (s *Scheduler) Schedule(interval time.Duration, repeats int, cb Callback, opts ...Option) (identity.ID, error) {
	switch {
	case interval <= 0:
		return identity.None, fmt.Errorf("%w: interval %s must be positive", ErrInvalidSchedule, interval)
	case repeats == 0 || repeats < Infinite:
		return identity.None, fmt.Errorf("%w: repeats %d", ErrInvalidSchedule, repeats)
	case cb == nil:
		return identity.None, fmt.Errorf("%w: nil callback", ErrInvalidSchedule)
	}

	t := &timer{
		interval:  interval,
		remaining: interval,
		repeats:   repeats,
		cb:        cb,
		armed:     true,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.id = s.alloc.Acquire(identity.DomainTimers)
	s.timers[t.id] = t

	s.log.Debug("timer scheduled",
		log.Uint32("timer", uint32(t.id)),
		log.String("name", t.name),
		log.Duration("interval", interval),
		log.Int("repeats", repeats),
	)
	return t.id, nil
}

// Advance moves every armed timer forward by delta in ascending id order and
// returns the number of firings. A timer fires at most once per Advance.
// Overshoot carries into the next interval, so a timer that fell behind
// catches up over the following calls.
func (s *Scheduler) Advance(delta time.Duration) int {
	s.advancing = true
	fired := 0

	sequence.Keys(s.timers).Each(func(id identity.ID) {
		t := s.timers[id]
		if !t.armed {
			return
		}
		t.remaining -= delta
		if t.remaining > 0 {
			return
		}
		s.fire(t)
		fired++
		if !t.armed {
			// cancelled by its own callback
			return
		}
		if t.repeats != Infinite {
			t.repeats--
		}
		if t.repeats == 0 {
			t.armed = false
			s.release = append(s.release, t.id)
			s.log.Debug("timer finished", log.Uint32("timer", uint32(t.id)), log.String("name", t.name))
			return
		}
		t.remaining += t.interval
	})

	s.advancing = false
	s.flush()
	return fired
}

func (s *Scheduler) fire(t *timer) {
	t.count++
	s.fired++
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.panics++
				s.log.Warn("timer callback panicked",
					log.Uint32("timer", uint32(t.id)),
					log.String("name", t.name),
					log.Any("panic", r),
				)
			}
		}()
		t.cb()
	}()
	if s.onFire != nil {
		s.onFire(Fired{ID: t.id, Name: t.name, Owner: t.owner, Count: t.count})
	}
}

func (s *Scheduler) flush() {
	for _, id := range s.release {
		s.drop(id)
	}
	s.release = s.release[:0]
}

func (s *Scheduler) drop(id identity.ID) {
	delete(s.timers, id)
	if err := s.alloc.Release(identity.DomainTimers, id); err != nil {
		s.log.Error("timer id release failed", log.Uint32("timer", uint32(id)), log.Error(err))
	}
}

// Cancel disarms a timer. Its callback is never invoked again. Returns false
// for unknown or already inactive timers.
func (s *Scheduler) Cancel(id identity.ID) bool {
	t, ok := s.timers[id]
	if !ok || !t.armed {
		return false
	}
	t.armed = false
	if s.advancing {
		s.release = append(s.release, id)
	} else {
		s.drop(id)
	}
	s.log.Debug("timer cancelled", log.Uint32("timer", uint32(id)), log.String("name", t.name))
	return true
}

// CancelOwned cancels every active timer bound to owner.
func (s *Scheduler) CancelOwned(owner identity.ID) int {
	if owner == identity.None {
		return 0
	}
	n := 0
	for _, id := range sequence.Keys(s.timers).Collect() {
		if t := s.timers[id]; t.owner == owner && s.Cancel(id) {
			n++
		}
	}
	return n
}

func (s *Scheduler) Active(id identity.ID) bool {
	t, ok := s.timers[id]
	return ok && t.armed
}

// Remaining is the time until the next firing of an active timer.
func (s *Scheduler) Remaining(id identity.ID) (time.Duration, bool) {
	t, ok := s.timers[id]
	if !ok || !t.armed {
		return 0, false
	}
	return t.remaining, true
}

// Len counts active timers.
func (s *Scheduler) Len() int {
	return sequence.FromMap(s.timers).Filter(func(t *timer) bool { return t.armed }).Count()
}

func (s *Scheduler) Stats() Stats {
	return Stats{Active: s.Len(), Fired: s.fired, Panics: s.panics}
}
