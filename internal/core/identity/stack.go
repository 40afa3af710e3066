package identity

import "fmt"

// ID identifies a body, timer or behavior unit within one domain.
// Zero is never issued.
type ID uint32

// None is the zero ID, used where an id is optional.
const None ID = 0

const (
	DomainBodies    = "bodies"
	DomainTimers    = "timers"
	DomainBehaviors = "behaviors"
)

type slot struct {
	live bool
	gen  uint32
}

// Stack hands out unique ids. Released ids are reused most-recent-first before
// the high-water mark grows. Take and Give are O(1).
type Stack struct {
	slots []slot // index = id - 1
	free  []ID
	live  int
}

func NewStack() *Stack {
	return &Stack{}
}

// Take returns a free id, preferring the most recently released one.
func (s *Stack) Take() ID {
	var id ID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.slots = append(s.slots, slot{})
		id = ID(len(s.slots))
	}
	s.slots[id-1].live = true
	s.live++
	return id
}

// Give returns id to the pool and bumps its generation.
func (s *Stack) Give(id ID) error {
	if id == None || int(id) > len(s.slots) {
		return fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	sl := &s.slots[id-1]
	if !sl.live {
		return fmt.Errorf("%w: %d", ErrDoubleRelease, id)
	}
	sl.live = false
	sl.gen++
	s.free = append(s.free, id)
	s.live--
	return nil
}

// Live reports whether id is currently issued.
func (s *Stack) Live(id ID) bool {
	return id != None && int(id) <= len(s.slots) && s.slots[id-1].live
}

// Generation is the number of times id has been released.
func (s *Stack) Generation(id ID) uint32 {
	if id == None || int(id) > len(s.slots) {
		return 0
	}
	return s.slots[id-1].gen
}

func (s *Stack) Stats() DomainStats {
	return DomainStats{Live: s.live, Free: len(s.free), HighWater: len(s.slots)}
}

// DomainStats describes one id domain.
type DomainStats struct {
	Live      int
	Free      int
	HighWater int
}
