package input

import (
	"fmt"
	"strings"

	"github.com/zeusync/substrate/internal/core/systems/physics"
)

// Type is the device class of an input.
type Type uint8

const (
	Button Type = iota
	Key
	Character
	Cursor
)

func (t Type) String() string {
	switch t {
	case Button:
		return "button"
	case Key:
		return "key"
	case Character:
		return "character"
	case Cursor:
		return "cursor"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ParseType accepts the names printed by Type.String.
func ParseType(s string) (Type, error) {
	for t := Button; t <= Cursor; t++ {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("input: unknown type %q", s)
}

// State is the edge or level an input condition matches.
type State uint8

const (
	Pressed State = iota
	Released
	Held
	// Atomic matches any event of the type this frame regardless of code,
	// e.g. any typed character or any cursor motion.
	Atomic
)

func (s State) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	case Held:
		return "held"
	case Atomic:
		return "atomic"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// ParseState accepts the names printed by State.String.
func ParseState(s string) (State, error) {
	for st := Pressed; st <= Atomic; st++ {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("input: unknown state %q", s)
}

// Condition selects an input by device type, code and state. Code is the
// platform's key scancode or mouse button index and is ignored for Character
// and Cursor.
type Condition struct {
	Code  int
	Type  Type
	State State
}

func (c Condition) String() string {
	return fmt.Sprintf("%s:%d:%s", c.Type, c.Code, c.State)
}

// Source is polled by behaviors during the input pass.
type Source interface {
	Active(c Condition) bool
	Cursor() (physics.Vec2, bool)
	Text() []rune
}

// FrameEnder is implemented by sources with per-frame state. The world calls
// EndFrame after every tick.
type FrameEnder interface {
	EndFrame()
}
