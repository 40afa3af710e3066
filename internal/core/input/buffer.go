package input

import (
	"sync"

	"github.com/zeusync/substrate/internal/core/systems/physics"
)

type code struct {
	typ  Type
	code int
}

// Buffer is an in-memory Source. The embedder feeds it from its window or
// terminal event loop; the world reads it during the tick.
type Buffer struct {
	mu sync.RWMutex

	down     map[code]bool
	pressed  map[code]bool
	released map[code]bool

	cursor      physics.Vec2
	hasCursor   bool
	cursorMoved bool
	text        []rune
}

var (
	_ Source     = (*Buffer)(nil)
	_ FrameEnder = (*Buffer)(nil)
)

func NewBuffer() *Buffer {
	return &Buffer{
		down:     make(map[code]bool),
		pressed:  make(map[code]bool),
		released: make(map[code]bool),
	}
}

// Press records a key or button going down. Repeats while down are ignored.
func (b *Buffer) Press(t Type, c int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := code{t, c}
	if b.down[k] {
		return
	}
	b.down[k] = true
	b.pressed[k] = true
}

func (b *Buffer) Release(t Type, c int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := code{t, c}
	if !b.down[k] {
		return
	}
	delete(b.down, k)
	b.released[k] = true
}

func (b *Buffer) MoveCursor(p physics.Vec2) {
	b.mu.Lock()
	b.cursor = p
	b.hasCursor = true
	b.cursorMoved = true
	b.mu.Unlock()
}

// Type records a typed character.
func (b *Buffer) Type(r rune) {
	b.mu.Lock()
	b.text = append(b.text, r)
	b.mu.Unlock()
}

func (b *Buffer) Active(c Condition) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	switch c.Type {
	case Character:
		return c.State == Atomic && len(b.text) > 0
	case Cursor:
		return c.State == Atomic && b.cursorMoved
	}

	k := code{c.Type, c.Code}
	switch c.State {
	case Pressed:
		return b.pressed[k]
	case Released:
		return b.released[k]
	case Held:
		return b.down[k] && !b.pressed[k]
	case Atomic:
		return b.pressed[k] || b.released[k]
	default:
		return false
	}
}

func (b *Buffer) Cursor() (physics.Vec2, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor, b.hasCursor
}

// Text returns the characters typed this frame.
func (b *Buffer) Text() []rune {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]rune, len(b.text))
	copy(out, b.text)
	return out
}

// EndFrame turns this frame's presses into holds and drops the other edges.
func (b *Buffer) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.pressed)
	clear(b.released)
	b.cursorMoved = false
	b.text = b.text[:0]
}
