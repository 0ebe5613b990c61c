package input

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-chess/common"
)

// EventType identifies the kind of an input Event.
type EventType int

const (
	EventKeyDown EventType = iota
	EventKeyUp
	EventCursorMove
	EventScroll
	EventResize
)

// Event is one window input event. Mouse buttons arrive as key events with codes offset by
// common.MouseButtonOffset.
type Event struct {
	Type   EventType
	Key    uint32
	X, Y   float64
	Delta  float32
	Width  int
	Height int
}

// Queue carries events from window callbacks to the render goroutine.
type Queue struct {
	events  chan Event
	dropped atomic.Int64
}

// NewQueue creates a queue holding at most size pending events.
//
// Parameters:
//   - size: channel capacity
//
// Returns:
//   - *Queue: the new queue
func NewQueue(size int) *Queue {
	return &Queue{events: make(chan Event, max(size, 1))}
}

// Push enqueues an event without blocking. Events are dropped when the queue is full.
//
// Parameters:
//   - e: the event to enqueue
//
// Returns:
//   - bool: false if the event was dropped
func (q *Queue) Push(e Event) bool {
	select {
	case q.events <- e:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

// Drain hands every pending event to fn in arrival order and returns how many were handled.
//
// Parameters:
//   - fn: the event handler
//
// Returns:
//   - int: the number of events drained
func (q *Queue) Drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case e := <-q.events:
			fn(e)
			n++
		default:
			return n
		}
	}
}

// State is the per-update view of the keyboard, mouse and cursor.
// A key is Pressed on the first update after it goes down, then Held until it is released.
type State struct {
	down    map[uint32]bool
	pressed map[uint32]bool

	width, height int
	cursorX       float32
	cursorY       float32
	scroll        float32
}

// NewState creates an input state for a surface of the given size.
//
// Parameters:
//   - width: surface width in pixels
//   - height: surface height in pixels
//
// Returns:
//   - *State: the new state
func NewState(width, height int) *State {
	return &State{
		down:    make(map[uint32]bool),
		pressed: make(map[uint32]bool),
		width:   width,
		height:  height,
	}
}

// Apply folds one event into the state.
func (s *State) Apply(e Event) {
	switch e.Type {
	case EventKeyDown:
		if !s.down[e.Key] {
			s.pressed[e.Key] = true
		}
		s.down[e.Key] = true
	case EventKeyUp:
		s.down[e.Key] = false
	case EventCursorMove:
		s.cursorX, s.cursorY = ToNDC(e.X, e.Y, s.width, s.height)
	case EventScroll:
		s.scroll += e.Delta
	case EventResize:
		if e.Width > 0 && e.Height > 0 {
			s.width, s.height = e.Width, e.Height
		}
	}
}

// EndUpdate turns pressed keys into held keys and resets the scroll accumulator.
// Call once after each fixed update has consumed the state.
func (s *State) EndUpdate() {
	clear(s.pressed)
	s.scroll = 0
}

// Pressed reports whether key went down since the previous update.
func (s *State) Pressed(key uint32) bool {
	return s.pressed[key]
}

// Held reports whether key has been down for more than one update.
func (s *State) Held(key uint32) bool {
	return s.down[key] && !s.pressed[key]
}

// Down reports whether key is currently down.
func (s *State) Down(key uint32) bool {
	return s.down[key]
}

// Cursor returns the cursor position in normalized device coordinates.
func (s *State) Cursor() (x, y float32) {
	return s.cursorX, s.cursorY
}

// Scroll returns the scroll delta accumulated since the last update.
func (s *State) Scroll() float32 {
	return s.scroll
}

// Size returns the surface size the cursor is normalized against.
func (s *State) Size() (width, height int) {
	return s.width, s.height
}

// ToNDC converts a window pixel position to normalized device coordinates, with y pointing up.
//
// Parameters:
//   - x, y: position in pixels from the top-left corner
//   - width, height: surface size in pixels
//
// Returns:
//   - float32: x in [-1, 1]
//   - float32: y in [-1, 1]
func ToNDC(x, y float64, width, height int) (float32, float32) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	nx := x*2/float64(width) - 1
	ny := -y*2/float64(height) + 1
	return common.Clamp(float32(nx), -1, 1), common.Clamp(float32(ny), -1, 1)
}
