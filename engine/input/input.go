// Package input holds the pointer and keyboard state the behaviours poll each frame.
// Window callbacks and scripted events both write into a State; behaviours only read it.
package input

import (
	"sync"
)

// Source is the read side of the input state.
type Source interface {
	// Pointer returns the pointer position in window pixels, origin top-left.
	//
	// Returns:
	//   - float32, float32: the x and y position
	Pointer() (float32, float32)

	// ButtonHeld reports whether a mouse button is currently down.
	//
	// Parameters:
	//   - button: a common.MouseButton* code
	//
	// Returns:
	//   - bool: true while held
	ButtonHeld(button int) bool

	// KeyHeld reports whether a key is currently down.
	//
	// Parameters:
	//   - key: a common.Key* code
	//
	// Returns:
	//   - bool: true while held
	KeyHeld(key uint32) bool

	// KeyPressed reports whether a key went down during the current frame.
	//
	// Parameters:
	//   - key: a common.Key* code
	//
	// Returns:
	//   - bool: true only in the frame of the press
	KeyPressed(key uint32) bool
}

// State is the frame input state. Writers may run on the window callback thread.
type State struct {
	mu      sync.RWMutex
	x, y    float32
	buttons map[int]bool
	held    map[uint32]bool
	pressed map[uint32]bool
	pending map[uint32]bool
}

var _ Source = &State{}

// NewState creates an empty input state.
func NewState() *State {
	return &State{
		buttons: map[int]bool{},
		held:    map[uint32]bool{},
		pressed: map[uint32]bool{},
		pending: map[uint32]bool{},
	}
}

// SetPointer records the pointer position.
func (s *State) SetPointer(x, y float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
}

// SetButton records a mouse button transition.
func (s *State) SetButton(button int, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buttons[button] = down
}

// KeyDown records a key press. Auto-repeat presses of a held key are not new presses.
func (s *State) KeyDown(key uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held[key] {
		s.pending[key] = true
	}
	s.held[key] = true
}

// KeyUp records a key release.
func (s *State) KeyUp(key uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[key] = false
}

// BeginFrame publishes the presses recorded since the previous frame so KeyPressed reports them
// for exactly one frame.
func (s *State) BeginFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressed, s.pending = s.pending, s.pressed
	clear(s.pending)
}

func (s *State) Pointer() (float32, float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.x, s.y
}

func (s *State) ButtonHeld(button int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buttons[button]
}

func (s *State) KeyHeld(key uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.held[key]
}

func (s *State) KeyPressed(key uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pressed[key]
}
