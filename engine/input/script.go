package input

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-paint/common"
)

// EventKind is the type of a scripted input event.
type EventKind string

const (
	// EventMove moves the pointer.
	EventMove EventKind = "move"
	// EventPress moves the pointer and presses a mouse button.
	EventPress EventKind = "press"
	// EventRelease releases a mouse button.
	EventRelease EventKind = "release"
	// EventKey taps a key: down on its frame, up on the next applied frame.
	EventKey EventKind = "key"
)

// Event is one scripted input event, applied at the start of its frame.
type Event struct {
	Frame  uint64    `yaml:"frame" toml:"frame"`
	Kind   EventKind `yaml:"kind" toml:"kind"`
	X      float32   `yaml:"x" toml:"x"`
	Y      float32   `yaml:"y" toml:"y"`
	Button int       `yaml:"button" toml:"button"`
	Key    string    `yaml:"key" toml:"key"`
}

// Script replays recorded input into a State for headless runs.
type Script struct {
	events []Event
	codes  []uint32
	next   int
	tapped []uint32
}

// NewScript validates events and orders them by frame, keeping the given order within a frame.
//
// Parameters:
//   - events: the events to replay
//
// Returns:
//   - *Script: the script
//   - error: error if an event has an unknown kind or key
func NewScript(events []Event) (*Script, error) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		switch {
		case a.Frame < b.Frame:
			return -1
		case a.Frame > b.Frame:
			return 1
		}
		return 0
	})

	codes := make([]uint32, len(sorted))
	for i, ev := range sorted {
		switch ev.Kind {
		case EventMove, EventPress, EventRelease:
		case EventKey:
			code, ok := KeyCode(ev.Key)
			if !ok {
				return nil, fmt.Errorf("input: event %d: unknown key %q", i, ev.Key)
			}
			codes[i] = code
		default:
			return nil, fmt.Errorf("input: event %d: unknown kind %q", i, ev.Kind)
		}
	}
	return &Script{events: sorted, codes: codes}, nil
}

// Len returns the number of events.
func (sc *Script) Len() int {
	return len(sc.events)
}

// Done reports whether every event has been applied and no tapped key is still down.
func (sc *Script) Done() bool {
	return sc.next >= len(sc.events) && len(sc.tapped) == 0
}

// Apply releases keys tapped on the previous call, then applies every event due at or before frame.
//
// Parameters:
//   - frame: the frame about to run
//   - s: the state to write into
func (sc *Script) Apply(frame uint64, s *State) {
	for _, code := range sc.tapped {
		s.KeyUp(code)
	}
	sc.tapped = sc.tapped[:0]

	for sc.next < len(sc.events) && sc.events[sc.next].Frame <= frame {
		ev := sc.events[sc.next]
		switch ev.Kind {
		case EventMove:
			s.SetPointer(ev.X, ev.Y)
		case EventPress:
			s.SetPointer(ev.X, ev.Y)
			s.SetButton(ev.Button, true)
		case EventRelease:
			s.SetButton(ev.Button, false)
		case EventKey:
			s.KeyDown(sc.codes[sc.next])
			sc.tapped = append(sc.tapped, sc.codes[sc.next])
		}
		sc.next++
	}
}

// KeyCode resolves a key name: a single letter or digit, "space", "esc" or "backspace".
//
// Parameters:
//   - name: the key name, case-insensitive
//
// Returns:
//   - uint32: the key code
//   - bool: false if the name is unknown
func KeyCode(name string) (uint32, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "space":
		return common.KeySpace, true
	case "esc", "escape":
		return common.KeyEsc, true
	case "backspace":
		return common.KeyBackspace, true
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return common.KeyA + uint32(c-'a'), true
		case c >= '0' && c <= '9':
			return common.Key0 + uint32(c-'0'), true
		}
	}
	return 0, false
}
