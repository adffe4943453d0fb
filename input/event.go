// Package input defines the normalized controller events consumed by the
// mapping engines and reads them from Linux evdev devices.
package input

import "fmt"

// PressState is the digital state carried by key events and key state changes.
type PressState uint8

const (
	Up PressState = iota
	Down
)

func (p PressState) String() string {
	if p == Down {
		return "down"
	}
	return "up"
}

// Event is one normalized input event. The set of implementations is closed:
// KeyEvent, AbsAxisEvent and RelAxisEvent.
type Event interface {
	fmt.Stringer
	isEvent()
}

// KeyEvent is a digital button transition.
type KeyEvent struct {
	Code  KeyCode
	State PressState
}

// AbsAxisEvent is an absolute axis sample.
type AbsAxisEvent struct {
	Axis  AbsAxis
	Value int32
}

// RelAxisEvent is a relative axis motion.
type RelAxisEvent struct {
	Axis  RelAxis
	Value int32
}

func (KeyEvent) isEvent()     {}
func (AbsAxisEvent) isEvent() {}
func (RelAxisEvent) isEvent() {}

func (e KeyEvent) String() string     { return fmt.Sprintf("%s %s", e.Code, e.State) }
func (e AbsAxisEvent) String() string { return fmt.Sprintf("%s %d", e.Axis, e.Value) }
func (e RelAxisEvent) String() string { return fmt.Sprintf("%s %d", e.Axis, e.Value) }
