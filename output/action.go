package output

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Alia5/padmapper/input"
)

// Action is a request to the output device. The set of implementations is
// closed: StateChange, Pulse and Toggle.
type Action interface {
	fmt.Stringer
	Kind() Kind
	isAction()
}

// Kind names one of the three output action shapes.
type Kind uint8

const (
	KindStateChange Kind = iota
	KindPulse
	KindToggle
)

func (k Kind) String() string {
	switch k {
	case KindPulse:
		return "pulse"
	case KindToggle:
		return "toggle"
	default:
		return "state"
	}
}

// ParseKind accepts "state", "pulse" or "toggle".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "state", "statechange", "state_change":
		return KindStateChange, nil
	case "pulse":
		return KindPulse, nil
	case "toggle":
		return KindToggle, nil
	}
	return 0, fmt.Errorf("unknown action kind %q", s)
}

// AxisValue is a relative axis paired with a velocity or motion value.
type AxisValue struct {
	Axis  input.RelAxis
	Value int32
}

// AxisList is an ordered list of relative axis values.
type AxisList []AxisValue

// Zeroed returns a copy with every value set to 0.
func (l AxisList) Zeroed() AxisList {
	if l == nil {
		return nil
	}
	out := make(AxisList, len(l))
	for i, a := range l {
		out[i] = AxisValue{Axis: a.Axis}
	}
	return out
}

func (l AxisList) String() string {
	parts := make([]string, len(l))
	for i, a := range l {
		parts[i] = fmt.Sprintf("%s=%d", a.Axis, a.Value)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// KeyStateChange presses or releases a set of keys.
type KeyStateChange struct {
	Keys  []input.KeyCode
	State input.PressState
}

// StateChange sets keys to an explicit state and axes to a held velocity.
type StateChange struct {
	Keys *KeyStateChange
	Axes AxisList
}

// Pulse taps keys and applies a one-shot relative motion.
type Pulse struct {
	Keys []input.KeyCode
	Axes AxisList
}

// Toggle flips the tracked state of keys and held axis velocities.
type Toggle struct {
	Keys []input.KeyCode
	Axes AxisList
}

func (StateChange) isAction() {}
func (Pulse) isAction()       {}
func (Toggle) isAction()      {}

func (StateChange) Kind() Kind { return KindStateChange }
func (Pulse) Kind() Kind       { return KindPulse }
func (Toggle) Kind() Kind      { return KindToggle }

func (s StateChange) String() string {
	if s.Keys == nil {
		return fmt.Sprintf("state axes=%s", s.Axes)
	}
	return fmt.Sprintf("state keys=%v %s axes=%s", s.Keys.Keys, s.Keys.State, s.Axes)
}

func (p Pulse) String() string  { return fmt.Sprintf("pulse keys=%v axes=%s", p.Keys, p.Axes) }
func (t Toggle) String() string { return fmt.Sprintf("toggle keys=%v axes=%s", t.Keys, t.Axes) }

// Inverse flips the press state of the keys and zeroes the axes.
func (s StateChange) Inverse() StateChange {
	out := StateChange{Axes: s.Axes.Zeroed()}
	if s.Keys != nil {
		state := input.Down
		if s.Keys.State == input.Down {
			state = input.Up
		}
		out.Keys = &KeyStateChange{Keys: slices.Clone(s.Keys.Keys), State: state}
	}
	return out
}

// ToStateChange converts any action into a StateChange. Pulse and Toggle
// keys become a press.
func ToStateChange(a Action) StateChange {
	switch v := a.(type) {
	case StateChange:
		return v
	case Pulse:
		return StateChange{Keys: pressed(v.Keys), Axes: v.Axes}
	case Toggle:
		return StateChange{Keys: pressed(v.Keys), Axes: v.Axes}
	}
	return StateChange{}
}

// ToPulse converts any action into a Pulse, dropping any press state.
func ToPulse(a Action) Pulse {
	switch v := a.(type) {
	case Pulse:
		return v
	case StateChange:
		return Pulse{Keys: keysOf(v.Keys), Axes: v.Axes}
	case Toggle:
		return Pulse(v)
	}
	return Pulse{}
}

// ToToggle converts any action into a Toggle, dropping any press state.
func ToToggle(a Action) Toggle {
	switch v := a.(type) {
	case Toggle:
		return v
	case StateChange:
		return Toggle{Keys: keysOf(v.Keys), Axes: v.Axes}
	case Pulse:
		return Toggle(v)
	}
	return Toggle{}
}

// Convert coerces a into the requested kind.
func Convert(a Action, k Kind) Action {
	switch k {
	case KindPulse:
		return ToPulse(a)
	case KindToggle:
		return ToToggle(a)
	default:
		return ToStateChange(a)
	}
}

// HandsOff releases every known key and zeroes every known relative axis.
func HandsOff() StateChange {
	rel := input.AllRelAxes()
	axes := make(AxisList, len(rel))
	for i, r := range rel {
		axes[i] = AxisValue{Axis: r}
	}
	return StateChange{
		Keys: &KeyStateChange{Keys: input.AllKeyCodes(), State: input.Up},
		Axes: axes,
	}
}

func pressed(keys []input.KeyCode) *KeyStateChange {
	if keys == nil {
		return nil
	}
	return &KeyStateChange{Keys: keys, State: input.Down}
}

func keysOf(k *KeyStateChange) []input.KeyCode {
	if k == nil {
		return nil
	}
	return k.Keys
}
