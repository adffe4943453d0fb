package mapping

import (
	"fmt"

	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/output"
)

// Action is what a mapping table binds an input to: either an output action
// forwarded to the device (Output) or an action on the mapper itself
// (RepeatLastChord, SwitchConfig).
type Action interface {
	fmt.Stringer
	isMappingAction()
}

// Output forwards an output action verbatim.
type Output struct {
	Action output.Action
}

// RepeatLastChord replays the action of the last resolved chord, converted
// to the given kind.
type RepeatLastChord struct {
	As output.Kind
}

// SwitchConfig activates another configuration of the loaded graph.
type SwitchConfig struct {
	Path string
}

func (Output) isMappingAction()          {}
func (RepeatLastChord) isMappingAction() {}
func (SwitchConfig) isMappingAction()    {}

func (o Output) String() string          { return o.Action.String() }
func (r RepeatLastChord) String() string { return "repeat " + r.As.String() }
func (s SwitchConfig) String() string    { return "switch " + s.Path }

// Out wraps an output action.
func Out(a output.Action) Action { return Output{Action: a} }

// PulseKeys is shorthand for tapping keys.
func PulseKeys(keys ...input.KeyCode) Action { return Out(output.Pulse{Keys: keys}) }

// ToggleKeys is shorthand for latching keys.
func ToggleKeys(keys ...input.KeyCode) Action { return Out(output.Toggle{Keys: keys}) }
