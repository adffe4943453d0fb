// Package mapfile reads and writes mapping files in JSON, YAML or TOML.
//
// A mapping file names inputs the way evdev does ("BTN_SOUTH", "KEY_A") and
// thresholded axes with a direction suffix ("ABS_RY-"). Each action is an
// object with exactly one of pulse, state, toggle, repeat or switch set:
//
//	chords:
//	  - inputs: [BTN_DPAD_RIGHT, ABS_RY-]
//	    action: {pulse: {keys: [KEY_1]}}
//	  - inputs: [BTN_Z, BTN_EAST, BTN_SOUTH, BTN_NORTH, BTN_WEST]
//	    action: {switch: joycon-blank.yaml}
package mapfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/mapping"
	"github.com/Alia5/padmapper/output"
)

// File is the on-disk shape of a mapping.Configuration. TOML is encoded in
// field order, so plain values must come before any table or table array.
type File struct {
	Device      string      `json:"device" yaml:"device" toml:"device"`
	ChordInputs []string    `json:"chord_inputs,omitempty" yaml:"chord_inputs,omitempty" toml:"chord_inputs,omitempty"`
	Thresholds  []Threshold `json:"thresholds,omitempty" yaml:"thresholds,omitempty" toml:"thresholds,omitempty"`
	Chords      []Chord     `json:"chords,omitempty" yaml:"chords,omitempty" toml:"chords,omitempty"`
	Modifiers   []Modifier  `json:"modifiers,omitempty" yaml:"modifiers,omitempty" toml:"modifiers,omitempty"`
	Mouse       []Mouse     `json:"mouse,omitempty" yaml:"mouse,omitempty" toml:"mouse,omitempty"`
}

// Threshold is a boundary for a thresholded axis, e.g. {axis: ABS_X-, value: -6000}.
type Threshold struct {
	Axis  string `json:"axis" yaml:"axis" toml:"axis"`
	Value int32  `json:"value" yaml:"value" toml:"value"`
}

type Chord struct {
	Inputs []string `json:"inputs" yaml:"inputs" toml:"inputs"`
	Action Action   `json:"action" yaml:"action" toml:"action"`
}

type Modifier struct {
	Input  string `json:"input" yaml:"input" toml:"input"`
	Action Action `json:"action" yaml:"action" toml:"action"`
}

// Mouse binds a thresholded axis to a relative axis velocity curve.
type Mouse struct {
	Input  string  `json:"input" yaml:"input" toml:"input"`
	Axis   string  `json:"axis" yaml:"axis" toml:"axis"`
	Slope  float64 `json:"slope" yaml:"slope" toml:"slope"`
	Offset float64 `json:"offset,omitempty" yaml:"offset,omitempty" toml:"offset,omitempty"`
}

// Action holds exactly one of its fields.
type Action struct {
	Repeat string  `json:"repeat,omitempty" yaml:"repeat,omitempty" toml:"repeat,omitempty"`
	Switch string  `json:"switch,omitempty" yaml:"switch,omitempty" toml:"switch,omitempty"`
	Pulse  *Output `json:"pulse,omitempty" yaml:"pulse,omitempty" toml:"pulse,omitempty"`
	State  *Output `json:"state,omitempty" yaml:"state,omitempty" toml:"state,omitempty"`
	Toggle *Output `json:"toggle,omitempty" yaml:"toggle,omitempty" toml:"toggle,omitempty"`
}

// Output is the body of a pulse, state or toggle action. Press only applies
// to state actions and defaults to "down".
type Output struct {
	Keys  []string `json:"keys,omitempty" yaml:"keys,omitempty" toml:"keys,omitempty"`
	Press string   `json:"press,omitempty" yaml:"press,omitempty" toml:"press,omitempty"`
	Axes  []Axis   `json:"axes,omitempty" yaml:"axes,omitempty" toml:"axes,omitempty"`
}

type Axis struct {
	Axis  string `json:"axis" yaml:"axis" toml:"axis"`
	Value int32  `json:"value" yaml:"value" toml:"value"`
}

var errActionShape = errors.New("action must set exactly one of pulse, state, toggle, repeat or switch")

// Configuration converts the file into its runtime form.
func (f *File) Configuration() (*mapping.Configuration, error) {
	if f.Device == "" {
		return nil, errors.New("device: must not be empty")
	}
	cfg := &mapping.Configuration{DeviceName: f.Device}

	for i, t := range f.Thresholds {
		ta, err := mapping.ParseThresholdedAxis(t.Axis)
		if err != nil {
			return nil, fmt.Errorf("thresholds[%d]: %w", i, err)
		}
		cfg.Thresholds = append(cfg.Thresholds, mapping.AxisThresholdEntry{
			Axis:      ta.Axis,
			Threshold: mapping.AxisThreshold{Dir: ta.Dir, Value: t.Value},
		})
	}

	ins, err := parseInputs(f.ChordInputs)
	if err != nil {
		return nil, fmt.Errorf("chord_inputs: %w", err)
	}
	cfg.ChordInputs = ins

	for i, c := range f.Chords {
		if len(c.Inputs) == 0 {
			return nil, fmt.Errorf("chords[%d]: no inputs", i)
		}
		ins, err := parseInputs(c.Inputs)
		if err != nil {
			return nil, fmt.Errorf("chords[%d].inputs: %w", i, err)
		}
		a, err := c.Action.action()
		if err != nil {
			return nil, fmt.Errorf("chords[%d].action: %w", i, err)
		}
		cfg.Chords = append(cfg.Chords, mapping.ChordEntry{Inputs: ins, Action: a})
	}

	for i, m := range f.Modifiers {
		in, err := mapping.ParseInput(m.Input)
		if err != nil {
			return nil, fmt.Errorf("modifiers[%d].input: %w", i, err)
		}
		a, err := m.Action.action()
		if err != nil {
			return nil, fmt.Errorf("modifiers[%d].action: %w", i, err)
		}
		cfg.Modifiers = append(cfg.Modifiers, mapping.ModifierEntry{Input: in, Action: a})
	}

	for i, m := range f.Mouse {
		ta, err := mapping.ParseThresholdedAxis(m.Input)
		if err != nil {
			return nil, fmt.Errorf("mouse[%d].input: %w", i, err)
		}
		rel, err := input.ParseRelAxis(m.Axis)
		if err != nil {
			return nil, fmt.Errorf("mouse[%d].axis: %w", i, err)
		}
		cfg.Mouse = append(cfg.Mouse, mapping.MouseEntry{
			Input:   ta,
			Profile: mapping.MouseProfile{Axis: rel, Slope: m.Slope, Offset: m.Offset},
		})
	}
	return cfg, nil
}

func parseInputs(names []string) ([]mapping.Input, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]mapping.Input, len(names))
	for i, n := range names {
		in, err := mapping.ParseInput(n)
		if err != nil {
			return nil, err
		}
		out[i] = in
	}
	return out, nil
}

func (a Action) action() (mapping.Action, error) {
	set := 0
	for _, ok := range []bool{a.Pulse != nil, a.State != nil, a.Toggle != nil, a.Repeat != "", a.Switch != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, errActionShape
	}

	switch {
	case a.Repeat != "":
		k, err := output.ParseKind(a.Repeat)
		if err != nil {
			return nil, err
		}
		return mapping.RepeatLastChord{As: k}, nil
	case a.Switch != "":
		return mapping.SwitchConfig{Path: a.Switch}, nil
	}

	var body *Output
	switch {
	case a.Pulse != nil:
		body = a.Pulse
	case a.State != nil:
		body = a.State
	default:
		body = a.Toggle
	}
	keys, err := parseKeys(body.Keys)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	axes, err := parseAxes(body.Axes)
	if err != nil {
		return nil, fmt.Errorf("axes: %w", err)
	}
	if body.Press != "" && a.State == nil {
		return nil, errors.New("press only applies to state actions")
	}

	switch {
	case a.Pulse != nil:
		return mapping.Out(output.Pulse{Keys: keys, Axes: axes}), nil
	case a.Toggle != nil:
		return mapping.Out(output.Toggle{Keys: keys, Axes: axes}), nil
	}
	sc := output.StateChange{Axes: axes}
	if keys != nil {
		state, err := parsePress(body.Press)
		if err != nil {
			return nil, err
		}
		sc.Keys = &output.KeyStateChange{Keys: keys, State: state}
	}
	return mapping.Out(sc), nil
}

func parseKeys(names []string) ([]input.KeyCode, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]input.KeyCode, len(names))
	for i, n := range names {
		k, err := input.ParseKeyCode(n)
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	return out, nil
}

func parseAxes(axes []Axis) (output.AxisList, error) {
	if len(axes) == 0 {
		return nil, nil
	}
	out := make(output.AxisList, len(axes))
	for i, a := range axes {
		r, err := input.ParseRelAxis(a.Axis)
		if err != nil {
			return nil, err
		}
		out[i] = output.AxisValue{Axis: r, Value: a.Value}
	}
	return out, nil
}

func parsePress(s string) (input.PressState, error) {
	switch strings.ToLower(s) {
	case "", "down", "press":
		return input.Down, nil
	case "up", "release":
		return input.Up, nil
	}
	return 0, fmt.Errorf("unknown press state %q", s)
}

// FromConfiguration converts a runtime configuration into its file form.
func FromConfiguration(cfg *mapping.Configuration) *File {
	f := &File{Device: cfg.DeviceName}
	for _, t := range cfg.Thresholds {
		f.Thresholds = append(f.Thresholds, Threshold{
			Axis:  mapping.ThresholdedAxis{Axis: t.Axis, Dir: t.Threshold.Dir}.String(),
			Value: t.Threshold.Value,
		})
	}
	f.ChordInputs = inputNames(cfg.ChordInputs)
	for _, c := range cfg.Chords {
		f.Chords = append(f.Chords, Chord{Inputs: inputNames(c.Inputs), Action: fromAction(c.Action)})
	}
	for _, m := range cfg.Modifiers {
		f.Modifiers = append(f.Modifiers, Modifier{Input: m.Input.String(), Action: fromAction(m.Action)})
	}
	for _, m := range cfg.Mouse {
		f.Mouse = append(f.Mouse, Mouse{
			Input:  m.Input.String(),
			Axis:   m.Profile.Axis.String(),
			Slope:  m.Profile.Slope,
			Offset: m.Profile.Offset,
		})
	}
	return f
}

func inputNames(ins []mapping.Input) []string {
	if len(ins) == 0 {
		return nil
	}
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = in.String()
	}
	return out
}

func fromAction(a mapping.Action) Action {
	switch v := a.(type) {
	case mapping.RepeatLastChord:
		return Action{Repeat: v.As.String()}
	case mapping.SwitchConfig:
		return Action{Switch: v.Path}
	case mapping.Output:
		switch o := v.Action.(type) {
		case output.Pulse:
			return Action{Pulse: &Output{Keys: keyNames(o.Keys), Axes: axisValues(o.Axes)}}
		case output.Toggle:
			return Action{Toggle: &Output{Keys: keyNames(o.Keys), Axes: axisValues(o.Axes)}}
		case output.StateChange:
			body := &Output{Axes: axisValues(o.Axes)}
			if o.Keys != nil {
				body.Keys = keyNames(o.Keys.Keys)
				if o.Keys.State == input.Up {
					body.Press = "up"
				}
			}
			return Action{State: body}
		}
	}
	return Action{}
}

func keyNames(keys []input.KeyCode) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func axisValues(l output.AxisList) []Axis {
	if len(l) == 0 {
		return nil
	}
	out := make([]Axis, len(l))
	for i, a := range l {
		out[i] = Axis{Axis: a.Axis.String(), Value: a.Value}
	}
	return out
}
