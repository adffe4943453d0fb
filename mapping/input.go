package mapping

import (
	"strings"

	"github.com/Alia5/padmapper/input"
)

// Input is a chord or modifier input: a key or a thresholded axis. It is
// comparable and used directly as a map key and attrset item.
type Input struct {
	Key    input.KeyCode
	Axis   ThresholdedAxis
	IsAxis bool
}

// KeyInput wraps a key code.
func KeyInput(code input.KeyCode) Input { return Input{Key: code} }

// AxisInput wraps a thresholded axis.
func AxisInput(axis input.AbsAxis, dir ThresholdType) Input {
	return Input{Axis: ThresholdedAxis{Axis: axis, Dir: dir}, IsAxis: true}
}

// FromThresholded wraps an existing identity.
func FromThresholded(t ThresholdedAxis) Input { return Input{Axis: t, IsAxis: true} }

func (i Input) String() string {
	if i.IsAxis {
		return i.Axis.String()
	}
	return i.Key.String()
}

// ParseInput accepts a key name ("BTN_SOUTH", "KEY_A", 304) or a thresholded
// axis ("ABS_X+").
func ParseInput(s string) (Input, error) {
	if strings.HasPrefix(strings.ToUpper(s), "ABS_") {
		t, err := ParseThresholdedAxis(s)
		if err != nil {
			return Input{}, err
		}
		return FromThresholded(t), nil
	}
	code, err := input.ParseKeyCode(s)
	if err != nil {
		return Input{}, err
	}
	return KeyInput(code), nil
}
