//go:build !linux

package output

import (
	"errors"

	"github.com/Alia5/padmapper/input"
)

var errNoUInput = errors.New("uinput is only available on linux")

// UInputSink is unavailable on this platform.
type UInputSink struct{}

func NewUInputSink(string) (*UInputSink, error) { return nil, errNoUInput }

func (*UInputSink) KeyDown(input.KeyCode) error        { return errNoUInput }
func (*UInputSink) KeyUp(input.KeyCode) error          { return errNoUInput }
func (*UInputSink) MoveRel(input.RelAxis, int32) error { return errNoUInput }
func (*UInputSink) Sync() error                        { return errNoUInput }
func (*UInputSink) Close() error                       { return nil }
