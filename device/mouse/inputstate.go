// Package mouse models the HID mouse report streamed to a virtual mouse device.
package mouse

import (
	"io"
	"math"

	"github.com/Alia5/padmapper/input"
)

// Button bits of byte 0 of the report.
const (
	BtnLeft    = 0x01
	BtnRight   = 0x02
	BtnMiddle  = 0x04
	BtnBack    = 0x08
	BtnForward = 0x10
)

var buttonBits = map[input.KeyCode]uint8{
	input.BtnLeft:    BtnLeft,
	input.BtnRight:   BtnRight,
	input.BtnMiddle:  BtnMiddle,
	input.BtnSide:    BtnBack,
	input.BtnBack:    BtnBack,
	input.BtnExtra:   BtnForward,
	input.BtnForward: BtnForward,
}

// InputState is one mouse report: held buttons plus relative motion since
// the previous report.
type InputState struct {
	Buttons uint8
	DX, DY  int16
	Wheel   int16
	Pan     int16
}

// ButtonFromEvdev returns the report bit for an evdev mouse button.
func ButtonFromEvdev(code input.KeyCode) (uint8, bool) {
	b, ok := buttonBits[code]
	return b, ok
}

// SetButton presses or releases an evdev mouse button. It reports false for
// codes that are not mouse buttons.
func (m *InputState) SetButton(code input.KeyCode, down bool) bool {
	b, ok := buttonBits[code]
	if !ok {
		return false
	}
	if down {
		m.Buttons |= b
	} else {
		m.Buttons &^= b
	}
	return true
}

// AddMotion accumulates relative motion on an evdev axis, saturating at the
// int16 range. It reports false for axes the report cannot carry.
func (m *InputState) AddMotion(axis input.RelAxis, v int32) bool {
	var dst *int16
	switch axis {
	case input.RelX:
		dst = &m.DX
	case input.RelY:
		dst = &m.DY
	case input.RelWheel:
		dst = &m.Wheel
	case input.RelHWheel:
		dst = &m.Pan
	default:
		return false
	}
	sum := int32(*dst) + v
	*dst = int16(max(math.MinInt16, min(math.MaxInt16, sum)))
	return true
}

// HasMotion reports whether any relative field is non-zero.
func (m *InputState) HasMotion() bool {
	return m.DX != 0 || m.DY != 0 || m.Wheel != 0 || m.Pan != 0
}

// ClearMotion zeroes the relative fields and keeps the buttons.
func (m *InputState) ClearMotion() {
	m.DX, m.DY, m.Wheel, m.Pan = 0, 0, 0, 0
}

// MarshalBinary encodes the 9-byte stream wire format:
//
//	Byte 0: Buttons
//	Bytes 1-8: DX, DY, Wheel, Pan (int16 little-endian)
func (m *InputState) MarshalBinary() ([]byte, error) {
	b := make([]byte, 9)
	b[0] = m.Buttons & 0x1F
	for i, v := range [4]int16{m.DX, m.DY, m.Wheel, m.Pan} {
		b[1+2*i] = byte(v)
		b[2+2*i] = byte(v >> 8)
	}
	return b, nil
}

// UnmarshalBinary decodes the 9-byte stream wire format.
func (m *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < 9 {
		return io.ErrUnexpectedEOF
	}
	m.Buttons = data[0]
	m.DX = int16(data[1]) | int16(data[2])<<8
	m.DY = int16(data[3]) | int16(data[4])<<8
	m.Wheel = int16(data[5]) | int16(data[6])<<8
	m.Pan = int16(data[7]) | int16(data[8])<<8
	return nil
}
