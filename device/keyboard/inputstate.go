// Package keyboard models the HID keyboard report streamed to a virtual
// keyboard device.
package keyboard

import "io"

// InputState is the full keyboard state: modifier byte plus a 256-bit bitmap
// of pressed HID usages.
type InputState struct {
	Modifiers uint8
	KeyBitmap [32]uint8
}

// Press sets the bit for a HID usage.
func (st *InputState) Press(usage uint8) {
	st.KeyBitmap[usage/8] |= 1 << (usage % 8)
}

// Release clears the bit for a HID usage.
func (st *InputState) Release(usage uint8) {
	st.KeyBitmap[usage/8] &^= 1 << (usage % 8)
}

// Pressed reports whether a HID usage is held.
func (st *InputState) Pressed(usage uint8) bool {
	return st.KeyBitmap[usage/8]&(1<<(usage%8)) != 0
}

// Keys lists the held usages in ascending order.
func (st *InputState) Keys() []uint8 {
	var keys []uint8
	for i := 0; i < 256; i++ {
		if st.Pressed(uint8(i)) {
			keys = append(keys, uint8(i))
		}
	}
	return keys
}

// BuildReport encodes the 34-byte N-key-rollover report:
//
//	Byte 0: Modifiers
//	Byte 1: Reserved
//	Bytes 2-33: Key bitmap
func (st InputState) BuildReport() []byte {
	b := make([]byte, 34)
	b[0] = st.Modifiers
	copy(b[2:], st.KeyBitmap[:])
	return b
}

// MarshalBinary encodes the stream wire format:
//
//	Byte 0: Modifiers
//	Byte 1: Key count
//	Bytes 2+: HID usages of pressed keys
func (st *InputState) MarshalBinary() ([]byte, error) {
	keys := st.Keys()
	b := make([]byte, 2, 2+len(keys))
	b[0] = st.Modifiers
	b[1] = uint8(len(keys))
	return append(b, keys...), nil
}

// UnmarshalBinary decodes the stream wire format.
func (st *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return io.ErrUnexpectedEOF
	}
	n := int(data[1])
	if len(data) < 2+n {
		return io.ErrUnexpectedEOF
	}
	st.Modifiers = data[0]
	st.KeyBitmap = [32]uint8{}
	for _, k := range data[2 : 2+n] {
		st.Press(k)
	}
	return nil
}
