package input

import (
	"bytes"
	"encoding/binary"
	"io"
)

// RawEvent mirrors the kernel's struct input_event on 64-bit Linux:
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type RawEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// RawEventSize is the encoded size of one RawEvent.
var RawEventSize = binary.Size(RawEvent{})

// DecodeRaw reads one RawEvent from the first RawEventSize bytes of b.
func DecodeRaw(b []byte) (RawEvent, error) {
	var ev RawEvent
	if len(b) < RawEventSize {
		return ev, io.ErrUnexpectedEOF
	}
	err := binary.Read(bytes.NewReader(b[:RawEventSize]), binary.LittleEndian, &ev)
	return ev, err
}

// EncodeRaw appends the wire form of ev to b.
func EncodeRaw(b []byte, ev RawEvent) []byte {
	b = binary.LittleEndian.AppendUint64(b, uint64(ev.Sec))
	b = binary.LittleEndian.AppendUint64(b, uint64(ev.Usec))
	b = binary.LittleEndian.AppendUint16(b, ev.Type)
	b = binary.LittleEndian.AppendUint16(b, ev.Code)
	b = binary.LittleEndian.AppendUint32(b, uint32(ev.Value))
	return b
}

// Normalize converts a raw event into an Event. Sync, misc and key repeat
// (value 2) records have no normalized form and report false.
func Normalize(ev RawEvent) (Event, bool) {
	switch ev.Type {
	case EvKey:
		switch ev.Value {
		case 0:
			return KeyEvent{Code: KeyCode(ev.Code), State: Up}, true
		case 1:
			return KeyEvent{Code: KeyCode(ev.Code), State: Down}, true
		}
	case EvAbs:
		return AbsAxisEvent{Axis: AbsAxis(ev.Code), Value: ev.Value}, true
	case EvRel:
		return RelAxisEvent{Axis: RelAxis(ev.Code), Value: ev.Value}, true
	}
	return nil, false
}
