//go:build linux

package output

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Alia5/padmapper/input"
)

// UInputPath is the uinput control device.
const UInputPath = "/dev/uinput"

// uinput.h
const (
	uinputMaxNameSize = 80
	uiDevCreate       = 0x5501
	uiDevDestroy      = 0x5502
	uiSetEvBit        = 0x40045564
	uiSetKeyBit       = 0x40045565
	uiSetRelBit       = 0x40045566
	busUSB            = 0x03
	absSize           = 64
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputUserDev struct {
	Name       [uinputMaxNameSize]byte
	ID         inputID
	EffectsMax uint32
	Absmax     [absSize]int32
	Absmin     [absSize]int32
	Absfuzz    [absSize]int32
	Absflat    [absSize]int32
}

// UInputSink is a kernel virtual keyboard and mouse created through uinput.
// It advertises every key code and relative axis the mapper can emit.
type UInputSink struct {
	mu  sync.Mutex
	fd  int
	buf []byte
}

// NewUInputSink creates a virtual device named name.
func NewUInputSink(name string) (*UInputSink, error) {
	fd, err := unix.Open(UInputPath, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", UInputPath, err)
	}
	if err := setupUInput(fd, name); err != nil {
		unix.Close(fd)
		return nil, err
	}
	// udev needs a moment to publish the node before events are delivered.
	time.Sleep(200 * time.Millisecond)
	return &UInputSink{fd: fd}, nil
}

func setupUInput(fd int, name string) error {
	for _, ev := range []uint16{input.EvSyn, input.EvKey, input.EvRel} {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, int(ev)); err != nil {
			return fmt.Errorf("UI_SET_EVBIT %d: %w", ev, err)
		}
	}
	for _, k := range input.AllKeyCodes() {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, int(k)); err != nil {
			return fmt.Errorf("UI_SET_KEYBIT %s: %w", k, err)
		}
	}
	for _, r := range input.AllRelAxes() {
		if err := unix.IoctlSetInt(fd, uiSetRelBit, int(r)); err != nil {
			return fmt.Errorf("UI_SET_RELBIT %s: %w", r, err)
		}
	}

	dev := uinputUserDev{ID: inputID{Bustype: busUSB, Vendor: 0x1209, Product: 0x5070, Version: 1}}
	copy(dev.Name[:uinputMaxNameSize-1], name)
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, &dev); err != nil {
		return fmt.Errorf("encode uinput_user_dev: %w", err)
	}
	if _, err := unix.Write(fd, b.Bytes()); err != nil {
		return fmt.Errorf("write uinput_user_dev: %w", err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return nil
}

func (u *UInputSink) emit(typ, code uint16, value int32) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fd < 0 {
		return ErrClosed
	}
	now := time.Now()
	u.buf = input.EncodeRaw(u.buf[:0], input.RawEvent{
		Sec:   now.Unix(),
		Usec:  int64(now.Nanosecond() / 1000),
		Type:  typ,
		Code:  code,
		Value: value,
	})
	_, err := unix.Write(u.fd, u.buf)
	return err
}

func (u *UInputSink) KeyDown(code input.KeyCode) error { return u.emit(input.EvKey, uint16(code), 1) }
func (u *UInputSink) KeyUp(code input.KeyCode) error   { return u.emit(input.EvKey, uint16(code), 0) }

func (u *UInputSink) MoveRel(axis input.RelAxis, value int32) error {
	return u.emit(input.EvRel, uint16(axis), value)
}

func (u *UInputSink) Sync() error { return u.emit(input.EvSyn, input.SynReport, 0) }

// Close destroys the virtual device.
func (u *UInputSink) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fd < 0 {
		return nil
	}
	_ = unix.IoctlSetInt(u.fd, uiDevDestroy, 0)
	err := unix.Close(u.fd)
	u.fd = -1
	return err
}
