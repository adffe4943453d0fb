package input

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
)

var (
	// ErrDisconnected is returned by Poll when the device goes away.
	ErrDisconnected = errors.New("input device disconnected")
	// ErrDeviceNotFound is returned when no device matches the requested name.
	ErrDeviceNotFound = errors.New("input device not found")
	// ErrUnsupported is returned on platforms without evdev.
	ErrUnsupported = errors.New("evdev input is not supported on this platform")
)

// DevicePattern is the glob for evdev character devices.
const DevicePattern = "/dev/input/event*"

// Info describes one enumerated input device.
type Info struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Source produces normalized events until the context is canceled or the
// device fails.
type Source interface {
	Name() string
	Poll(ctx context.Context, fn func(Event)) error
	Close() error
}

func candidatePaths() []string {
	paths, _ := filepath.Glob(DevicePattern)
	slices.Sort(paths)
	return paths
}
