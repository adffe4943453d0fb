//go:build !linux

package input

import "context"

// Device is unavailable outside Linux.
type Device struct{}

func Open(path string) (*Device, error) { return nil, ErrUnsupported }
func OpenByName(name string) (*Device, error) { return nil, ErrUnsupported }
func List() ([]Info, error) { return nil, ErrUnsupported }

func (d *Device) Name() string { return "" }
func (d *Device) Path() string { return "" }
func (d *Device) Close() error { return nil }

func (d *Device) Poll(ctx context.Context, fn func(Event)) error { return ErrUnsupported }
