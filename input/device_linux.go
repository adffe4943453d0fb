//go:build linux

package input

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	nameBufLen = 256
	// EVIOCGNAME(len) = _IOC(_IOC_READ, 'E', 0x06, len)
	eviocgname = 2<<30 | nameBufLen<<16 | 'E'<<8 | 0x06

	pollTimeoutMs = 100
	readBatch     = 64
)

// Device is an open evdev character device.
type Device struct {
	fd   int
	path string
	name string
}

// Open opens the evdev device at path for non-blocking reads.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	name, err := deviceName(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("query name of %s: %w", path, err)
	}
	return &Device{fd: fd, path: path, name: name}, nil
}

// OpenByName opens the first device whose reported name equals name.
func OpenByName(name string) (*Device, error) {
	for _, p := range candidatePaths() {
		d, err := Open(p)
		if err != nil {
			continue
		}
		if d.name == name {
			return d, nil
		}
		_ = d.Close()
	}
	return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}

// List enumerates readable evdev devices. Devices that cannot be opened
// (usually for lack of permission) are skipped.
func List() ([]Info, error) {
	var out []Info
	for _, p := range candidatePaths() {
		d, err := Open(p)
		if err != nil {
			continue
		}
		out = append(out, Info{Path: p, Name: d.name})
		_ = d.Close()
	}
	return out, nil
}

func deviceName(fd int) (string, error) {
	var buf [nameBufLen]byte
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(eviocgname), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return "", errno
	}
	return strings.TrimRight(string(buf[:]), "\x00"), nil
}

// Name returns the name the kernel reports for the device.
func (d *Device) Name() string { return d.name }

// Path returns the device node path.
func (d *Device) Path() string { return d.path }

// Close releases the device.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// Poll reads events with epoll and hands every normalized event to fn, in
// order, on the calling goroutine. It returns nil when ctx is canceled and
// ErrDisconnected when the device is unplugged.
func (d *Device) Poll(ctx context.Context, fn func(Event)) error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return fmt.Errorf("epoll_create1: %w", err)
	}
	defer unix.Close(epfd)

	event := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(d.fd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, d.fd, &event); err != nil {
		return fmt.Errorf("epoll_ctl_add fd=%d: %w", d.fd, err)
	}

	epollEvents := make([]unix.EpollEvent, 1)
	buf := make([]byte, RawEventSize*readBatch)

	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := unix.EpollWait(epfd, epollEvents, pollTimeoutMs)
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}
		if n == 0 {
			continue
		}
		if epollEvents[0].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			return fmt.Errorf("%w: %s", ErrDisconnected, d.path)
		}

		r, err := unix.Read(d.fd, buf)
		if err != nil {
			switch {
			case errors.Is(err, unix.EAGAIN), errors.Is(err, syscall.EINTR):
				continue
			case errors.Is(err, unix.ENODEV):
				return fmt.Errorf("%w: %s", ErrDisconnected, d.path)
			}
			return fmt.Errorf("read from %s: %w", d.path, err)
		}
		for off := 0; off+RawEventSize <= r; off += RawEventSize {
			raw, err := DecodeRaw(buf[off:])
			if err != nil {
				continue
			}
			if ev, ok := Normalize(raw); ok {
				fn(ev)
			}
		}
	}
}
