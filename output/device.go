// Package output turns output actions into virtual keyboard and mouse input.
//
// A Device is the producer handle: any number of clones may Send actions.
// The Actuator owns all output state and runs on its own goroutine, applying
// actions as they arrive and re-emitting held relative axis velocities on a
// fixed cadence. Closing the last Device handle stops the Actuator.
package output

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Alia5/padmapper/input"
)

// ErrClosed is returned when sending to a closed device.
var ErrClosed = errors.New("output device closed")

// DefaultPulseInterval is the cadence at which held axis velocities are emitted.
const DefaultPulseInterval = 20 * time.Millisecond

const defaultQueueSize = 64

type config struct {
	interval  time.Duration
	queueSize int
	logger    *slog.Logger
}

// Option configures New.
type Option func(*config)

// WithPulseInterval overrides DefaultPulseInterval.
func WithPulseInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithQueueSize sets the action channel buffer.
func WithQueueSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.queueSize = n
		}
	}
}

// WithLogger sets the logger used for sink failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

type channel struct {
	mu     sync.Mutex
	ch     chan Action
	done   chan struct{}
	refs   int
	closed bool
}

// Device is a cloneable producer handle for the actuator.
type Device struct {
	c        *channel
	once     sync.Once
	released bool
}

// New creates the producer handle and the actuator that consumes it. The
// caller starts the actuator with go act.Run().
func New(sink Sink, opts ...Option) (*Device, *Actuator) {
	cfg := config{
		interval:  DefaultPulseInterval,
		queueSize: defaultQueueSize,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	c := &channel{ch: make(chan Action, cfg.queueSize), done: make(chan struct{}), refs: 1}
	act := &Actuator{
		ch:       c.ch,
		done:     c.done,
		sink:     sink,
		interval: cfg.interval,
		logger:   cfg.logger,
		keys:     make(map[input.KeyCode]bool),
		axes:     make(map[input.RelAxis]int32),
	}
	return &Device{c: c}, act
}

// Clone returns another handle to the same actuator.
func (d *Device) Clone() *Device {
	d.c.mu.Lock()
	d.c.refs++
	d.c.mu.Unlock()
	return &Device{c: d.c}
}

// Send queues an action. It blocks while the queue is full and fails with
// ErrClosed once this handle or the channel is closed, including while it
// waits for room in the queue.
func (d *Device) Send(a Action) error {
	d.c.mu.Lock()
	closed := d.c.closed || d.released
	d.c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	select {
	case d.c.ch <- a:
		return nil
	case <-d.c.done:
		return ErrClosed
	}
}

// Close releases this handle. The actuator stops after the last handle is closed.
func (d *Device) Close() error {
	d.once.Do(func() {
		d.c.mu.Lock()
		defer d.c.mu.Unlock()
		d.released = true
		d.c.refs--
		if d.c.refs <= 0 && !d.c.closed {
			d.c.closed = true
			close(d.c.done)
		}
	})
	return nil
}

// Actuator owns the virtual output state. It must only be used from the
// goroutine running Run.
type Actuator struct {
	ch       <-chan Action
	done     <-chan struct{}
	sink     Sink
	interval time.Duration
	logger   *slog.Logger

	keys map[input.KeyCode]bool
	axes map[input.RelAxis]int32
}

// Interval returns the axis pulse cadence.
func (a *Actuator) Interval() time.Duration { return a.interval }

// Run applies actions until every Device handle is closed. Between actions it
// re-emits all non-zero axis velocities once per interval; the interval
// restarts after every pulse so lateness never accumulates.
func (a *Actuator) Run() {
	timer := time.NewTimer(a.interval)
	defer timer.Stop()

	start := time.Now()
	for {
		remaining := a.interval - time.Since(start)
		if remaining <= 0 {
			a.pulseAxes()
			start = time.Now()
			continue
		}
		timer.Reset(remaining)
		select {
		case act := <-a.ch:
			a.apply(act)
		case <-a.done:
			a.drain()
			return
		case <-timer.C:
		}
	}
}

// drain applies what was queued before the last handle closed.
func (a *Actuator) drain() {
	for {
		select {
		case act := <-a.ch:
			a.apply(act)
		default:
			return
		}
	}
}

func (a *Actuator) apply(act Action) {
	switch v := act.(type) {
	case StateChange:
		a.applyStateChange(v)
	case Pulse:
		a.applyPulse(v)
	case Toggle:
		a.applyToggle(v)
	}
}

func (a *Actuator) applyStateChange(sc StateChange) {
	if sc.Keys != nil {
		for _, k := range sc.Keys.Keys {
			a.setKey(k, sc.Keys.State == input.Down)
		}
		a.sync()
	}
	for _, ax := range sc.Axes {
		a.setAxis(ax.Axis, ax.Value)
	}
}

func (a *Actuator) applyPulse(p Pulse) {
	if len(p.Keys) > 0 {
		for _, k := range p.Keys {
			a.setKey(k, false)
		}
		a.sync()
		for _, k := range p.Keys {
			a.setKey(k, true)
		}
		a.sync()
		for _, k := range p.Keys {
			a.setKey(k, false)
		}
		a.sync()
	}
	if len(p.Axes) > 0 {
		for _, ax := range p.Axes {
			a.check(a.sink.MoveRel(ax.Axis, ax.Value))
		}
		a.sync()
	}
}

func (a *Actuator) applyToggle(t Toggle) {
	if len(t.Keys) > 0 {
		for _, k := range t.Keys {
			a.setKey(k, !a.keys[k])
		}
		a.sync()
	}
	for _, ax := range t.Axes {
		if a.axes[ax.Axis] == ax.Value {
			a.setAxis(ax.Axis, 0)
		} else {
			a.setAxis(ax.Axis, ax.Value)
		}
	}
}

func (a *Actuator) setKey(k input.KeyCode, down bool) {
	if down {
		a.keys[k] = true
		a.check(a.sink.KeyDown(k))
		return
	}
	delete(a.keys, k)
	a.check(a.sink.KeyUp(k))
}

func (a *Actuator) setAxis(axis input.RelAxis, v int32) {
	if v == 0 {
		delete(a.axes, axis)
		return
	}
	a.axes[axis] = v
}

func (a *Actuator) pulseAxes() {
	if len(a.axes) == 0 {
		return
	}
	axes := make([]input.RelAxis, 0, len(a.axes))
	for ax := range a.axes {
		axes = append(axes, ax)
	}
	slices.Sort(axes)
	for _, ax := range axes {
		a.check(a.sink.MoveRel(ax, a.axes[ax]))
	}
	a.sync()
}

func (a *Actuator) sync() { a.check(a.sink.Sync()) }

func (a *Actuator) check(err error) {
	if err != nil {
		a.logger.Warn("output sink failed", "error", err)
	}
}
