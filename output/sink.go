package output

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/padmapper/input"
)

// Sink is the emission primitive behind the actuator: a virtual keyboard and
// mouse. Calls come from the actuator goroutine only.
type Sink interface {
	KeyDown(code input.KeyCode) error
	KeyUp(code input.KeyCode) error
	MoveRel(axis input.RelAxis, value int32) error
	// Sync flushes the preceding calls as one input frame.
	Sync() error
	Close() error
}

// Op identifies a recorded sink call.
type Op uint8

const (
	OpKeyDown Op = iota
	OpKeyUp
	OpMoveRel
	OpSync
)

func (o Op) String() string {
	switch o {
	case OpKeyDown:
		return "down"
	case OpKeyUp:
		return "up"
	case OpMoveRel:
		return "rel"
	default:
		return "sync"
	}
}

// Record is one call captured by RecordingSink.
type Record struct {
	Op    Op
	Key   input.KeyCode
	Axis  input.RelAxis
	Value int32
	At    time.Time
}

func (r Record) String() string {
	switch r.Op {
	case OpKeyDown, OpKeyUp:
		return fmt.Sprintf("%s %s", r.Key, r.Op)
	case OpMoveRel:
		return fmt.Sprintf("%s %d", r.Axis, r.Value)
	}
	return "SYN"
}

// RecordingSink keeps every call in memory. It is safe for concurrent use,
// so tests and dry runs can inspect it while an actuator is running.
type RecordingSink struct {
	mu      sync.Mutex
	records []Record
	closed  bool
}

func NewRecordingSink() *RecordingSink { return &RecordingSink{} }

func (r *RecordingSink) add(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	rec.At = time.Now()
	r.records = append(r.records, rec)
	return nil
}

func (r *RecordingSink) KeyDown(code input.KeyCode) error {
	return r.add(Record{Op: OpKeyDown, Key: code})
}

func (r *RecordingSink) KeyUp(code input.KeyCode) error {
	return r.add(Record{Op: OpKeyUp, Key: code})
}

func (r *RecordingSink) MoveRel(axis input.RelAxis, value int32) error {
	return r.add(Record{Op: OpMoveRel, Axis: axis, Value: value})
}

func (r *RecordingSink) Sync() error { return r.add(Record{Op: OpSync}) }

func (r *RecordingSink) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Records returns a snapshot of everything recorded so far.
func (r *RecordingSink) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Reset drops all recorded calls.
func (r *RecordingSink) Reset() {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}

// LogSink writes every call to a logger instead of a device.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink { return &LogSink{logger: logger} }

func (l *LogSink) KeyDown(code input.KeyCode) error {
	l.logger.Info("key", "code", code.String(), "state", "down")
	return nil
}

func (l *LogSink) KeyUp(code input.KeyCode) error {
	l.logger.Debug("key", "code", code.String(), "state", "up")
	return nil
}

func (l *LogSink) MoveRel(axis input.RelAxis, value int32) error {
	l.logger.Debug("rel", "axis", axis.String(), "value", value)
	return nil
}

func (l *LogSink) Sync() error  { return nil }
func (l *LogSink) Close() error { return nil }
