package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/output"
)

// TraceLogger writes one timestamped line per input event, emitted action
// and configuration switch. It satisfies mapping.Observer.
type TraceLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewTrace creates a TraceLogger. A nil writer discards everything.
func NewTrace(w io.Writer) *TraceLogger {
	return &TraceLogger{w: w, now: time.Now}
}

func (t *TraceLogger) OnEvent(ev input.Event)     { t.line("IN ", ev.String()) }
func (t *TraceLogger) OnAction(a output.Action)   { t.line("OUT", a.String()) }
func (t *TraceLogger) OnConfigSwitch(path string) { t.line("CFG", path) }

func (t *TraceLogger) line(dir, msg string) {
	if t.w == nil {
		return
	}
	s := fmt.Sprintf("%s %s %s\n", t.now().Format("2006/01/02 15:04:05.000"), dir, msg)

	t.mu.Lock()
	_, _ = io.WriteString(t.w, s)
	t.mu.Unlock()
}

// SlogTrace reports the same activity through a logger at LevelTrace.
type SlogTrace struct {
	Logger *slog.Logger
}

func (s SlogTrace) OnEvent(ev input.Event) {
	s.Logger.Log(context.Background(), LevelTrace, "input", "event", ev.String())
}

func (s SlogTrace) OnAction(a output.Action) {
	s.Logger.Log(context.Background(), LevelTrace, "output", "action", a.String())
}

func (s SlogTrace) OnConfigSwitch(path string) {
	s.Logger.Log(context.Background(), LevelTrace, "config switch", "path", path)
}
