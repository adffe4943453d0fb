package log_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/Alia5/padmapper/input"
	plog "github.com/Alia5/padmapper/internal/log"
	"github.com/Alia5/padmapper/mapping"
	"github.com/Alia5/padmapper/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", plog.LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, plog.ParseLevel(tt.in))
		})
	}
}

func TestConsoleSplitsByLevel(t *testing.T) {
	var out, errw bytes.Buffer
	logger := slog.New(plog.NewConsole(&out, &errw, slog.LevelDebug))

	logger.Debug("dbg")
	logger.Info("hello", "k", 1)
	logger.Error("boom")
	logger.Log(t.Context(), plog.LevelTrace, "hidden")

	assert.Contains(t, out.String(), "msg=dbg")
	assert.Contains(t, out.String(), "msg=hello k=1")
	assert.NotContains(t, out.String(), "boom")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, errw.String(), "msg=boom")
	assert.NotContains(t, errw.String(), "hello")
}

func TestTraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(plog.NewTextHandler(&buf, plog.LevelTrace)).With("component", "test")
	logger.Log(t.Context(), plog.LevelTrace, "event")
	assert.Contains(t, buf.String(), "level=TRACE")
	assert.Contains(t, buf.String(), "component=test")
}

func TestMultiHandlerWithGroup(t *testing.T) {
	var a, b bytes.Buffer
	h := plog.NewMultiHandler(plog.NewTextHandler(&a, slog.LevelInfo), plog.NewTextHandler(&b, slog.LevelWarn))
	logger := slog.New(h).WithGroup("g")

	logger.Info("one", "k", "v")
	logger.Warn("two", "k", "v")

	assert.Contains(t, a.String(), "g.k=v")
	assert.Equal(t, 2, strings.Count(a.String(), "\n"))
	assert.Equal(t, 1, strings.Count(b.String(), "\n"))
	assert.Contains(t, b.String(), "msg=two")
}

func TestTraceLogger(t *testing.T) {
	var buf bytes.Buffer
	var tl mapping.Observer = plog.NewTrace(&buf)

	tl.OnEvent(input.KeyEvent{Code: input.BtnSouth, State: input.Down})
	tl.OnAction(output.Pulse{Keys: []input.KeyCode{input.KeyA}})
	tl.OnConfigSwitch("/tmp/b.json")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], " IN  BTN_SOUTH down"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], " OUT pulse keys=[KEY_A] axes=[]"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], " CFG /tmp/b.json"), lines[2])

	assert.NotPanics(t, func() { plog.NewTrace(nil).OnConfigSwitch("x") })
}

func TestSlogTrace(t *testing.T) {
	var buf bytes.Buffer
	obs := plog.SlogTrace{Logger: slog.New(plog.NewTextHandler(&buf, plog.LevelTrace))}
	obs.OnEvent(input.AbsAxisEvent{Axis: input.AbsX, Value: 12})
	assert.Contains(t, buf.String(), `event="ABS_X 12"`)
}
