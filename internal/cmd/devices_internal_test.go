package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padmapper/input"
)

func TestPickDevice(t *testing.T) {
	infos := []input.Info{
		{Path: "/dev/input/event3", Name: "Keyboard"},
		{Path: "/dev/input/event7", Name: "Nintendo Switch Pro Controller"},
	}

	tests := []struct {
		name    string
		answer  string
		want    string
		wantErr bool
	}{
		{"first", "1\n", "/dev/input/event3", false},
		{"second without newline", " 2", "/dev/input/event7", false},
		{"out of range", "3\n", "", true},
		{"zero", "0\n", "", true},
		{"not a number", "pad\n", "", true},
		{"no input", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := pickDevice(&out, strings.NewReader(tt.answer), infos)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Nintendo Switch Pro Controller")
		})
	}

	_, err := pickDevice(&bytes.Buffer{}, strings.NewReader("1\n"), nil)
	assert.ErrorIs(t, err, input.ErrDeviceNotFound)
}

func TestPrintDevicesJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printDevices(&out, nil, true))
	assert.JSONEq(t, `[]`, out.String())
}

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"PulseInterval": "pulse_interval",
		"Addr":          "addr",
		"JSON":          "json",
		"DeviceName":    "device_name",
		"TraceFile":     "trace_file",
	} {
		assert.Equal(t, want, snakeCase(in), in)
	}
}
