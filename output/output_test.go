package output_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/Alia5/padmapper/device/keyboard"
	"github.com/Alia5/padmapper/device/mouse"
	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ops(records []output.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.String()
	}
	return out
}

// drain sends actions, closes the handle and runs the actuator to completion.
func drain(t *testing.T, actions ...output.Action) []string {
	t.Helper()
	sink := output.NewRecordingSink()
	dev, act := output.New(sink, output.WithPulseInterval(time.Hour))
	for _, a := range actions {
		require.NoError(t, dev.Send(a))
	}
	require.NoError(t, dev.Close())
	act.Run()
	return ops(sink.Records())
}

func TestActuatorApply(t *testing.T) {
	tests := []struct {
		name    string
		actions []output.Action
		want    []string
	}{
		{
			name:    "pulse releases, presses, releases",
			actions: []output.Action{output.Pulse{Keys: []input.KeyCode{input.KeyA}}},
			want:    []string{"KEY_A up", "SYN", "KEY_A down", "SYN", "KEY_A up", "SYN"},
		},
		{
			name:    "pulse axes move once",
			actions: []output.Action{output.Pulse{Axes: output.AxisList{{Axis: input.RelX, Value: 5}}}},
			want:    []string{"REL_X 5", "SYN"},
		},
		{
			name: "toggle flips",
			actions: []output.Action{
				output.Toggle{Keys: []input.KeyCode{input.KeyLeftShift}},
				output.Toggle{Keys: []input.KeyCode{input.KeyLeftShift}},
			},
			want: []string{"KEY_LEFTSHIFT down", "SYN", "KEY_LEFTSHIFT up", "SYN"},
		},
		{
			name: "state change sets keys",
			actions: []output.Action{
				output.StateChange{Keys: &output.KeyStateChange{Keys: []input.KeyCode{input.KeyB, input.KeyC}, State: input.Down}},
			},
			want: []string{"KEY_B down", "KEY_C down", "SYN"},
		},
		{
			name:    "state change axes only are held silently",
			actions: []output.Action{output.StateChange{Axes: output.AxisList{{Axis: input.RelY, Value: 2}}}},
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, drain(t, tt.actions...))
		})
	}
}

func TestActuatorPulsesHeldAxes(t *testing.T) {
	sink := output.NewRecordingSink()
	dev, act := output.New(sink, output.WithPulseInterval(5*time.Millisecond))
	done := make(chan struct{})
	go func() {
		act.Run()
		close(done)
	}()

	require.NoError(t, dev.Send(output.StateChange{Axes: output.AxisList{{Axis: input.RelX, Value: 3}, {Axis: input.RelY, Value: -1}}}))
	require.Eventually(t, func() bool {
		n := 0
		for _, r := range sink.Records() {
			if r.Op == output.OpMoveRel && r.Axis == input.RelX {
				n++
			}
		}
		return n >= 3
	}, 2*time.Second, time.Millisecond)

	recs := sink.Records()
	require.GreaterOrEqual(t, len(recs), 3)
	// Axes are emitted in ascending order and followed by one sync.
	assert.Equal(t, []string{"REL_X 3", "REL_Y -1", "SYN"}, ops(recs[:3]))

	require.NoError(t, dev.Send(output.StateChange{Axes: output.AxisList{{Axis: input.RelX}, {Axis: input.RelY}}}))
	time.Sleep(20 * time.Millisecond)
	sink.Reset()
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, sink.Records())

	require.NoError(t, dev.Close())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("actuator did not stop")
	}
}

func TestActuatorPulseCadence(t *testing.T) {
	const (
		period = 20 * time.Millisecond
		cycles = 15
		slack  = 10 * time.Millisecond
	)
	sink := output.NewRecordingSink()
	dev, act := output.New(sink, output.WithPulseInterval(period))
	done := make(chan struct{})
	go func() {
		act.Run()
		close(done)
	}()

	moves := func() []time.Time {
		var at []time.Time
		for _, r := range sink.Records() {
			if r.Op == output.OpMoveRel && r.Axis == input.RelX {
				at = append(at, r.At)
			}
		}
		return at
	}

	require.NoError(t, dev.Send(output.StateChange{Axes: output.AxisList{{Axis: input.RelX, Value: 4}}}))
	// Discrete actions in between must not shift the cadence.
	deadline := time.Now().Add(5 * time.Second)
	for len(moves()) < cycles+1 && time.Now().Before(deadline) {
		require.NoError(t, dev.Send(output.Pulse{Keys: []input.KeyCode{input.KeyA}}))
		time.Sleep(3 * time.Millisecond)
	}
	require.NoError(t, dev.Close())
	<-done

	at := moves()
	require.GreaterOrEqual(t, len(at), cycles+1)
	at = at[:cycles+1]
	for i := 1; i < len(at); i++ {
		gap := at[i].Sub(at[i-1])
		assert.GreaterOrEqual(t, gap, period, "gap %d", i)
		assert.LessOrEqual(t, gap, period+slack, "gap %d", i)
	}
	span := at[cycles].Sub(at[0])
	assert.GreaterOrEqual(t, span, cycles*period)
	assert.LessOrEqual(t, span, cycles*(period+slack/2))
}

func TestActuatorToggleAxis(t *testing.T) {
	sink := output.NewRecordingSink()
	dev, act := output.New(sink, output.WithPulseInterval(5*time.Millisecond))
	go act.Run()
	defer dev.Close()

	tog := output.Toggle{Axes: output.AxisList{{Axis: input.RelWheel, Value: 1}}}
	require.NoError(t, dev.Send(tog))
	require.Eventually(t, func() bool { return len(sink.Records()) > 0 }, time.Second, time.Millisecond)

	require.NoError(t, dev.Send(tog))
	time.Sleep(20 * time.Millisecond)
	sink.Reset()
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, sink.Records())
}

func TestDeviceHandles(t *testing.T) {
	dev, act := output.New(output.NewRecordingSink())
	done := make(chan struct{})
	go func() {
		act.Run()
		close(done)
	}()

	clone := dev.Clone()
	require.NoError(t, dev.Close())
	require.NoError(t, dev.Close())
	assert.ErrorIs(t, dev.Send(output.Pulse{}), output.ErrClosed)
	assert.NoError(t, clone.Send(output.Pulse{}))

	select {
	case <-done:
		t.Fatal("actuator stopped while a handle is open")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, clone.Close())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("actuator did not stop after the last handle closed")
	}
	assert.ErrorIs(t, clone.Send(output.Pulse{}), output.ErrClosed)
}

func TestBlockedSendDoesNotHoldClose(t *testing.T) {
	dev, _ := output.New(output.NewRecordingSink(), output.WithQueueSize(0))
	clone := dev.Clone()

	sent := make(chan error, 1)
	go func() { sent <- clone.Send(output.Pulse{}) }()
	time.Sleep(10 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		_ = dev.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked behind a full queue")
	}

	require.NoError(t, clone.Close())
	select {
	case err := <-sent:
		assert.ErrorIs(t, err, output.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Send still blocked after the last handle closed")
	}
}

func TestConvert(t *testing.T) {
	keys := []input.KeyCode{input.KeyA}
	axes := output.AxisList{{Axis: input.RelX, Value: 4}}

	sc := output.ToStateChange(output.Pulse{Keys: keys, Axes: axes})
	require.NotNil(t, sc.Keys)
	assert.Equal(t, input.Down, sc.Keys.State)
	assert.Equal(t, axes, sc.Axes)

	up := output.StateChange{Keys: &output.KeyStateChange{Keys: keys, State: input.Up}, Axes: axes}
	assert.Equal(t, output.Pulse{Keys: keys, Axes: axes}, output.Convert(up, output.KindPulse))
	assert.Equal(t, output.Toggle{Keys: keys, Axes: axes}, output.Convert(up, output.KindToggle))
	assert.Equal(t, up, output.Convert(up, output.KindStateChange))

	inv := up.Inverse()
	assert.Equal(t, input.Down, inv.Keys.State)
	assert.Equal(t, output.AxisList{{Axis: input.RelX}}, inv.Axes)
	assert.Equal(t, int32(4), axes[0].Value)
}

func TestParseKind(t *testing.T) {
	for _, k := range []output.Kind{output.KindStateChange, output.KindPulse, output.KindToggle} {
		got, err := output.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := output.ParseKind("hold")
	assert.Error(t, err)
}

func TestHandsOffIdempotent(t *testing.T) {
	ho := output.HandsOff()
	require.NotNil(t, ho.Keys)
	assert.Equal(t, input.Up, ho.Keys.State)
	assert.Len(t, ho.Keys.Keys, len(input.AllKeyCodes()))
	for _, a := range ho.Axes {
		assert.Zero(t, a.Value)
	}

	once := drain(t, output.Toggle{Keys: []input.KeyCode{input.KeyA}}, ho)
	twice := drain(t, output.Toggle{Keys: []input.KeyCode{input.KeyA}}, ho, ho)
	half := (len(twice) - 2) / 2
	assert.Equal(t, once, twice[:len(once)])
	assert.Equal(t, once[2:], twice[2+half:])
}

func TestReportSink(t *testing.T) {
	var kbd, ms bytes.Buffer
	s := output.NewReportSink(&kbd, &ms)

	require.NoError(t, s.KeyDown(input.KeyLeftShift))
	require.NoError(t, s.KeyDown(input.KeyA))
	require.NoError(t, s.KeyDown(input.BtnSouth))
	require.NoError(t, s.Sync())
	assert.Equal(t, []byte{keyboard.ModLeftShift, 1, keyboard.KeyA}, kbd.Bytes())
	assert.Zero(t, ms.Len())

	kbd.Reset()
	require.NoError(t, s.KeyDown(input.BtnLeft))
	require.NoError(t, s.MoveRel(input.RelX, 5))
	require.NoError(t, s.MoveRel(input.RelX, 2))
	require.NoError(t, s.Sync())
	assert.Zero(t, kbd.Len())
	assert.Equal(t, []byte{mouse.BtnLeft, 7, 0, 0, 0, 0, 0, 0, 0}, ms.Bytes())

	ms.Reset()
	require.NoError(t, s.Sync())
	assert.Zero(t, ms.Len())

	require.NoError(t, s.KeyUp(input.BtnLeft))
	require.NoError(t, s.Sync())
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0}, ms.Bytes())

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.KeyDown(input.KeyA), output.ErrClosed)
}
