package mapping_test

import (
	"math"
	"testing"

	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/mapping"
	"github.com/Alia5/padmapper/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stickThresholds = mapping.NewAllAxisThresholds([]mapping.AxisThresholdEntry{
	{Axis: input.AbsX, Threshold: mapping.AxisThreshold{Dir: mapping.Greater, Value: 2000}},
	{Axis: input.AbsX, Threshold: mapping.AxisThreshold{Dir: mapping.Lesser, Value: -2000}},
	{Axis: input.AbsRY, Threshold: mapping.AxisThreshold{Dir: mapping.Greater, Value: 16000}},
	{Axis: input.AbsRY, Threshold: mapping.AxisThreshold{Dir: mapping.Lesser, Value: -16000}},
})

func down(k input.KeyCode) input.Event        { return input.KeyEvent{Code: k, State: input.Down} }
func up(k input.KeyCode) input.Event          { return input.KeyEvent{Code: k, State: input.Up} }
func abs(a input.AbsAxis, v int32) input.Event { return input.AbsAxisEvent{Axis: a, Value: v} }

type step struct {
	ev   input.Event
	want mapping.Action
}

func runChord(t *testing.T, c *mapping.ChordMap, steps []step) {
	t.Helper()
	for i, s := range steps {
		got, ok := c.HandleEvent(s.ev)
		if s.want == nil {
			assert.False(t, ok, "step %d (%s): unexpected %v", i, s.ev, got)
			continue
		}
		require.True(t, ok, "step %d (%s): no action", i, s.ev)
		assert.Equal(t, s.want, got, "step %d (%s)", i, s.ev)
	}
}

func TestChordMap(t *testing.T) {
	x := mapping.PulseKeys(input.KeyX)
	one := mapping.PulseKeys(input.Key1)
	a := mapping.PulseKeys(input.KeyA)
	b := mapping.PulseKeys(input.KeyB)
	repeat := mapping.RepeatLastChord{As: output.KindToggle}

	rsu := mapping.AxisInput(input.AbsRY, mapping.Lesser)
	rsd := mapping.AxisInput(input.AbsRY, mapping.Greater)
	entries := []mapping.ChordEntry{
		{Inputs: []mapping.Input{mapping.KeyInput(input.BtnSouth), mapping.KeyInput(input.BtnEast)}, Action: x},
		{Inputs: []mapping.Input{mapping.KeyInput(input.BtnDpadRight), rsu}, Action: one},
		{Inputs: []mapping.Input{rsd}, Action: a},
		{Inputs: []mapping.Input{rsu}, Action: b},
		{Inputs: []mapping.Input{mapping.KeyInput(input.BtnStart)}, Action: repeat},
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "release last pressed",
			steps: []step{
				{ev: down(input.BtnSouth)},
				{ev: down(input.BtnEast)},
				{ev: up(input.BtnEast), want: x},
				{ev: up(input.BtnSouth)},
			},
		},
		{
			name: "release first pressed",
			steps: []step{
				{ev: down(input.BtnSouth)},
				{ev: down(input.BtnEast)},
				{ev: up(input.BtnSouth), want: x},
				{ev: up(input.BtnEast)},
			},
		},
		{
			name: "unbound subset resolves nothing",
			steps: []step{
				{ev: down(input.BtnSouth)},
				{ev: up(input.BtnSouth)},
			},
		},
		{
			name: "re-press reprimes",
			steps: []step{
				{ev: down(input.BtnSouth)},
				{ev: down(input.BtnEast)},
				{ev: up(input.BtnEast), want: x},
				{ev: down(input.BtnEast)},
				{ev: up(input.BtnEast), want: x},
				{ev: up(input.BtnSouth)},
			},
		},
		{
			name: "key plus stick resolves on recede",
			steps: []step{
				{ev: down(input.BtnDpadRight)},
				{ev: abs(input.AbsRY, -20000)},
				{ev: abs(input.AbsRY, -25000)},
				{ev: abs(input.AbsRY, 0), want: one},
				{ev: up(input.BtnDpadRight)},
			},
		},
		{
			name: "stick swap resolves the old direction",
			steps: []step{
				{ev: abs(input.AbsRY, 20000)},
				{ev: abs(input.AbsRY, -20000), want: a},
				{ev: abs(input.AbsRY, 0), want: b},
			},
		},
		{
			name: "axis inside deadzone is ignored",
			steps: []step{
				{ev: abs(input.AbsRY, 1000)},
				{ev: abs(input.AbsRY, -1000)},
			},
		},
		{
			name: "untracked axis is ignored",
			steps: []step{
				{ev: abs(input.AbsX, 30000)},
				{ev: abs(input.AbsX, 0)},
			},
		},
		{
			name: "relative events are ignored",
			steps: []step{
				{ev: input.RelAxisEvent{Axis: input.RelX, Value: 3}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runChord(t, mapping.NewChordMap(nil, entries, stickThresholds, nil), tt.steps)
		})
	}
}

func TestChordPrevAction(t *testing.T) {
	x := mapping.PulseKeys(input.KeyX)
	repeat := mapping.RepeatLastChord{As: output.KindPulse}
	c := mapping.NewChordMap(nil, []mapping.ChordEntry{
		{Inputs: []mapping.Input{mapping.KeyInput(input.BtnSouth)}, Action: x},
		{Inputs: []mapping.Input{mapping.KeyInput(input.BtnStart)}, Action: repeat},
	}, stickThresholds, nil)

	_, ok := c.PrevAction()
	assert.False(t, ok)

	runChord(t, c, []step{
		{ev: down(input.BtnSouth)},
		{ev: up(input.BtnSouth), want: x},
		{ev: down(input.BtnStart)},
		{ev: up(input.BtnStart), want: repeat},
	})

	prev, ok := c.PrevAction()
	require.True(t, ok)
	assert.Equal(t, x, prev, "a repeat does not replace the previous chord")
}

func TestChordClearState(t *testing.T) {
	x := mapping.PulseKeys(input.KeyX)
	c := mapping.NewChordMap(nil, []mapping.ChordEntry{
		{Inputs: []mapping.Input{mapping.KeyInput(input.BtnSouth)}, Action: x},
	}, stickThresholds, nil)

	c.HandleEvent(down(input.BtnSouth))
	assert.Len(t, c.Held(), 1)
	c.ClearState()
	assert.Empty(t, c.Held())
	_, ok := c.HandleEvent(up(input.BtnSouth))
	assert.False(t, ok)
}

func TestChordSeedBlocksChords(t *testing.T) {
	x := mapping.PulseKeys(input.KeyX)
	c := mapping.NewChordMap(
		[]mapping.Input{mapping.KeyInput(input.BtnZ)},
		[]mapping.ChordEntry{{Inputs: []mapping.Input{mapping.KeyInput(input.BtnSouth)}, Action: x}},
		stickThresholds, nil)

	assert.True(t, c.Universe().Contains(mapping.KeyInput(input.BtnZ)))
	runChord(t, c, []step{
		{ev: down(input.BtnZ)},
		{ev: down(input.BtnSouth)},
		{ev: up(input.BtnSouth)},
		{ev: up(input.BtnZ)},
	})
}

func TestModifierMap(t *testing.T) {
	shift := mapping.Out(output.Toggle{Keys: []input.KeyCode{input.KeyLeftShift}})
	left := mapping.PulseKeys(input.KeyLeft)
	right := mapping.PulseKeys(input.KeyRight)
	m := mapping.NewModifierMap([]mapping.ModifierEntry{
		{Input: mapping.KeyInput(input.BtnTR2), Action: shift},
		{Input: mapping.AxisInput(input.AbsX, mapping.Lesser), Action: left},
		{Input: mapping.AxisInput(input.AbsX, mapping.Greater), Action: right},
	}, stickThresholds)

	tests := []struct {
		ev              input.Event
		primary, second mapping.Action
		ok              bool
	}{
		{ev: down(input.BtnTR2), primary: shift, ok: true},
		{ev: up(input.BtnTR2), primary: shift, ok: true},
		{ev: down(input.BtnSouth)},
		{ev: abs(input.AbsX, 500)},
		{ev: abs(input.AbsX, 3000), primary: right, ok: true},
		{ev: abs(input.AbsX, 9000)},
		{ev: abs(input.AbsX, -3000), primary: left, second: right, ok: true},
		{ev: abs(input.AbsX, 0), primary: left, ok: true},
		{ev: abs(input.AbsX, 0)},
	}
	for i, tt := range tests {
		p, s, ok := m.HandleEvent(tt.ev)
		assert.Equal(t, tt.ok, ok, "step %d", i)
		assert.Equal(t, tt.primary, p, "step %d primary", i)
		assert.Equal(t, tt.second, s, "step %d secondary", i)
	}
}

func TestModifierSwapToUnbound(t *testing.T) {
	right := mapping.PulseKeys(input.KeyRight)
	m := mapping.NewModifierMap([]mapping.ModifierEntry{
		{Input: mapping.AxisInput(input.AbsX, mapping.Greater), Action: right},
	}, stickThresholds)

	_, _, ok := m.HandleEvent(abs(input.AbsX, 3000))
	require.True(t, ok)
	p, s, ok := m.HandleEvent(abs(input.AbsX, -3000))
	require.True(t, ok)
	assert.Equal(t, right, p, "old binding is promoted")
	assert.Nil(t, s)
}

func velocity(t *testing.T, a mapping.Action) output.AxisValue {
	t.Helper()
	out, ok := a.(mapping.Output)
	require.True(t, ok)
	sc, ok := out.Action.(output.StateChange)
	require.True(t, ok)
	require.Nil(t, sc.Keys)
	require.Len(t, sc.Axes, 1)
	return sc.Axes[0]
}

func TestMouseProfile(t *testing.T) {
	p := mapping.MouseProfile{Axis: input.RelX, Slope: 0.0006}
	assert.Equal(t, int32(1), p.Velocity(4000-2000))
	assert.Equal(t, int32(4), p.Velocity(10000-2000))
	assert.Equal(t, int32(-1), p.Velocity(-4000+2000))
	assert.Equal(t, int32(0), p.Velocity(0))

	off := mapping.MouseProfile{Axis: input.RelX, Slope: 0.001, Offset: 2}
	assert.Equal(t, int32(3), off.Velocity(1500))

	steep := mapping.MouseProfile{Axis: input.RelX, Slope: 1e6}
	assert.Equal(t, int32(math.MaxInt32), steep.Velocity(32767))
	assert.Equal(t, int32(math.MinInt32), steep.Velocity(-32768))
	assert.Equal(t, int32(0), mapping.MouseProfile{Slope: math.NaN()}.Velocity(10))
}

func TestMouseMap(t *testing.T) {
	m := mapping.NewMouseMap([]mapping.MouseEntry{
		{Input: mapping.ThresholdedAxis{Axis: input.AbsX, Dir: mapping.Greater}, Profile: mapping.MouseProfile{Axis: input.RelX, Slope: 0.0006}},
		{Input: mapping.ThresholdedAxis{Axis: input.AbsX, Dir: mapping.Lesser}, Profile: mapping.MouseProfile{Axis: input.RelX, Slope: 0.0006}},
	}, stickThresholds)

	_, _, ok := m.HandleEvent(abs(input.AbsX, 1000))
	assert.False(t, ok)

	p, s, ok := m.HandleEvent(abs(input.AbsX, 4000))
	require.True(t, ok)
	assert.Nil(t, s)
	assert.Equal(t, output.AxisValue{Axis: input.RelX, Value: 1}, velocity(t, p))

	p, _, ok = m.HandleEvent(abs(input.AbsX, 11000))
	require.True(t, ok, "same direction refreshes the velocity")
	assert.Equal(t, int32(5), velocity(t, p).Value)

	p, s, ok = m.HandleEvent(abs(input.AbsX, -8000))
	require.True(t, ok)
	assert.Equal(t, int32(-3), velocity(t, p).Value)
	require.NotNil(t, s)
	assert.Equal(t, output.AxisValue{Axis: input.RelX}, velocity(t, s))

	p, s, ok = m.HandleEvent(abs(input.AbsX, 0))
	require.True(t, ok)
	assert.Nil(t, s)
	assert.Equal(t, output.AxisValue{Axis: input.RelX}, velocity(t, p))

	_, _, ok = m.HandleEvent(abs(input.AbsX, 0))
	assert.False(t, ok)
	_, _, ok = m.HandleEvent(down(input.BtnSouth))
	assert.False(t, ok)
}
