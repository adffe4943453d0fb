package mapping_test

import (
	"testing"

	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/mapping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPassing(t *testing.T) {
	tests := []struct {
		name string
		t    mapping.AxisThreshold
		v    int32
		want bool
	}{
		{"greater above", mapping.AxisThreshold{Dir: mapping.Greater, Value: 2000}, 2005, true},
		{"greater on boundary", mapping.AxisThreshold{Dir: mapping.Greater, Value: 2000}, 2000, true},
		{"greater below", mapping.AxisThreshold{Dir: mapping.Greater, Value: 2000}, 1995, false},
		{"lesser below", mapping.AxisThreshold{Dir: mapping.Lesser, Value: -2000}, -2005, true},
		{"lesser on boundary", mapping.AxisThreshold{Dir: mapping.Lesser, Value: -2000}, -2000, true},
		{"lesser above", mapping.AxisThreshold{Dir: mapping.Lesser, Value: -2000}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.t.IsPassing(tt.v))
		})
	}
}

func TestLooseAdd(t *testing.T) {
	ts := mapping.NewAxisThresholds(mapping.AxisThreshold{Dir: mapping.Greater, Value: 30})

	ts.LooseAdd(mapping.AxisThreshold{Dir: mapping.Greater, Value: 15})
	assert.Equal(t, int32(15), ts.First.Value, "looser greater replaces")

	ts.LooseAdd(mapping.AxisThreshold{Dir: mapping.Greater, Value: 20})
	assert.Equal(t, int32(15), ts.First.Value, "stricter greater is ignored")

	ts.LooseAdd(mapping.AxisThreshold{Dir: mapping.Lesser, Value: -30})
	assert.Equal(t, int32(15), ts.First.Value, "opposite direction does not interact")
	require.NotNil(t, ts.Second)
	assert.Equal(t, int32(-30), ts.Second.Value)

	ts.LooseAdd(mapping.AxisThreshold{Dir: mapping.Lesser, Value: -15})
	assert.Equal(t, int32(-15), ts.Second.Value)

	ts.LooseAdd(mapping.AxisThreshold{Dir: mapping.Lesser, Value: -45})
	assert.Equal(t, int32(-15), ts.Second.Value)
	assert.Equal(t, int32(15), ts.First.Value)
}

func TestLooseMatchIdempotent(t *testing.T) {
	th := mapping.AxisThreshold{Dir: mapping.Lesser, Value: -100}
	for range 3 {
		assert.True(t, th.LooseMatch(mapping.AxisThreshold{Dir: mapping.Lesser, Value: -500}))
		assert.Equal(t, int32(-100), th.Value)
	}
	assert.False(t, th.LooseMatch(mapping.AxisThreshold{Dir: mapping.Greater, Value: 1}))
	assert.Equal(t, int32(-100), th.Value)
}

func TestAllAxisThresholds(t *testing.T) {
	all := mapping.NewAllAxisThresholds([]mapping.AxisThresholdEntry{
		{Axis: input.AbsRX, Threshold: mapping.AxisThreshold{Dir: mapping.Greater, Value: 1000}},
		{Axis: input.AbsX, Threshold: mapping.AxisThreshold{Dir: mapping.Greater, Value: 2000}},
		{Axis: input.AbsX, Threshold: mapping.AxisThreshold{Dir: mapping.Lesser, Value: -2000}},
		{Axis: input.AbsX, Threshold: mapping.AxisThreshold{Dir: mapping.Greater, Value: 3000}},
	})

	got, boundary, ok := all.GetPassingWithState(input.AbsAxisEvent{Axis: input.AbsX, Value: 4000})
	require.True(t, ok)
	assert.Equal(t, mapping.ThresholdedAxis{Axis: input.AbsX, Dir: mapping.Greater}, got)
	assert.Equal(t, int32(2000), boundary)

	got, boundary, ok = all.GetPassingWithState(input.AbsAxisEvent{Axis: input.AbsX, Value: -4000})
	require.True(t, ok)
	assert.Equal(t, mapping.Lesser, got.Dir)
	assert.Equal(t, int32(-2000), boundary)

	_, ok = all.GetPassing(input.AbsAxisEvent{Axis: input.AbsX, Value: 0})
	assert.False(t, ok, "deadzone")
	_, ok = all.GetPassing(input.AbsAxisEvent{Axis: input.AbsY, Value: 30000})
	assert.False(t, ok, "unconfigured axis")

	assert.True(t, all.HasThreshold(input.AbsRX))
	assert.False(t, all.HasThreshold(input.AbsY))
	assert.Equal(t, []input.AbsAxis{input.AbsX, input.AbsRX}, all.Axes())
}

func TestThresholdedAxisNotation(t *testing.T) {
	ta, err := mapping.ParseThresholdedAxis("ABS_RY-")
	require.NoError(t, err)
	assert.Equal(t, mapping.ThresholdedAxis{Axis: input.AbsRY, Dir: mapping.Lesser}, ta)
	assert.Equal(t, "ABS_RY-", ta.String())
	assert.Equal(t, "ABS_RY+", ta.Opposite().String())

	g, l := mapping.AllPossible(input.AbsX)
	assert.Equal(t, g.Opposite(), l)

	_, err = mapping.ParseThresholdedAxis("ABS_X")
	assert.Error(t, err)

	in, err := mapping.ParseInput("BTN_SOUTH")
	require.NoError(t, err)
	assert.Equal(t, mapping.KeyInput(input.BtnSouth), in)

	in, err = mapping.ParseInput("ABS_HAT0X+")
	require.NoError(t, err)
	assert.Equal(t, mapping.AxisInput(input.AbsHat0X, mapping.Greater), in)
}
