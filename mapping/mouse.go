package mapping

import (
	"math"

	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/output"
)

// MouseProfile is a linear velocity curve:
//
//	velocity = Slope * (value - boundary) + Offset
//
// truncated toward zero and clamped to the int32 range.
type MouseProfile struct {
	Axis   input.RelAxis
	Slope  float64
	Offset float64
}

// Velocity applies the curve to the distance past the boundary.
func (p MouseProfile) Velocity(delta int32) int32 {
	v := math.Trunc(p.Slope*float64(delta) + p.Offset)
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// Action holds the velocity for delta on the profile's axis.
func (p MouseProfile) Action(delta int32) Action {
	return Out(output.StateChange{Axes: output.AxisList{{Axis: p.Axis, Value: p.Velocity(delta)}}})
}

// Zeroed stops the profile's axis.
func (p MouseProfile) Zeroed() Action {
	return Out(output.StateChange{Axes: output.AxisList{{Axis: p.Axis}}})
}

// MouseEntry binds a thresholded axis to a profile.
type MouseEntry struct {
	Input   ThresholdedAxis
	Profile MouseProfile
}

// MouseMap turns stick deflection past a boundary into held pointer velocity.
// The velocity is refreshed on every sample while the same direction stays
// past its boundary.
type MouseMap struct {
	table      map[ThresholdedAxis]MouseProfile
	order      []ThresholdedAxis
	thresholds AllAxisThresholds
	last       map[input.AbsAxis]ThresholdType
}

func NewMouseMap(entries []MouseEntry, thresholds AllAxisThresholds) *MouseMap {
	m := &MouseMap{
		table:      make(map[ThresholdedAxis]MouseProfile, len(entries)),
		thresholds: thresholds,
		last:       make(map[input.AbsAxis]ThresholdType),
	}
	for _, e := range entries {
		if _, dup := m.table[e.Input]; !dup {
			m.order = append(m.order, e.Input)
		}
		m.table[e.Input] = e.Profile
	}
	return m
}

// Len returns the number of bound directions.
func (m *MouseMap) Len() int { return len(m.order) }

// Entries returns the bindings in table order.
func (m *MouseMap) Entries() []MouseEntry {
	out := make([]MouseEntry, len(m.order))
	for i, t := range m.order {
		out[i] = MouseEntry{Input: t, Profile: m.table[t]}
	}
	return out
}

// HandleEvent returns up to two actions; on a direction swap the secondary
// zeroes the previous direction's axis.
func (m *MouseMap) HandleEvent(ev input.Event) (primary, secondary Action, ok bool) {
	e, isAxis := ev.(input.AbsAxisEvent)
	if !isAxis {
		return nil, nil, false
	}

	prev, held := m.last[e.Axis]
	passing, boundary, isPassing := m.thresholds.GetPassingWithState(e)

	switch {
	case isPassing && held && prev == passing.Dir:
		p, ok := m.table[passing]
		if !ok {
			return nil, nil, false
		}
		return p.Action(e.Value - boundary), nil, true
	case isPassing && held:
		m.last[e.Axis] = passing.Dir
		var (
			newAct, oldAct Action
			newOK, oldOK   bool
		)
		if p, ok := m.table[passing]; ok {
			newAct, newOK = p.Action(e.Value-boundary), true
		}
		if p, ok := m.table[ThresholdedAxis{Axis: e.Axis, Dir: prev}]; ok {
			oldAct, oldOK = p.Zeroed(), true
		}
		return pair(newAct, newOK, oldAct, oldOK)
	case isPassing:
		m.last[e.Axis] = passing.Dir
		p, ok := m.table[passing]
		if !ok {
			return nil, nil, false
		}
		return p.Action(e.Value - boundary), nil, true
	case held:
		delete(m.last, e.Axis)
		p, ok := m.table[ThresholdedAxis{Axis: e.Axis, Dir: prev}]
		if !ok {
			return nil, nil, false
		}
		return p.Zeroed(), nil, true
	}
	return nil, nil, false
}
