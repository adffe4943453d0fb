package mapping

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Alia5/padmapper/input"
)

// ThresholdType is the direction an axis must cross a boundary in.
type ThresholdType uint8

const (
	Greater ThresholdType = iota
	Lesser
)

// Opposite returns the other direction.
func (t ThresholdType) Opposite() ThresholdType {
	if t == Greater {
		return Lesser
	}
	return Greater
}

// String returns the suffix used in mapping files: "+" or "-".
func (t ThresholdType) String() string {
	if t == Lesser {
		return "-"
	}
	return "+"
}

// ParseThresholdType accepts "+", "-", "greater" or "lesser".
func ParseThresholdType(s string) (ThresholdType, error) {
	switch strings.ToLower(s) {
	case "+", "greater", "gt":
		return Greater, nil
	case "-", "lesser", "lt":
		return Lesser, nil
	}
	return 0, fmt.Errorf("unknown threshold direction %q", s)
}

// AxisThreshold is a boundary in one direction.
type AxisThreshold struct {
	Dir   ThresholdType
	Value int32
}

// IsPassing reports whether v lies on or beyond the boundary.
func (t AxisThreshold) IsPassing(v int32) bool {
	if t.Dir == Greater {
		return v >= t.Value
	}
	return v <= t.Value
}

// LooseMatch merges other into t when both point the same way, keeping the
// boundary that triggers first. It reports false for opposite directions and
// leaves t unchanged.
func (t *AxisThreshold) LooseMatch(other AxisThreshold) bool {
	if t.Dir != other.Dir {
		return false
	}
	if t.Dir == Greater {
		t.Value = min(t.Value, other.Value)
	} else {
		t.Value = max(t.Value, other.Value)
	}
	return true
}

// AxisThresholds holds at most one boundary per direction for an axis.
type AxisThresholds struct {
	First  AxisThreshold
	Second *AxisThreshold
}

// NewAxisThresholds starts a set with a single boundary.
func NewAxisThresholds(t AxisThreshold) AxisThresholds { return AxisThresholds{First: t} }

// LooseAdd merges t into whichever slot shares its direction, or fills the
// empty second slot.
func (a *AxisThresholds) LooseAdd(t AxisThreshold) {
	if a.First.LooseMatch(t) {
		return
	}
	if a.Second != nil {
		a.Second.LooseMatch(t)
		return
	}
	a.Second = &t
}

func (a AxisThresholds) passing(v int32) (AxisThreshold, bool) {
	if a.First.IsPassing(v) {
		return a.First, true
	}
	if a.Second != nil && a.Second.IsPassing(v) {
		return *a.Second, true
	}
	return AxisThreshold{}, false
}

// ThresholdedAxis is an absolute axis reduced to a digital input: "the axis is
// past its boundary in direction Dir".
type ThresholdedAxis struct {
	Axis input.AbsAxis
	Dir  ThresholdType
}

// Opposite returns the same axis in the other direction.
func (t ThresholdedAxis) Opposite() ThresholdedAxis {
	return ThresholdedAxis{Axis: t.Axis, Dir: t.Dir.Opposite()}
}

func (t ThresholdedAxis) String() string { return t.Axis.String() + t.Dir.String() }

// ParseThresholdedAxis parses "ABS_X+" or "ABS_RY-".
func ParseThresholdedAxis(s string) (ThresholdedAxis, error) {
	if len(s) < 2 {
		return ThresholdedAxis{}, fmt.Errorf("invalid thresholded axis %q", s)
	}
	dir, err := ParseThresholdType(s[len(s)-1:])
	if err != nil {
		return ThresholdedAxis{}, fmt.Errorf("invalid thresholded axis %q: %w", s, err)
	}
	axis, err := input.ParseAbsAxis(s[:len(s)-1])
	if err != nil {
		return ThresholdedAxis{}, err
	}
	return ThresholdedAxis{Axis: axis, Dir: dir}, nil
}

// AllPossible returns the Greater and Lesser identities of axis.
func AllPossible(axis input.AbsAxis) (ThresholdedAxis, ThresholdedAxis) {
	return ThresholdedAxis{Axis: axis, Dir: Greater}, ThresholdedAxis{Axis: axis, Dir: Lesser}
}

// AxisThresholdEntry is one configured boundary.
type AxisThresholdEntry struct {
	Axis      input.AbsAxis
	Threshold AxisThreshold
}

// AllAxisThresholds is the merged boundary table of a configuration. It is
// read-only after construction and shared by the engines.
type AllAxisThresholds struct {
	m map[input.AbsAxis]*AxisThresholds
}

// NewAllAxisThresholds merges entries per axis with LooseAdd.
func NewAllAxisThresholds(entries []AxisThresholdEntry) AllAxisThresholds {
	m := make(map[input.AbsAxis]*AxisThresholds)
	for _, e := range entries {
		if stored, ok := m[e.Axis]; ok {
			stored.LooseAdd(e.Threshold)
			continue
		}
		t := NewAxisThresholds(e.Threshold)
		m[e.Axis] = &t
	}
	return AllAxisThresholds{m: m}
}

// GetPassing returns the identity the event's value currently passes, if any.
func (a AllAxisThresholds) GetPassing(ev input.AbsAxisEvent) (ThresholdedAxis, bool) {
	t, _, ok := a.GetPassingWithState(ev)
	return t, ok
}

// GetPassingWithState is GetPassing plus the boundary that was crossed.
func (a AllAxisThresholds) GetPassingWithState(ev input.AbsAxisEvent) (ThresholdedAxis, int32, bool) {
	ts, ok := a.m[ev.Axis]
	if !ok {
		return ThresholdedAxis{}, 0, false
	}
	t, ok := ts.passing(ev.Value)
	if !ok {
		return ThresholdedAxis{}, 0, false
	}
	return ThresholdedAxis{Axis: ev.Axis, Dir: t.Dir}, t.Value, true
}

// HasThreshold reports whether any boundary is configured for axis.
func (a AllAxisThresholds) HasThreshold(axis input.AbsAxis) bool {
	_, ok := a.m[axis]
	return ok
}

// Thresholds returns the merged boundaries of axis.
func (a AllAxisThresholds) Thresholds(axis input.AbsAxis) (AxisThresholds, bool) {
	ts, ok := a.m[axis]
	if !ok {
		return AxisThresholds{}, false
	}
	return *ts, true
}

// Axes lists the axes with boundaries in ascending order.
func (a AllAxisThresholds) Axes() []input.AbsAxis {
	return slices.Sorted(maps.Keys(a.m))
}
