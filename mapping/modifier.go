package mapping

import (
	"github.com/Alia5/padmapper/input"
)

// ModifierEntry binds a single input to an action.
type ModifierEntry struct {
	Input  Input
	Action Action
}

// ModifierMap fires a bound action on every press and release of a key, and
// on every threshold transition of an axis.
type ModifierMap struct {
	table      map[Input]Action
	order      []Input
	thresholds AllAxisThresholds
	last       map[input.AbsAxis]ThresholdType
}

func NewModifierMap(entries []ModifierEntry, thresholds AllAxisThresholds) *ModifierMap {
	m := &ModifierMap{
		table:      make(map[Input]Action, len(entries)),
		thresholds: thresholds,
		last:       make(map[input.AbsAxis]ThresholdType),
	}
	for _, e := range entries {
		if _, dup := m.table[e.Input]; !dup {
			m.order = append(m.order, e.Input)
		}
		m.table[e.Input] = e.Action
	}
	return m
}

// Len returns the number of bound inputs.
func (m *ModifierMap) Len() int { return len(m.order) }

// HandleEvent returns up to two actions. On a direction swap the primary
// activates the new direction and the secondary is the binding of the old
// one.
func (m *ModifierMap) HandleEvent(ev input.Event) (primary, secondary Action, ok bool) {
	switch e := ev.(type) {
	case input.KeyEvent:
		a, ok := m.table[KeyInput(e.Code)]
		return a, nil, ok
	case input.AbsAxisEvent:
		return m.handleAxis(e)
	}
	return nil, nil, false
}

func (m *ModifierMap) handleAxis(ev input.AbsAxisEvent) (Action, Action, bool) {
	prev, held := m.last[ev.Axis]
	passing, isPassing := m.thresholds.GetPassing(ev)

	switch {
	case isPassing && held && prev == passing.Dir:
		return nil, nil, false
	case isPassing && held:
		m.last[ev.Axis] = passing.Dir
		oldAct, oldOK := m.table[AxisInput(ev.Axis, prev)]
		newAct, newOK := m.table[FromThresholded(passing)]
		return pair(newAct, newOK, oldAct, oldOK)
	case isPassing:
		m.last[ev.Axis] = passing.Dir
		a, ok := m.table[FromThresholded(passing)]
		return a, nil, ok
	case held:
		delete(m.last, ev.Axis)
		a, ok := m.table[AxisInput(ev.Axis, prev)]
		return a, nil, ok
	}
	return nil, nil, false
}

// Actions calls fn for every binding in table order.
func (m *ModifierMap) Actions(fn func(in Input, a Action)) {
	for _, in := range m.order {
		fn(in, m.table[in])
	}
}

// RewriteActions replaces every bound action with fn's result.
func (m *ModifierMap) RewriteActions(fn func(Action) (Action, error)) error {
	for _, in := range m.order {
		a, err := fn(m.table[in])
		if err != nil {
			return err
		}
		m.table[in] = a
	}
	return nil
}

// pair orders a swap result: the new action first when bound, otherwise the
// old one alone.
func pair(newAct Action, newOK bool, oldAct Action, oldOK bool) (Action, Action, bool) {
	switch {
	case newOK && oldOK:
		return newAct, oldAct, true
	case newOK:
		return newAct, nil, true
	case oldOK:
		return oldAct, nil, true
	}
	return nil, nil, false
}
