package mapping

import (
	"log/slog"
	"slices"

	"github.com/Alia5/padmapper/attrset"
	"github.com/Alia5/padmapper/input"
)

// Chord is a set of simultaneously held inputs.
type Chord = attrset.Subset[Input]

// ChordEntry binds a chord to an action.
type ChordEntry struct {
	Inputs []Input
	Action Action
}

// ChordMap accumulates held inputs and resolves the chord when the first of
// them is released. After a chord resolves, releasing the remaining inputs
// does nothing until a new input is pressed.
type ChordMap struct {
	universe   *attrset.Universe[Input]
	thresholds AllAxisThresholds
	table      map[attrset.Key]Action
	entries    []chordSlot
	logger     *slog.Logger

	state     *Chord
	prevChord *Chord
	primed    bool
}

type chordSlot struct {
	chord *Chord
	key   attrset.Key
}

// NewChordMap builds the engine. The universe is seed plus every input named
// in entries; a later entry for the same chord replaces an earlier one.
func NewChordMap(seed []Input, entries []ChordEntry, thresholds AllAxisThresholds, logger *slog.Logger) *ChordMap {
	if logger == nil {
		logger = slog.Default()
	}
	items := make([]Input, 0, len(seed)+2*len(entries))
	items = append(items, seed...)
	for _, e := range entries {
		items = append(items, e.Inputs...)
	}
	u := attrset.New(items)

	c := &ChordMap{
		universe:   u,
		thresholds: thresholds,
		table:      make(map[attrset.Key]Action, len(entries)),
		logger:     logger,
		state:      u.EmptySubset(),
		prevChord:  u.EmptySubset(),
		primed:     true,
	}
	for _, e := range entries {
		chord := u.SubsetWith(e.Inputs...)
		k := chord.Key()
		if _, dup := c.table[k]; !dup {
			c.entries = append(c.entries, chordSlot{chord: chord, key: k})
		}
		c.table[k] = e.Action
	}
	return c
}

// Universe returns the inputs this engine tracks.
func (c *ChordMap) Universe() *attrset.Universe[Input] { return c.universe }

// Len returns the number of distinct chords.
func (c *ChordMap) Len() int { return len(c.entries) }

// HandleEvent feeds one event and returns the resolved action, if any.
func (c *ChordMap) HandleEvent(ev input.Event) (Action, bool) {
	switch e := ev.(type) {
	case input.KeyEvent:
		return c.handleKey(e)
	case input.AbsAxisEvent:
		return c.handleAxis(e)
	}
	return nil, false
}

func (c *ChordMap) handleKey(ev input.KeyEvent) (Action, bool) {
	in := KeyInput(ev.Code)
	if ev.State == input.Down {
		if c.state.TryInsert(in) == nil {
			c.primed = true
		}
		return nil, false
	}
	act, ok := c.resolve()
	c.state.Remove(in)
	return act, ok
}

func (c *ChordMap) handleAxis(ev input.AbsAxisEvent) (Action, bool) {
	g, l := AllPossible(ev.Axis)
	greater, lesser := FromThresholded(g), FromThresholded(l)
	if !c.universe.Contains(greater) && !c.universe.Contains(lesser) {
		return nil, false
	}

	var (
		act Action
		ok  bool
	)
	if passing, isPassing := c.thresholds.GetPassing(ev); isPassing {
		in := FromThresholded(passing)
		if c.state.Contains(in) {
			return nil, false
		}
		if c.state.Contains(greater) || c.state.Contains(lesser) {
			act, ok = c.resolve()
			c.state.Remove(FromThresholded(passing.Opposite()))
		}
		c.primed = true
		_ = c.state.TryInsert(in)
		return act, ok
	}

	for _, in := range [2]Input{greater, lesser} {
		if !c.state.Contains(in) {
			continue
		}
		if ok {
			c.logger.Debug("chord action discarded on axis recede", "axis", ev.Axis.String(), "action", act.String())
		}
		act, ok = c.resolve()
		c.state.Remove(in)
	}
	return act, ok
}

// resolve looks up the held chord when primed. A hit unprimes the engine and,
// unless it is a repeat, becomes the previous chord.
func (c *ChordMap) resolve() (Action, bool) {
	if !c.primed {
		return nil, false
	}
	act, ok := c.table[c.state.Key()]
	if !ok {
		return nil, false
	}
	if _, repeat := act.(RepeatLastChord); !repeat {
		_ = c.prevChord.CopyFrom(c.state)
	}
	c.primed = false
	return act, true
}

// ClearState drops every held input without resolving.
func (c *ChordMap) ClearState() { c.state.Clear() }

// Held returns the currently held inputs.
func (c *ChordMap) Held() []Input {
	return slices.Collect(c.state.Items())
}

// PrevAction returns the action of the last resolved chord.
func (c *ChordMap) PrevAction() (Action, bool) {
	act, ok := c.table[c.prevChord.Key()]
	return act, ok
}

// Actions calls fn for every bound chord in table order.
func (c *ChordMap) Actions(fn func(inputs []Input, a Action)) {
	for _, s := range c.entries {
		fn(slices.Collect(s.chord.Items()), c.table[s.key])
	}
}

// RewriteActions replaces every bound action with fn's result. The first
// error stops the rewrite.
func (c *ChordMap) RewriteActions(fn func(Action) (Action, error)) error {
	for _, s := range c.entries {
		a, err := fn(c.table[s.key])
		if err != nil {
			return err
		}
		c.table[s.key] = a
	}
	return nil
}
