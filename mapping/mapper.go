// Package mapping turns controller input events into keyboard and mouse
// output actions.
//
// A Mapper owns a graph of configurations linked by SwitchConfig actions.
// Each configuration has three engines fed in a fixed order: a ChordMap
// (combinations resolved on release), a ModifierMap (direct bindings) and a
// MouseMap (stick deflection to pointer velocity). The Mapper is not safe for
// concurrent use; all events must come from one goroutine.
package mapping

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/output"
)

// ErrDeviceMismatch is returned when linked configurations name different devices.
var ErrDeviceMismatch = errors.New("configuration device does not match")

// Emitter receives output actions, typically an *output.Device.
type Emitter interface {
	Send(a output.Action) error
}

// Observer is notified of mapper activity. Calls happen on the mapper's
// goroutine and must not block.
type Observer interface {
	OnEvent(ev input.Event)
	OnAction(a output.Action)
	OnConfigSwitch(path string)
}

// Observers fans out to several observers.
type Observers []Observer

func (o Observers) OnEvent(ev input.Event) {
	for _, x := range o {
		x.OnEvent(ev)
	}
}

func (o Observers) OnAction(a output.Action) {
	for _, x := range o {
		x.OnAction(a)
	}
}

func (o Observers) OnConfigSwitch(path string) {
	for _, x := range o {
		x.OnConfigSwitch(path)
	}
}

type engines struct {
	path      string
	chords    *ChordMap
	modifiers *ModifierMap
	mouse     *MouseMap
}

// Mapper routes events through the active configuration's engines and
// dispatches the resulting actions.
type Mapper struct {
	device    Emitter
	logger    *slog.Logger
	observer  Observer
	inputName string

	configs []engines
	index   map[string]int
	active  int
}

// Option configures a Mapper.
type Option func(*Mapper)

func WithLogger(l *slog.Logger) Option {
	return func(m *Mapper) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(m *Mapper) { m.observer = o }
}

// NewMapperFromFile loads the configuration at path and, breadth first, every
// configuration reachable through SwitchConfig actions. Relative switch paths
// resolve against the directory of the file that declares them. Every
// configuration must name the same device. The first one is active.
func NewMapperFromFile(device Emitter, path string, loader Loader, opts ...Option) (*Mapper, error) {
	m := &Mapper{
		device: device,
		logger: slog.Default(),
		index:  make(map[string]int),
	}
	for _, o := range opts {
		o(m)
	}

	root, err := canonicalize(path)
	if err != nil {
		return nil, err
	}
	queue := []string{root}
	for i := 0; i < len(queue); i++ {
		p := queue[i]
		if _, loaded := m.index[p]; loaded {
			continue
		}
		cfg, err := loader.Load(p)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		if len(m.configs) == 0 {
			m.inputName = cfg.DeviceName
		} else if cfg.DeviceName != m.inputName {
			return nil, fmt.Errorf("%s names %q, expected %q: %w", p, cfg.DeviceName, m.inputName, ErrDeviceMismatch)
		}

		e := m.build(p, cfg)
		dir := filepath.Dir(p)
		rewrite := func(a Action) (Action, error) {
			sw, ok := a.(SwitchConfig)
			if !ok {
				return a, nil
			}
			target := sw.Path
			if !filepath.IsAbs(target) {
				target = filepath.Join(dir, target)
			}
			target, err := canonicalize(target)
			if err != nil {
				return nil, fmt.Errorf("%s: switch target: %w", p, err)
			}
			if _, loaded := m.index[target]; !loaded {
				queue = append(queue, target)
			}
			return SwitchConfig{Path: target}, nil
		}
		if err := e.chords.RewriteActions(rewrite); err != nil {
			return nil, err
		}
		if err := e.modifiers.RewriteActions(rewrite); err != nil {
			return nil, err
		}

		m.index[p] = len(m.configs)
		m.configs = append(m.configs, e)
		m.logger.Debug("loaded configuration", "path", p,
			"chords", e.chords.Len(), "modifiers", e.modifiers.Len(), "mouse", e.mouse.Len())
	}
	return m, nil
}

func (m *Mapper) build(path string, cfg *Configuration) engines {
	th := NewAllAxisThresholds(cfg.Thresholds)
	return engines{
		path:      path,
		chords:    NewChordMap(cfg.ChordInputs, cfg.Chords, th, m.logger),
		modifiers: NewModifierMap(cfg.Modifiers, th),
		mouse:     NewMouseMap(cfg.Mouse, th),
	}
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}

// InputName returns the device name shared by every loaded configuration.
func (m *Mapper) InputName() string { return m.inputName }

// ActiveConfig returns the canonical path of the active configuration.
func (m *Mapper) ActiveConfig() string { return m.configs[m.active].path }

// Configs returns the canonical paths of every loaded configuration in load order.
func (m *Mapper) Configs() []string {
	out := make([]string, len(m.configs))
	for i, e := range m.configs {
		out[i] = e.path
	}
	return out
}

// SetObserver replaces the activity observer; nil disables it.
func (m *Mapper) SetObserver(o Observer) { m.observer = o }

// HandleEvent feeds one input event to the chord, modifier and mouse engines
// of the active configuration, in that order, dispatching what they return.
// An engine that switches configuration hands the rest of the event to the
// new one.
func (m *Mapper) HandleEvent(ev input.Event) {
	if m.observer != nil {
		m.observer.OnEvent(ev)
	}
	if a, ok := m.configs[m.active].chords.HandleEvent(ev); ok {
		m.HandleAction(a)
	}
	if p, s, ok := m.configs[m.active].modifiers.HandleEvent(ev); ok {
		m.HandleAction(p)
		if s != nil {
			m.HandleAction(s)
		}
	}
	if p, s, ok := m.configs[m.active].mouse.HandleEvent(ev); ok {
		m.HandleAction(p)
		if s != nil {
			m.HandleAction(s)
		}
	}
}

// HandleAction dispatches one action.
func (m *Mapper) HandleAction(a Action) {
	switch v := a.(type) {
	case Output:
		m.send(v.Action)
	case RepeatLastChord:
		prev, ok := m.configs[m.active].chords.PrevAction()
		if !ok {
			return
		}
		if out, ok := prev.(Output); ok {
			m.send(output.Convert(out.Action, v.As))
		}
	case SwitchConfig:
		m.switchConfig(v.Path)
	}
}

func (m *Mapper) switchConfig(path string) {
	idx, ok := m.index[path]
	if !ok {
		m.logger.Warn("unknown configuration", "path", path)
		return
	}
	m.active = idx
	m.logger.Info("switched configuration", "path", path)
	if m.observer != nil {
		m.observer.OnConfigSwitch(path)
	}
	m.Release()
}

// Release performs the hands-off reset: the active chord state is cleared
// without resolving and every output key and axis is released.
func (m *Mapper) Release() {
	m.configs[m.active].chords.ClearState()
	m.send(output.HandsOff())
}

func (m *Mapper) send(a output.Action) {
	if m.observer != nil {
		m.observer.OnAction(a)
	}
	if err := m.device.Send(a); err != nil {
		m.logger.Warn("failed to send output action", "action", a.String(), "error", err)
	}
}
