package mapfile

import (
	"fmt"
	"slices"

	in "github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/mapping"
	"github.com/Alia5/padmapper/output"
)

const (
	JoyconDevice = "Nintendo Switch Combined Joy-Cons"
	ProDevice    = "Nintendo Switch Pro Controller"

	// MouseSensitivity brings full stick deflection down to a usable pointer
	// speed at the default 20ms pulse interval.
	MouseSensitivity = 0.0006
)

var presets = map[string]func(ext string) *mapping.Configuration{
	"joycon":       func(ext string) *mapping.Configuration { return joycon("joycon-blank" + ext) },
	"joycon-blank": func(ext string) *mapping.Configuration { return blank(JoyconDevice, 6000, "joycon"+ext) },
	"joycon-mouse": func(ext string) *mapping.Configuration { return joyconMouse("joycon" + ext) },
	"pro":          func(ext string) *mapping.Configuration { return pro("pro-blank" + ext) },
	"pro-blank":    func(ext string) *mapping.Configuration { return blank(ProDevice, 2000, "pro"+ext) },
}

// PresetNames lists the built-in presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Preset builds a built-in configuration. Switch targets name sibling presets
// with the extension ext (".json", ".yaml", ".toml") so a set written into one
// directory links up.
func Preset(name, ext string) (*mapping.Configuration, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	return build(ext), nil
}

func key(c in.KeyCode) mapping.Input { return mapping.KeyInput(c) }

func axis(a in.AbsAxis, d mapping.ThresholdType) mapping.Input { return mapping.AxisInput(a, d) }

func chord(a mapping.Action, ins ...mapping.Input) mapping.ChordEntry {
	return mapping.ChordEntry{Inputs: ins, Action: a}
}

func thresholds(stick, rstick int32, axes ...in.AbsAxis) []mapping.AxisThresholdEntry {
	var out []mapping.AxisThresholdEntry
	add := func(a in.AbsAxis, v int32) {
		out = append(out,
			mapping.AxisThresholdEntry{Axis: a, Threshold: mapping.AxisThreshold{Dir: mapping.Greater, Value: v}},
			mapping.AxisThresholdEntry{Axis: a, Threshold: mapping.AxisThreshold{Dir: mapping.Lesser, Value: -v}},
		)
	}
	add(in.AbsX, stick)
	add(in.AbsY, stick)
	add(in.AbsRX, rstick)
	add(in.AbsRY, rstick)
	for _, a := range axes {
		add(a, 1)
	}
	return out
}

func leftStickMouse() []mapping.MouseEntry {
	p := func(a in.AbsAxis, d mapping.ThresholdType, r in.RelAxis) mapping.MouseEntry {
		return mapping.MouseEntry{
			Input:   mapping.ThresholdedAxis{Axis: a, Dir: d},
			Profile: mapping.MouseProfile{Axis: r, Slope: MouseSensitivity},
		}
	}
	return []mapping.MouseEntry{
		p(in.AbsX, mapping.Greater, in.RelX),
		p(in.AbsX, mapping.Lesser, in.RelX),
		p(in.AbsY, mapping.Greater, in.RelY),
		p(in.AbsY, mapping.Lesser, in.RelY),
	}
}

// The shoulder buttons hold keyboard modifiers and plus repeats the last chord.
func shoulderModifiers() []mapping.ModifierEntry {
	return []mapping.ModifierEntry{
		{Input: key(in.BtnTR2), Action: mapping.ToggleKeys(in.KeyLeftShift)},
		{Input: key(in.BtnTL2), Action: mapping.ToggleKeys(in.KeyLeftCtrl)},
		{Input: key(in.BtnTL), Action: mapping.ToggleKeys(in.KeyLeftMeta)},
		{Input: key(in.BtnTR), Action: mapping.ToggleKeys(in.KeyLeftAlt)},
		{Input: key(in.BtnStart), Action: mapping.RepeatLastChord{As: output.KindToggle}},
	}
}

type dpad struct{ up, down, left, right mapping.Input }

// alphabet is the shared chord layout: face buttons and the d-pad spell
// letters, the d-pad plus right stick spells digits and navigation.
func alphabet(d dpad, switchTo string) ([]mapping.Input, []mapping.ChordEntry) {
	b, y, x, a := key(in.BtnSouth), key(in.BtnWest), key(in.BtnNorth), key(in.BtnEast)
	up, down, left, right := d.up, d.down, d.left, d.right

	rsu, rsd := axis(in.AbsRY, mapping.Lesser), axis(in.AbsRY, mapping.Greater)
	rsr, rsl := axis(in.AbsRX, mapping.Greater), axis(in.AbsRX, mapping.Lesser)
	rsc, lsc := key(in.BtnThumbR), key(in.BtnThumbL)
	minus, home, capture := key(in.BtnSelect), key(in.BtnMode), key(in.BtnZ)
	p := mapping.PulseKeys

	inputs := []mapping.Input{b, y, x, a, right, left, up, down, rsu, rsd, rsr, rsl, rsc, lsc, minus, home, capture}
	chords := []mapping.ChordEntry{
		chord(mapping.SwitchConfig{Path: switchTo}, capture, a, b, x, y),

		chord(p(in.KeyApostrophe), up, rsd),
		chord(p(in.Key0), right),
		chord(p(in.Key1), right, rsu),
		chord(p(in.Key2), right, rsu, rsr),
		chord(p(in.Key3), right, rsr),
		chord(p(in.Key4), right, rsr, rsd),
		chord(p(in.Key5), right, rsd),
		chord(p(in.Key6), right, rsd, rsl),
		chord(p(in.Key7), right, rsl),
		chord(p(in.Key8), right, rsl, rsu),
		chord(p(in.Key9), right, rsc),

		chord(p(in.KeyA), down, b),
		chord(p(in.KeyB), up, b),
		chord(p(in.KeyC), right, a),
		chord(p(in.KeyD), down),
		chord(p(in.KeyE), up, x),
		chord(p(in.KeyF), a, b),
		chord(p(in.KeyG), x, y),
		chord(p(in.KeyH), y),
		chord(p(in.KeyI), right, x),
		chord(p(in.KeyJ), b),
		chord(p(in.KeyK), x),
		chord(p(in.KeyL), a),
		chord(p(in.KeyM), right, a, b),
		chord(p(in.KeyN), y, b),
		chord(p(in.KeyO), right, b),
		chord(p(in.KeyP), down, a),
		chord(p(in.KeyQ), right, x, y),
		chord(p(in.KeyR), down, y, b),
		chord(p(in.KeyS), right, y),
		chord(p(in.KeyT), x, a),
		chord(p(in.KeyU), up),
		chord(p(in.KeyV), up, y),
		chord(p(in.KeyW), up, a),
		chord(p(in.KeyX), down, x),
		chord(p(in.KeyY), down, y),
		chord(p(in.KeyZ), right, a, x),

		chord(p(in.KeyLeftBrace), minus, a),
		chord(p(in.KeyRightBrace), minus, y),
		chord(p(in.KeySemicolon), minus, x, a),
		chord(p(in.KeyEqual), minus, b),
		chord(p(in.KeyComma), minus, a, b),
		chord(p(in.KeyDot), minus, b, y),
		chord(p(in.KeyMinus), minus, x),
		chord(p(in.KeySlash), minus, x, y),
		chord(p(in.KeyBackslash), up, rsl),
		chord(p(in.KeySpace), up, rsr),

		chord(p(in.KeyUp), left, rsu),
		chord(p(in.KeyDown), left, rsd),
		chord(p(in.KeyLeft), left, rsl),
		chord(p(in.KeyRight), left, rsr),

		chord(p(in.KeyBackspace), minus),
		chord(p(in.KeyEnter), home),
		chord(p(in.KeyEsc), capture),
		chord(p(in.KeyTab), capture, home),

		chord(p(in.BtnLeft), lsc),
		chord(mapping.ToggleKeys(in.BtnLeft), lsc, b),
		chord(p(in.BtnRight), lsc, y),
		chord(mapping.ToggleKeys(in.BtnRight), lsc, b, y),
	}
	return inputs, chords
}

func joycon(switchTo string) *mapping.Configuration {
	ins, chords := alphabet(dpad{
		up:    key(in.BtnDpadUp),
		down:  key(in.BtnDpadDown),
		left:  key(in.BtnDpadLeft),
		right: key(in.BtnDpadRight),
	}, switchTo)
	return &mapping.Configuration{
		DeviceName:  JoyconDevice,
		Thresholds:  thresholds(6000, 16000),
		ChordInputs: ins,
		Chords:      chords,
		Modifiers:   shoulderModifiers(),
		Mouse:       leftStickMouse(),
	}
}

// pro is the joycon layout with the d-pad read from the hat axes.
func pro(switchTo string) *mapping.Configuration {
	ins, chords := alphabet(dpad{
		up:    axis(in.AbsHat0Y, mapping.Lesser),
		down:  axis(in.AbsHat0Y, mapping.Greater),
		left:  axis(in.AbsHat0X, mapping.Lesser),
		right: axis(in.AbsHat0X, mapping.Greater),
	}, switchTo)
	return &mapping.Configuration{
		DeviceName:  ProDevice,
		Thresholds:  thresholds(2000, 16000, in.AbsHat0X, in.AbsHat0Y),
		ChordInputs: ins,
		Chords:      chords,
		Modifiers:   shoulderModifiers(),
		Mouse:       leftStickMouse(),
	}
}

// blank passes nothing through except the chord that switches back.
func blank(device string, stick int32, switchTo string) *mapping.Configuration {
	capture, a, b, x, y := key(in.BtnZ), key(in.BtnEast), key(in.BtnSouth), key(in.BtnNorth), key(in.BtnWest)
	return &mapping.Configuration{
		DeviceName: device,
		Thresholds: thresholds(stick, 16000),
		Chords:     []mapping.ChordEntry{chord(mapping.SwitchConfig{Path: switchTo}, capture, a, b, x, y)},
	}
}

// joyconMouse drives only the pointer: the left stick moves it, the right
// stick scrolls and the face buttons click.
func joyconMouse(switchTo string) *mapping.Configuration {
	capture, home := key(in.BtnZ), key(in.BtnMode)
	wheel := func(v int32) mapping.Action {
		return mapping.Out(output.Toggle{Axes: output.AxisList{{Axis: in.RelWheel, Value: v}}})
	}
	return &mapping.Configuration{
		DeviceName: JoyconDevice,
		Thresholds: thresholds(6000, 16000),
		Chords: []mapping.ChordEntry{
			chord(mapping.SwitchConfig{Path: switchTo}, capture, home),
			chord(mapping.PulseKeys(in.BtnMiddle), key(in.BtnNorth)),
			chord(mapping.ToggleKeys(in.BtnLeft), key(in.BtnWest)),
		},
		Modifiers: []mapping.ModifierEntry{
			{Input: key(in.BtnSouth), Action: mapping.ToggleKeys(in.BtnLeft)},
			{Input: key(in.BtnEast), Action: mapping.ToggleKeys(in.BtnRight)},
			{Input: axis(in.AbsRY, mapping.Lesser), Action: wheel(1)},
			{Input: axis(in.AbsRY, mapping.Greater), Action: wheel(-1)},
		},
		Mouse: leftStickMouse(),
	}
}
