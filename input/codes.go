package input

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// KeyCode is a Linux evdev EV_KEY code (keyboard keys and buttons).
type KeyCode uint16

// AbsAxis is a Linux evdev EV_ABS code.
type AbsAxis uint16

// RelAxis is a Linux evdev EV_REL code.
type RelAxis uint16

// Linux evdev event types
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvRel uint16 = 0x02
	EvAbs uint16 = 0x03
	EvMsc uint16 = 0x04

	SynReport  uint16 = 0
	SynDropped uint16 = 3
)

// Keyboard keys
const (
	KeyReserved   KeyCode = 0
	KeyEsc        KeyCode = 1
	Key1          KeyCode = 2
	Key2          KeyCode = 3
	Key3          KeyCode = 4
	Key4          KeyCode = 5
	Key5          KeyCode = 6
	Key6          KeyCode = 7
	Key7          KeyCode = 8
	Key8          KeyCode = 9
	Key9          KeyCode = 10
	Key0          KeyCode = 11
	KeyMinus      KeyCode = 12
	KeyEqual      KeyCode = 13
	KeyBackspace  KeyCode = 14
	KeyTab        KeyCode = 15
	KeyQ          KeyCode = 16
	KeyW          KeyCode = 17
	KeyE          KeyCode = 18
	KeyR          KeyCode = 19
	KeyT          KeyCode = 20
	KeyY          KeyCode = 21
	KeyU          KeyCode = 22
	KeyI          KeyCode = 23
	KeyO          KeyCode = 24
	KeyP          KeyCode = 25
	KeyLeftBrace  KeyCode = 26
	KeyRightBrace KeyCode = 27
	KeyEnter      KeyCode = 28
	KeyLeftCtrl   KeyCode = 29
	KeyA          KeyCode = 30
	KeyS          KeyCode = 31
	KeyD          KeyCode = 32
	KeyF          KeyCode = 33
	KeyG          KeyCode = 34
	KeyH          KeyCode = 35
	KeyJ          KeyCode = 36
	KeyK          KeyCode = 37
	KeyL          KeyCode = 38
	KeySemicolon  KeyCode = 39
	KeyApostrophe KeyCode = 40
	KeyGrave      KeyCode = 41
	KeyLeftShift  KeyCode = 42
	KeyBackslash  KeyCode = 43
	KeyZ          KeyCode = 44
	KeyX          KeyCode = 45
	KeyC          KeyCode = 46
	KeyV          KeyCode = 47
	KeyB          KeyCode = 48
	KeyN          KeyCode = 49
	KeyM          KeyCode = 50
	KeyComma      KeyCode = 51
	KeyDot        KeyCode = 52
	KeySlash      KeyCode = 53
	KeyRightShift KeyCode = 54
	KeyKpAsterisk KeyCode = 55
	KeyLeftAlt    KeyCode = 56
	KeySpace      KeyCode = 57
	KeyCapsLock   KeyCode = 58
	KeyF1         KeyCode = 59
	KeyF2         KeyCode = 60
	KeyF3         KeyCode = 61
	KeyF4         KeyCode = 62
	KeyF5         KeyCode = 63
	KeyF6         KeyCode = 64
	KeyF7         KeyCode = 65
	KeyF8         KeyCode = 66
	KeyF9         KeyCode = 67
	KeyF10        KeyCode = 68
	KeyNumLock    KeyCode = 69
	KeyScrollLock KeyCode = 70
	KeyKp7        KeyCode = 71
	KeyKp8        KeyCode = 72
	KeyKp9        KeyCode = 73
	KeyKpMinus    KeyCode = 74
	KeyKp4        KeyCode = 75
	KeyKp5        KeyCode = 76
	KeyKp6        KeyCode = 77
	KeyKpPlus     KeyCode = 78
	KeyKp1        KeyCode = 79
	KeyKp2        KeyCode = 80
	KeyKp3        KeyCode = 81
	KeyKp0        KeyCode = 82
	KeyKpDot      KeyCode = 83
	Key102nd      KeyCode = 86
	KeyF11        KeyCode = 87
	KeyF12        KeyCode = 88
	KeyKpEnter    KeyCode = 96
	KeyRightCtrl  KeyCode = 97
	KeyKpSlash    KeyCode = 98
	KeySysRq      KeyCode = 99
	KeyRightAlt   KeyCode = 100
	KeyHome       KeyCode = 102
	KeyUp         KeyCode = 103
	KeyPageUp     KeyCode = 104
	KeyLeft       KeyCode = 105
	KeyRight      KeyCode = 106
	KeyEnd        KeyCode = 107
	KeyDown       KeyCode = 108
	KeyPageDown   KeyCode = 109
	KeyInsert     KeyCode = 110
	KeyDelete     KeyCode = 111
	KeyMute       KeyCode = 113
	KeyVolumeDown KeyCode = 114
	KeyVolumeUp   KeyCode = 115
	KeyPower      KeyCode = 116
	KeyKpEqual    KeyCode = 117
	KeyPause      KeyCode = 119
	KeyKpComma    KeyCode = 121
	KeyLeftMeta   KeyCode = 125
	KeyRightMeta  KeyCode = 126
	KeyCompose    KeyCode = 127
	KeyF13        KeyCode = 183
	KeyF14        KeyCode = 184
	KeyF15        KeyCode = 185
	KeyF16        KeyCode = 186
	KeyF17        KeyCode = 187
	KeyF18        KeyCode = 188
	KeyF19        KeyCode = 189
	KeyF20        KeyCode = 190
	KeyF21        KeyCode = 191
	KeyF22        KeyCode = 192
	KeyF23        KeyCode = 193
	KeyF24        KeyCode = 194
)

// Buttons
const (
	Btn0 KeyCode = 0x100
	Btn1 KeyCode = 0x101
	Btn2 KeyCode = 0x102
	Btn3 KeyCode = 0x103
	Btn4 KeyCode = 0x104
	Btn5 KeyCode = 0x105
	Btn6 KeyCode = 0x106
	Btn7 KeyCode = 0x107
	Btn8 KeyCode = 0x108
	Btn9 KeyCode = 0x109

	BtnLeft    KeyCode = 0x110
	BtnRight   KeyCode = 0x111
	BtnMiddle  KeyCode = 0x112
	BtnSide    KeyCode = 0x113
	BtnExtra   KeyCode = 0x114
	BtnForward KeyCode = 0x115
	BtnBack    KeyCode = 0x116
	BtnTask    KeyCode = 0x117

	BtnTrigger KeyCode = 0x120
	BtnThumb   KeyCode = 0x121
	BtnThumb2  KeyCode = 0x122
	BtnTop     KeyCode = 0x123
	BtnTop2    KeyCode = 0x124
	BtnPinkie  KeyCode = 0x125
	BtnBase    KeyCode = 0x126
	BtnBase2   KeyCode = 0x127
	BtnBase3   KeyCode = 0x128
	BtnBase4   KeyCode = 0x129
	BtnBase5   KeyCode = 0x12a
	BtnBase6   KeyCode = 0x12b
	BtnDead    KeyCode = 0x12f

	BtnSouth  KeyCode = 0x130
	BtnEast   KeyCode = 0x131
	BtnC      KeyCode = 0x132
	BtnNorth  KeyCode = 0x133
	BtnWest   KeyCode = 0x134
	BtnZ      KeyCode = 0x135
	BtnTL     KeyCode = 0x136
	BtnTR     KeyCode = 0x137
	BtnTL2    KeyCode = 0x138
	BtnTR2    KeyCode = 0x139
	BtnSelect KeyCode = 0x13a
	BtnStart  KeyCode = 0x13b
	BtnMode   KeyCode = 0x13c
	BtnThumbL KeyCode = 0x13d
	BtnThumbR KeyCode = 0x13e

	BtnDpadUp    KeyCode = 0x220
	BtnDpadDown  KeyCode = 0x221
	BtnDpadLeft  KeyCode = 0x222
	BtnDpadRight KeyCode = 0x223

	// KeyMax is the highest key code the kernel defines.
	KeyMax KeyCode = 0x2ff
)

// Absolute axes
const (
	AbsX        AbsAxis = 0x00
	AbsY        AbsAxis = 0x01
	AbsZ        AbsAxis = 0x02
	AbsRX       AbsAxis = 0x03
	AbsRY       AbsAxis = 0x04
	AbsRZ       AbsAxis = 0x05
	AbsThrottle AbsAxis = 0x06
	AbsRudder   AbsAxis = 0x07
	AbsWheel    AbsAxis = 0x08
	AbsGas      AbsAxis = 0x09
	AbsBrake    AbsAxis = 0x0a
	AbsHat0X    AbsAxis = 0x10
	AbsHat0Y    AbsAxis = 0x11
	AbsHat1X    AbsAxis = 0x12
	AbsHat1Y    AbsAxis = 0x13
	AbsHat2X    AbsAxis = 0x14
	AbsHat2Y    AbsAxis = 0x15
	AbsHat3X    AbsAxis = 0x16
	AbsHat3Y    AbsAxis = 0x17
	AbsMisc     AbsAxis = 0x28
)

// Relative axes
const (
	RelX      RelAxis = 0x00
	RelY      RelAxis = 0x01
	RelZ      RelAxis = 0x02
	RelRX     RelAxis = 0x03
	RelRY     RelAxis = 0x04
	RelRZ     RelAxis = 0x05
	RelHWheel RelAxis = 0x06
	RelDial   RelAxis = 0x07
	RelWheel  RelAxis = 0x08
	RelMisc   RelAxis = 0x09
)

var keyNames = map[KeyCode]string{
	KeyEsc: "KEY_ESC", Key1: "KEY_1", Key2: "KEY_2", Key3: "KEY_3", Key4: "KEY_4",
	Key5: "KEY_5", Key6: "KEY_6", Key7: "KEY_7", Key8: "KEY_8", Key9: "KEY_9",
	Key0: "KEY_0", KeyMinus: "KEY_MINUS", KeyEqual: "KEY_EQUAL", KeyBackspace: "KEY_BACKSPACE",
	KeyTab: "KEY_TAB", KeyQ: "KEY_Q", KeyW: "KEY_W", KeyE: "KEY_E", KeyR: "KEY_R",
	KeyT: "KEY_T", KeyY: "KEY_Y", KeyU: "KEY_U", KeyI: "KEY_I", KeyO: "KEY_O", KeyP: "KEY_P",
	KeyLeftBrace: "KEY_LEFTBRACE", KeyRightBrace: "KEY_RIGHTBRACE", KeyEnter: "KEY_ENTER",
	KeyLeftCtrl: "KEY_LEFTCTRL", KeyA: "KEY_A", KeyS: "KEY_S", KeyD: "KEY_D", KeyF: "KEY_F",
	KeyG: "KEY_G", KeyH: "KEY_H", KeyJ: "KEY_J", KeyK: "KEY_K", KeyL: "KEY_L",
	KeySemicolon: "KEY_SEMICOLON", KeyApostrophe: "KEY_APOSTROPHE", KeyGrave: "KEY_GRAVE",
	KeyLeftShift: "KEY_LEFTSHIFT", KeyBackslash: "KEY_BACKSLASH", KeyZ: "KEY_Z", KeyX: "KEY_X",
	KeyC: "KEY_C", KeyV: "KEY_V", KeyB: "KEY_B", KeyN: "KEY_N", KeyM: "KEY_M",
	KeyComma: "KEY_COMMA", KeyDot: "KEY_DOT", KeySlash: "KEY_SLASH",
	KeyRightShift: "KEY_RIGHTSHIFT", KeyKpAsterisk: "KEY_KPASTERISK", KeyLeftAlt: "KEY_LEFTALT",
	KeySpace: "KEY_SPACE", KeyCapsLock: "KEY_CAPSLOCK",
	KeyF1: "KEY_F1", KeyF2: "KEY_F2", KeyF3: "KEY_F3", KeyF4: "KEY_F4", KeyF5: "KEY_F5",
	KeyF6: "KEY_F6", KeyF7: "KEY_F7", KeyF8: "KEY_F8", KeyF9: "KEY_F9", KeyF10: "KEY_F10",
	KeyNumLock: "KEY_NUMLOCK", KeyScrollLock: "KEY_SCROLLLOCK",
	KeyKp7: "KEY_KP7", KeyKp8: "KEY_KP8", KeyKp9: "KEY_KP9", KeyKpMinus: "KEY_KPMINUS",
	KeyKp4: "KEY_KP4", KeyKp5: "KEY_KP5", KeyKp6: "KEY_KP6", KeyKpPlus: "KEY_KPPLUS",
	KeyKp1: "KEY_KP1", KeyKp2: "KEY_KP2", KeyKp3: "KEY_KP3", KeyKp0: "KEY_KP0",
	KeyKpDot: "KEY_KPDOT", Key102nd: "KEY_102ND", KeyF11: "KEY_F11", KeyF12: "KEY_F12",
	KeyKpEnter: "KEY_KPENTER", KeyRightCtrl: "KEY_RIGHTCTRL", KeyKpSlash: "KEY_KPSLASH",
	KeySysRq: "KEY_SYSRQ", KeyRightAlt: "KEY_RIGHTALT", KeyHome: "KEY_HOME", KeyUp: "KEY_UP",
	KeyPageUp: "KEY_PAGEUP", KeyLeft: "KEY_LEFT", KeyRight: "KEY_RIGHT", KeyEnd: "KEY_END",
	KeyDown: "KEY_DOWN", KeyPageDown: "KEY_PAGEDOWN", KeyInsert: "KEY_INSERT",
	KeyDelete: "KEY_DELETE", KeyMute: "KEY_MUTE", KeyVolumeDown: "KEY_VOLUMEDOWN",
	KeyVolumeUp: "KEY_VOLUMEUP", KeyPower: "KEY_POWER", KeyKpEqual: "KEY_KPEQUAL",
	KeyPause: "KEY_PAUSE", KeyKpComma: "KEY_KPCOMMA", KeyLeftMeta: "KEY_LEFTMETA",
	KeyRightMeta: "KEY_RIGHTMETA", KeyCompose: "KEY_COMPOSE",
	KeyF13: "KEY_F13", KeyF14: "KEY_F14", KeyF15: "KEY_F15", KeyF16: "KEY_F16",
	KeyF17: "KEY_F17", KeyF18: "KEY_F18", KeyF19: "KEY_F19", KeyF20: "KEY_F20",
	KeyF21: "KEY_F21", KeyF22: "KEY_F22", KeyF23: "KEY_F23", KeyF24: "KEY_F24",

	Btn0: "BTN_0", Btn1: "BTN_1", Btn2: "BTN_2", Btn3: "BTN_3", Btn4: "BTN_4",
	Btn5: "BTN_5", Btn6: "BTN_6", Btn7: "BTN_7", Btn8: "BTN_8", Btn9: "BTN_9",
	BtnLeft: "BTN_LEFT", BtnRight: "BTN_RIGHT", BtnMiddle: "BTN_MIDDLE", BtnSide: "BTN_SIDE",
	BtnExtra: "BTN_EXTRA", BtnForward: "BTN_FORWARD", BtnBack: "BTN_BACK", BtnTask: "BTN_TASK",
	BtnTrigger: "BTN_TRIGGER", BtnThumb: "BTN_THUMB", BtnThumb2: "BTN_THUMB2", BtnTop: "BTN_TOP",
	BtnTop2: "BTN_TOP2", BtnPinkie: "BTN_PINKIE", BtnBase: "BTN_BASE", BtnBase2: "BTN_BASE2",
	BtnBase3: "BTN_BASE3", BtnBase4: "BTN_BASE4", BtnBase5: "BTN_BASE5", BtnBase6: "BTN_BASE6",
	BtnDead: "BTN_DEAD",
	BtnSouth: "BTN_SOUTH", BtnEast: "BTN_EAST", BtnC: "BTN_C", BtnNorth: "BTN_NORTH",
	BtnWest: "BTN_WEST", BtnZ: "BTN_Z", BtnTL: "BTN_TL", BtnTR: "BTN_TR", BtnTL2: "BTN_TL2",
	BtnTR2: "BTN_TR2", BtnSelect: "BTN_SELECT", BtnStart: "BTN_START", BtnMode: "BTN_MODE",
	BtnThumbL: "BTN_THUMBL", BtnThumbR: "BTN_THUMBR",
	BtnDpadUp: "BTN_DPAD_UP", BtnDpadDown: "BTN_DPAD_DOWN", BtnDpadLeft: "BTN_DPAD_LEFT",
	BtnDpadRight: "BTN_DPAD_RIGHT",
}

// Aliases the kernel headers define for the same codes.
var keyAliases = map[string]KeyCode{
	"BTN_A":     BtnSouth,
	"BTN_B":     BtnEast,
	"BTN_X":     BtnNorth,
	"BTN_Y":     BtnWest,
	"BTN_MOUSE": BtnLeft,
}

var absNames = map[AbsAxis]string{
	AbsX: "ABS_X", AbsY: "ABS_Y", AbsZ: "ABS_Z", AbsRX: "ABS_RX", AbsRY: "ABS_RY",
	AbsRZ: "ABS_RZ", AbsThrottle: "ABS_THROTTLE", AbsRudder: "ABS_RUDDER", AbsWheel: "ABS_WHEEL",
	AbsGas: "ABS_GAS", AbsBrake: "ABS_BRAKE",
	AbsHat0X: "ABS_HAT0X", AbsHat0Y: "ABS_HAT0Y", AbsHat1X: "ABS_HAT1X", AbsHat1Y: "ABS_HAT1Y",
	AbsHat2X: "ABS_HAT2X", AbsHat2Y: "ABS_HAT2Y", AbsHat3X: "ABS_HAT3X", AbsHat3Y: "ABS_HAT3Y",
	AbsMisc: "ABS_MISC",
}

var relNames = map[RelAxis]string{
	RelX: "REL_X", RelY: "REL_Y", RelZ: "REL_Z", RelRX: "REL_RX", RelRY: "REL_RY",
	RelRZ: "REL_RZ", RelHWheel: "REL_HWHEEL", RelDial: "REL_DIAL", RelWheel: "REL_WHEEL",
	RelMisc: "REL_MISC",
}

var (
	keysByName = invert(keyNames)
	absByName  = invert(absNames)
	relByName  = invert(relNames)

	allKeys    = sortedKeys(keyNames)
	allRelAxes = sortedKeys(relNames)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func sortedKeys[K ~uint16](m map[K]string) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (k KeyCode) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return fmt.Sprintf("KEY_%#x", uint16(k))
}

func (a AbsAxis) String() string {
	if n, ok := absNames[a]; ok {
		return n
	}
	return fmt.Sprintf("ABS_%#x", uint16(a))
}

func (r RelAxis) String() string {
	if n, ok := relNames[r]; ok {
		return n
	}
	return fmt.Sprintf("REL_%#x", uint16(r))
}

// ParseKeyCode accepts an evdev name ("KEY_A", "BTN_SOUTH") or a numeric code.
func ParseKeyCode(s string) (KeyCode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if k, ok := keysByName[name]; ok {
		return k, nil
	}
	if k, ok := keyAliases[name]; ok {
		return k, nil
	}
	if n, err := strconv.ParseUint(name, 0, 16); err == nil && KeyCode(n) <= KeyMax {
		return KeyCode(n), nil
	}
	return 0, fmt.Errorf("unknown key code %q", s)
}

// ParseAbsAxis accepts an evdev name ("ABS_X") or a numeric code.
func ParseAbsAxis(s string) (AbsAxis, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if a, ok := absByName[name]; ok {
		return a, nil
	}
	if n, err := strconv.ParseUint(name, 0, 16); err == nil && n < 0x40 {
		return AbsAxis(n), nil
	}
	return 0, fmt.Errorf("unknown absolute axis %q", s)
}

// ParseRelAxis accepts an evdev name ("REL_X") or a numeric code.
func ParseRelAxis(s string) (RelAxis, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if r, ok := relByName[name]; ok {
		return r, nil
	}
	if n, err := strconv.ParseUint(name, 0, 16); err == nil && n < 0x10 {
		return RelAxis(n), nil
	}
	return 0, fmt.Errorf("unknown relative axis %q", s)
}

// AllKeyCodes returns every named key and button code in ascending order.
func AllKeyCodes() []KeyCode {
	return slices.Clone(allKeys)
}

// AllRelAxes returns every named relative axis in ascending order.
func AllRelAxes() []RelAxis {
	return slices.Clone(allRelAxes)
}
