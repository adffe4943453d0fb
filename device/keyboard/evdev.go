package keyboard

import "github.com/Alia5/padmapper/input"

var modifierBits = map[input.KeyCode]uint8{
	input.KeyLeftCtrl:   ModLeftCtrl,
	input.KeyLeftShift:  ModLeftShift,
	input.KeyLeftAlt:    ModLeftAlt,
	input.KeyLeftMeta:   ModLeftGUI,
	input.KeyRightCtrl:  ModRightCtrl,
	input.KeyRightShift: ModRightShift,
	input.KeyRightAlt:   ModRightAlt,
	input.KeyRightMeta:  ModRightGUI,
}

var usages = map[input.KeyCode]uint8{
	input.KeyA: KeyA, input.KeyB: KeyB, input.KeyC: KeyC, input.KeyD: KeyD, input.KeyE: KeyE,
	input.KeyF: KeyF, input.KeyG: KeyG, input.KeyH: KeyH, input.KeyI: KeyI, input.KeyJ: KeyJ,
	input.KeyK: KeyK, input.KeyL: KeyL, input.KeyM: KeyM, input.KeyN: KeyN, input.KeyO: KeyO,
	input.KeyP: KeyP, input.KeyQ: KeyQ, input.KeyR: KeyR, input.KeyS: KeyS, input.KeyT: KeyT,
	input.KeyU: KeyU, input.KeyV: KeyV, input.KeyW: KeyW, input.KeyX: KeyX, input.KeyY: KeyY,
	input.KeyZ: KeyZ,

	input.Key1: Key1, input.Key2: Key2, input.Key3: Key3, input.Key4: Key4, input.Key5: Key5,
	input.Key6: Key6, input.Key7: Key7, input.Key8: Key8, input.Key9: Key9, input.Key0: Key0,

	input.KeyEnter:      KeyEnter,
	input.KeyEsc:        KeyEscape,
	input.KeyBackspace:  KeyBackspace,
	input.KeyTab:        KeyTab,
	input.KeySpace:      KeySpace,
	input.KeyMinus:      KeyMinus,
	input.KeyEqual:      KeyEqual,
	input.KeyLeftBrace:  KeyLeftBrace,
	input.KeyRightBrace: KeyRightBrace,
	input.KeyBackslash:  KeyBackslash,
	input.KeySemicolon:  KeySemicolon,
	input.KeyApostrophe: KeyApostrophe,
	input.KeyGrave:      KeyGrave,
	input.KeyComma:      KeyComma,
	input.KeyDot:        KeyPeriod,
	input.KeySlash:      KeySlash,
	input.KeyCapsLock:   KeyCapsLock,

	input.KeyF1: KeyF1, input.KeyF2: KeyF2, input.KeyF3: KeyF3, input.KeyF4: KeyF4,
	input.KeyF5: KeyF5, input.KeyF6: KeyF6, input.KeyF7: KeyF7, input.KeyF8: KeyF8,
	input.KeyF9: KeyF9, input.KeyF10: KeyF10, input.KeyF11: KeyF11, input.KeyF12: KeyF12,
	input.KeyF13: KeyF13, input.KeyF14: KeyF14, input.KeyF15: KeyF15, input.KeyF16: KeyF16,
	input.KeyF17: KeyF17, input.KeyF18: KeyF18, input.KeyF19: KeyF19, input.KeyF20: KeyF20,
	input.KeyF21: KeyF21, input.KeyF22: KeyF22, input.KeyF23: KeyF23, input.KeyF24: KeyF24,

	input.KeySysRq:      KeyPrintScreen,
	input.KeyScrollLock: KeyScrollLock,
	input.KeyPause:      KeyPause,
	input.KeyInsert:     KeyInsert,
	input.KeyHome:       KeyHome,
	input.KeyPageUp:     KeyPageUp,
	input.KeyDelete:     KeyDelete,
	input.KeyEnd:        KeyEnd,
	input.KeyPageDown:   KeyPageDown,
	input.KeyRight:      KeyRight,
	input.KeyLeft:       KeyLeft,
	input.KeyDown:       KeyDown,
	input.KeyUp:         KeyUp,

	input.KeyNumLock:    KeyNumLock,
	input.KeyKpSlash:    KeyKpSlash,
	input.KeyKpAsterisk: KeyKpAsterisk,
	input.KeyKpMinus:    KeyKpMinus,
	input.KeyKpPlus:     KeyKpPlus,
	input.KeyKpEnter:    KeyKpEnter,
	input.KeyKp1:        KeyKp1,
	input.KeyKp2:        KeyKp2,
	input.KeyKp3:        KeyKp3,
	input.KeyKp4:        KeyKp4,
	input.KeyKp5:        KeyKp5,
	input.KeyKp6:        KeyKp6,
	input.KeyKp7:        KeyKp7,
	input.KeyKp8:        KeyKp8,
	input.KeyKp9:        KeyKp9,
	input.KeyKp0:        KeyKp0,
	input.KeyKpDot:      KeyKpDot,
	input.KeyKpEqual:    KeyKpEqual,
	input.KeyKpComma:    KeyKpComma,
	input.Key102nd:      KeyNonUSBackslash,
	input.KeyCompose:    KeyApplication,
	input.KeyPower:      KeyPower,
	input.KeyMute:       KeyMute,
	input.KeyVolumeUp:   KeyVolumeUp,
	input.KeyVolumeDown: KeyVolumeDown,
}

// FromEvdev translates an evdev key code. Modifier keys report a non-zero
// modifier bit and no usage; other keys report their usage. ok is false for
// codes the keyboard report cannot carry (gamepad and mouse buttons).
func FromEvdev(code input.KeyCode) (usage uint8, modifier uint8, ok bool) {
	if m, isMod := modifierBits[code]; isMod {
		return 0, m, true
	}
	u, ok := usages[code]
	return u, 0, ok
}

// Apply presses or releases an evdev key on the state. It reports false when
// the code has no keyboard mapping.
func (st *InputState) Apply(code input.KeyCode, down bool) bool {
	usage, mod, ok := FromEvdev(code)
	if !ok {
		return false
	}
	switch {
	case mod != 0 && down:
		st.Modifiers |= mod
	case mod != 0:
		st.Modifiers &^= mod
	case down:
		st.Press(usage)
	default:
		st.Release(usage)
	}
	return true
}
