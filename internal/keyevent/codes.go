package keyevent

import "strings"

// macOS virtual key codes.
const (
	KeyA uint16 = 0
	KeyS uint16 = 1
	KeyD uint16 = 2
	KeyF uint16 = 3
	KeyH uint16 = 4
	KeyG uint16 = 5
	KeyZ uint16 = 6
	KeyX uint16 = 7
	KeyC uint16 = 8
	KeyV uint16 = 9
	KeyB uint16 = 11
	KeyQ uint16 = 12
	KeyW uint16 = 13
	KeyE uint16 = 14
	KeyR uint16 = 15
	KeyY uint16 = 16
	KeyT uint16 = 17
	KeyO uint16 = 31
	KeyU uint16 = 32
	KeyI uint16 = 34
	KeyP uint16 = 35
	KeyL uint16 = 37
	KeyJ uint16 = 38
	KeyK uint16 = 40
	KeyN uint16 = 45
	KeyM uint16 = 46

	Key1 uint16 = 18
	Key2 uint16 = 19
	Key3 uint16 = 20
	Key4 uint16 = 21
	Key5 uint16 = 23
	Key6 uint16 = 22
	Key7 uint16 = 26
	Key8 uint16 = 28
	Key9 uint16 = 25
	Key0 uint16 = 29

	KeyReturn        uint16 = 36
	KeyTab           uint16 = 48
	KeySpace         uint16 = 49
	KeyDelete        uint16 = 51
	KeyEscape        uint16 = 53
	KeyEnter         uint16 = 76
	KeyHome          uint16 = 115
	KeyPageUp        uint16 = 116
	KeyForwardDelete uint16 = 117
	KeyEnd           uint16 = 119
	KeyPageDown      uint16 = 121
	KeyArrowLeft     uint16 = 123
	KeyArrowRight    uint16 = 124
	KeyArrowDown     uint16 = 125
	KeyArrowUp       uint16 = 126

	KeyDot       uint16 = 47
	KeyComma     uint16 = 43
	KeySlash     uint16 = 44
	KeySemicolon uint16 = 41
	KeyQuote     uint16 = 39
	KeyLBracket  uint16 = 33
	KeyRBracket  uint16 = 30
	KeyBackslash uint16 = 42
	KeyMinus     uint16 = 27
	KeyEqual     uint16 = 24
	KeyBackquote uint16 = 50
)

// IsNavigation reports whether the key always ends composition:
// arrows, return, enter and tab.
func IsNavigation(code uint16) bool {
	switch code {
	case KeyArrowLeft, KeyArrowRight, KeyArrowUp, KeyArrowDown, KeyReturn, KeyEnter, KeyTab:
		return true
	}
	return false
}

// latin maps key codes to the characters they produce on a US layout.
var latin = map[uint16][2]rune{
	KeyA: {'a', 'A'}, KeyB: {'b', 'B'}, KeyC: {'c', 'C'}, KeyD: {'d', 'D'},
	KeyE: {'e', 'E'}, KeyF: {'f', 'F'}, KeyG: {'g', 'G'}, KeyH: {'h', 'H'},
	KeyI: {'i', 'I'}, KeyJ: {'j', 'J'}, KeyK: {'k', 'K'}, KeyL: {'l', 'L'},
	KeyM: {'m', 'M'}, KeyN: {'n', 'N'}, KeyO: {'o', 'O'}, KeyP: {'p', 'P'},
	KeyQ: {'q', 'Q'}, KeyR: {'r', 'R'}, KeyS: {'s', 'S'}, KeyT: {'t', 'T'},
	KeyU: {'u', 'U'}, KeyV: {'v', 'V'}, KeyW: {'w', 'W'}, KeyX: {'x', 'X'},
	KeyY: {'y', 'Y'}, KeyZ: {'z', 'Z'},
	Key1: {'1', '!'}, Key2: {'2', '@'}, Key3: {'3', '#'}, Key4: {'4', '$'},
	Key5: {'5', '%'}, Key6: {'6', '^'}, Key7: {'7', '&'}, Key8: {'8', '*'},
	Key9: {'9', '('}, Key0: {'0', ')'},
	KeySpace: {' ', ' '}, KeyDot: {'.', '>'}, KeyComma: {',', '<'},
	KeySlash: {'/', '?'}, KeySemicolon: {';', ':'}, KeyQuote: {'\'', '"'},
	KeyLBracket: {'[', '{'}, KeyRBracket: {']', '}'}, KeyBackslash: {'\\', '|'},
	KeyMinus: {'-', '_'}, KeyEqual: {'=', '+'}, KeyBackquote: {'`', '~'},
}

// Rune returns the character a key produces on a US layout. Letters use
// upper for case; other keys use shift to pick the shifted symbol.
func Rune(code uint16, upper, shift bool) (rune, bool) {
	pair, ok := latin[code]
	if !ok {
		return 0, false
	}
	if pair[0] >= 'a' && pair[0] <= 'z' {
		if upper {
			return pair[1], true
		}
		return pair[0], true
	}
	if shift {
		return pair[1], true
	}
	return pair[0], true
}

var namedKeys = map[string]uint16{
	"space":     KeySpace,
	"tab":       KeyTab,
	"return":    KeyReturn,
	"enter":     KeyEnter,
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"delete":    KeyDelete,
	"backspace": KeyDelete,
	"left":      KeyArrowLeft,
	"right":     KeyArrowRight,
	"up":        KeyArrowUp,
	"down":      KeyArrowDown,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pageup":    KeyPageUp,
	"pagedown":  KeyPageDown,
}

// CodeForName resolves a key name ("space", "z", "5", "/") to its key code.
func CodeForName(name string) (uint16, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if code, ok := namedKeys[name]; ok {
		return code, true
	}
	r := []rune(name)
	if len(r) != 1 {
		return 0, false
	}
	for code, pair := range latin {
		if pair[0] == r[0] {
			return code, true
		}
	}
	return 0, false
}

// NameForCode is the inverse of CodeForName.
func NameForCode(code uint16) string {
	for name, c := range namedKeys {
		if c == code && name != "esc" && name != "backspace" {
			return name
		}
	}
	if pair, ok := latin[code]; ok {
		return string(pair[0])
	}
	return ""
}
