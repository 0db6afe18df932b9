// Package keyevent defines the normalized representation of a hardware
// key event as seen by the interception pipeline.
//
// Key codes are macOS virtual key codes. Other platforms translate their
// native codes into this space before handing events to the pipeline.
package keyevent

import "strings"

// Kind identifies what the operating system reported.
type Kind uint8

const (
	// KindKeyDown is a key press (including auto-repeat).
	KindKeyDown Kind = iota + 1
	// KindKeyUp is a key release.
	KindKeyUp
	// KindModifiersChanged is reported when a modifier key is pressed or released.
	KindModifiersChanged
	// KindMouseDown is a mouse button press anywhere on screen.
	KindMouseDown
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindKeyDown:
		return "key_down"
	case KindKeyUp:
		return "key_up"
	case KindModifiersChanged:
		return "modifiers_changed"
	case KindMouseDown:
		return "mouse_down"
	default:
		return "unknown"
	}
}

// Modifiers is the set of modifier keys held during an event.
type Modifiers uint16

const (
	ModControl Modifiers = 1 << iota
	ModOption
	ModShift
	ModCommand
	ModFn
	ModCapsLock
)

// ShortcutModifiers is the subset of modifiers that participates in
// shortcut matching. Fn and CapsLock are deliberately excluded.
const ShortcutModifiers = ModControl | ModOption | ModShift | ModCommand

// ChordModifiers marks an event as a system shortcut rather than typed text.
const ChordModifiers = ModControl | ModOption | ModCommand

// Has reports whether every modifier in x is held.
func (m Modifiers) Has(x Modifiers) bool {
	return x != 0 && m&x == x
}

// Any reports whether at least one modifier in x is held.
func (m Modifiers) Any(x Modifiers) bool {
	return m&x != 0
}

// Normalized masks m to the shortcut-relevant modifiers.
func (m Modifiers) Normalized() Modifiers {
	return m & ShortcutModifiers
}

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModControl, "ctrl"},
	{ModOption, "option"},
	{ModShift, "shift"},
	{ModCommand, "cmd"},
	{ModFn, "fn"},
	{ModCapsLock, "capslock"},
}

// String renders the set as "ctrl+shift".
func (m Modifiers) String() string {
	if m == 0 {
		return ""
	}
	parts := make([]string, 0, len(modifierNames))
	for _, mn := range modifierNames {
		if m&mn.mod != 0 {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, "+")
}

// KeyEvent is one key event received from the operating system.
// It is constructed per hardware event and never mutated.
type KeyEvent struct {
	KeyCode   uint16
	Modifiers Modifiers
	Kind      Kind

	// Synthetic is true when the event carries this process's marker.
	Synthetic bool
}

// KeyDown builds a key-down event.
func KeyDown(code uint16, mods Modifiers) KeyEvent {
	return KeyEvent{KeyCode: code, Modifiers: mods, Kind: KindKeyDown}
}

// KeyUp builds a key-up event.
func KeyUp(code uint16, mods Modifiers) KeyEvent {
	return KeyEvent{KeyCode: code, Modifiers: mods, Kind: KindKeyUp}
}

// ModifiersChanged builds a modifier-change event for the currently held set.
func ModifiersChanged(mods Modifiers) KeyEvent {
	return KeyEvent{Modifiers: mods, Kind: KindModifiersChanged}
}

// IsChord reports whether Command, Control or Option is held.
func (e KeyEvent) IsChord() bool {
	return e.Modifiers.Any(ChordModifiers)
}

// Shift reports whether the event flags carry Shift.
func (e KeyEvent) Shift() bool {
	return e.Modifiers.Has(ModShift)
}

// CapsLock reports whether the event flags carry CapsLock.
func (e KeyEvent) CapsLock() bool {
	return e.Modifiers.Has(ModCapsLock)
}
