// Package shortcut holds the configured toggle shortcut and the pure
// matcher that compares key events against it.
package shortcut

import (
	"errors"
	"fmt"
	"strings"

	"goxviet/internal/keyevent"
)

// ModifierOnly is the reserved key code of a shortcut made of modifiers alone.
const ModifierOnly uint16 = 0xFFFF

var (
	ErrNoModifiers = errors.New("shortcut: modifier-only shortcut needs at least one of ctrl, option, shift, cmd")
	ErrNoKey       = errors.New("shortcut: keyed shortcut needs a non-zero key code")
	ErrSyntax      = errors.New("shortcut: invalid syntax")
)

// Toggle is the key combination that enables or disables the pipeline.
// Values are replaced wholesale, never mutated in place.
type Toggle struct {
	KeyCode   uint16
	Modifiers keyevent.Modifiers
}

// Default returns Control+Space.
func Default() Toggle {
	return Toggle{KeyCode: keyevent.KeySpace, Modifiers: keyevent.ModControl}
}

// IsModifierOnly reports whether t fires on modifiers alone.
func (t Toggle) IsModifierOnly() bool {
	return t.KeyCode == ModifierOnly
}

// Validate checks the structural invariants of t.
func (t Toggle) Validate() error {
	if t.IsModifierOnly() {
		if t.Modifiers.Normalized() == 0 {
			return ErrNoModifiers
		}
		return nil
	}
	if t.KeyCode == 0 {
		return ErrNoKey
	}
	return nil
}

// Matches reports whether ev triggers t.
//
// Keyed shortcuts match key-down events with the same key code whose
// normalized modifiers equal the configured set. Modifier-only shortcuts
// match only modifier-change events whose held modifiers equal the set
// exactly.
func Matches(ev keyevent.KeyEvent, t Toggle) bool {
	want := t.Modifiers.Normalized()
	have := ev.Modifiers.Normalized()
	if t.IsModifierOnly() {
		return ev.Kind == keyevent.KindModifiersChanged && want != 0 && have == want
	}
	return ev.Kind == keyevent.KindKeyDown && t.KeyCode != 0 && ev.KeyCode == t.KeyCode && have == want
}

var modifierTokens = map[string]keyevent.Modifiers{
	"ctrl":    keyevent.ModControl,
	"control": keyevent.ModControl,
	"option":  keyevent.ModOption,
	"opt":     keyevent.ModOption,
	"alt":     keyevent.ModOption,
	"shift":   keyevent.ModShift,
	"cmd":     keyevent.ModCommand,
	"command": keyevent.ModCommand,
}

// Parse reads a shortcut such as "ctrl+space" or "ctrl+shift". A string
// made only of modifier names yields a modifier-only shortcut.
func Parse(s string) (Toggle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Toggle{}, fmt.Errorf("%w: empty", ErrSyntax)
	}
	var (
		t      Toggle
		keySet bool
	)
	for _, tok := range strings.Split(s, "+") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			return Toggle{}, fmt.Errorf("%w: %q", ErrSyntax, s)
		}
		if m, ok := modifierTokens[tok]; ok {
			t.Modifiers |= m
			continue
		}
		if keySet {
			return Toggle{}, fmt.Errorf("%w: more than one key in %q", ErrSyntax, s)
		}
		code, ok := keyevent.CodeForName(tok)
		if !ok {
			return Toggle{}, fmt.Errorf("%w: unknown key %q", ErrSyntax, tok)
		}
		t.KeyCode = code
		keySet = true
	}
	if !keySet {
		t.KeyCode = ModifierOnly
	}
	if err := t.Validate(); err != nil {
		return Toggle{}, err
	}
	return t, nil
}

// String renders t in the form accepted by Parse.
func (t Toggle) String() string {
	mods := t.Modifiers.Normalized().String()
	if t.IsModifierOnly() {
		return mods
	}
	key := keyevent.NameForCode(t.KeyCode)
	if key == "" {
		key = fmt.Sprintf("key%d", t.KeyCode)
	}
	if mods == "" {
		return key
	}
	return mods + "+" + key
}

// MarshalText implements encoding.TextMarshaler.
func (t Toggle) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Toggle) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
