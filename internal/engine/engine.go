// Package engine is the boundary to the external Vietnamese
// transformation engine.
//
// The engine is an opaque buffer-state machine: it accepts keystroke
// descriptors and answers with what, if anything, should replace the text
// on screen. Orthography lives entirely on the other side of this
// boundary.
package engine

import "fmt"

// Action is what the engine asks the caller to do with a key.
type Action uint8

const (
	// ActionNone passes the key through untouched.
	ActionNone Action = iota
	// ActionSend deletes Backspace characters and inserts Chars.
	ActionSend
	// ActionRestore is a Send produced by an undo of the current word.
	ActionRestore
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionSend:
		return "send"
	case ActionRestore:
		return "restore"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// Method is the input method the engine composes with.
type Method uint8

const (
	MethodTelex Method = 0
	MethodVNI   Method = 1
)

func (m Method) String() string {
	switch m {
	case MethodTelex:
		return "telex"
	case MethodVNI:
		return "vni"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// ParseMethod accepts "telex", "vni" or the numeric forms "0" and "1".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "telex", "0":
		return MethodTelex, nil
	case "vni", "1":
		return MethodVNI, nil
	}
	return 0, fmt.Errorf("engine: unknown input method %q", s)
}

// Result is one engine answer, copied into Go memory.
type Result struct {
	Action    Action
	Backspace int
	Chars     []rune
}

// IsNoop reports whether r requests neither a deletion nor an insertion.
func (r *Result) IsNoop() bool {
	return r == nil || r.Action == ActionNone || (r.Backspace == 0 && len(r.Chars) == 0)
}

// Engine is the foreign-function surface. Processing calls return nil when
// the engine is not initialised; setters are fire-and-forget.
type Engine interface {
	Init()

	ProcessKey(keyCode uint16, uppercase, ctrl bool) *Result
	ProcessKeyExt(keyCode uint16, uppercase, ctrl, shift bool) *Result

	// RestoreWord rebuilds the composition buffer from a word already on screen.
	RestoreWord(word string)

	SetMethod(m Method)
	SetEnabled(enabled bool)
	SetModernTone(modern bool)
	SetEscRestore(enabled bool)
	SetFreeTone(enabled bool)
	SetInstantRestore(enabled bool)
	SetSkipWShortcut(skip bool)

	ClearComposition()
	ClearAllState()

	AddShortcut(trigger, replacement string) bool
	RemoveShortcut(trigger string)
	ClearShortcuts()
	SetShortcutsEnabled(enabled bool)
}
