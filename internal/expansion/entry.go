// Package expansion manages the text-expansion dictionary: abbreviations
// such as "vn" that the engine expands to "Việt Nam". Entries are kept in
// SQLite, exchanged as JSON documents and pushed to the engine for the
// active input method.
package expansion

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"goxviet/internal/engine"
)

// Dictionary limits imposed by the engine.
const (
	MaxEntries = 200
	// MaxReplacement is the longest replacement in code points; longer
	// replacements are truncated.
	MaxReplacement = 63
)

var (
	ErrEmptyTrigger     = errors.New("expansion: trigger is empty")
	ErrTriggerSpace     = errors.New("expansion: trigger contains whitespace")
	ErrEmptyReplacement = errors.New("expansion: replacement is empty")
	ErrFull             = fmt.Errorf("expansion: dictionary holds at most %d entries", MaxEntries)
	ErrNotFound         = errors.New("expansion: no such trigger")
)

// Method restricts an entry to one input method.
type Method uint8

const (
	MethodAll Method = iota
	MethodTelex
	MethodVNI
)

func (m Method) String() string {
	switch m {
	case MethodTelex:
		return "telex"
	case MethodVNI:
		return "vni"
	default:
		return "all"
	}
}

// ParseMethod accepts "all", "telex" and "vni". The empty string is "all".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return MethodAll, nil
	case "telex":
		return MethodTelex, nil
	case "vni":
		return MethodVNI, nil
	}
	return 0, fmt.Errorf("expansion: unknown method %q", s)
}

func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// AppliesTo reports whether an entry for m is active under the engine
// method em.
func (m Method) AppliesTo(em engine.Method) bool {
	switch m {
	case MethodTelex:
		return em == engine.MethodTelex
	case MethodVNI:
		return em == engine.MethodVNI
	default:
		return true
	}
}

// Condition says when an entry should fire. It is stored and exchanged
// with the dictionary but not passed to the engine, which expands every
// trigger at a word boundary.
type Condition uint8

const (
	// WordBoundary expands when a space or punctuation follows the trigger.
	WordBoundary Condition = iota
	// Immediate expands as soon as the trigger is typed.
	Immediate
)

func (c Condition) String() string {
	if c == Immediate {
		return "immediate"
	}
	return "word_boundary"
}

// ParseCondition accepts "word_boundary" and "immediate".
func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(s) {
	case "", "word_boundary":
		return WordBoundary, nil
	case "immediate":
		return Immediate, nil
	}
	return 0, fmt.Errorf("expansion: unknown condition %q", s)
}

func (c Condition) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Condition) UnmarshalText(b []byte) error {
	v, err := ParseCondition(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Entry is one dictionary entry.
type Entry struct {
	Trigger     string
	Replacement string
	Enabled     bool
	Method      Method
	Condition   Condition
}

// New returns an enabled word-boundary entry for every method.
func New(trigger, replacement string) Entry {
	return Entry{Trigger: trigger, Replacement: replacement, Enabled: true}
}

// Normalize lowercases the trigger and truncates the replacement.
func (e Entry) Normalize() Entry {
	e.Trigger = strings.ToLower(strings.TrimSpace(e.Trigger))
	e.Replacement = Truncate(e.Replacement)
	return e
}

// Validate checks a normalized entry.
func (e Entry) Validate() error {
	if e.Trigger == "" {
		return ErrEmptyTrigger
	}
	if strings.IndexFunc(e.Trigger, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q", ErrTriggerSpace, e.Trigger)
	}
	if e.Replacement == "" {
		return ErrEmptyReplacement
	}
	return nil
}

// Truncate cuts s to MaxReplacement code points.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxReplacement {
		return s
	}
	return string([]rune(s)[:MaxReplacement])
}

// Defaults returns the common abbreviations offered on first run.
func Defaults() []Entry {
	return []Entry{
		New("vn", "Việt Nam"),
		New("hcm", "Hồ Chí Minh"),
		New("hn", "Hà Nội"),
		New("dc", "được"),
		New("ko", "không"),
	}
}

// ForMethod filters entries down to the enabled ones active under m.
func ForMethod(entries []Entry, m engine.Method) []engine.Shortcut {
	out := make([]engine.Shortcut, 0, len(entries))
	for _, e := range entries {
		if e.Enabled && e.Method.AppliesTo(m) {
			out = append(out, engine.Shortcut{Trigger: e.Trigger, Replacement: e.Replacement})
		}
	}
	return out
}
