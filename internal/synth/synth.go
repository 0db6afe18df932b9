// Package synth describes the events this process synthesizes and the
// marker that lets the interceptor recognise them when they come back
// through the system-wide event tap.
package synth

import (
	"unicode/utf16"

	"goxviet/internal/keyevent"
)

// Marker is written into the user-data field of every synthesized event.
// The value spells "GOXVIET!" in ASCII.
const Marker int64 = 0x474F585649455421

// DefaultChunkLimit is the largest text payload, in UTF-16 code units,
// the macOS event API accepts on a single keyboard event.
const DefaultChunkLimit = 20

// IsOwn reports whether a raw user-data value carries our marker.
func IsOwn(userData int64) bool {
	return userData == Marker
}

// Event is a single synthetic event. When Text is non-empty the event
// carries a text payload and KeyCode is ignored by the platform.
type Event struct {
	KeyCode   uint16
	Modifiers keyevent.Modifiers
	Down      bool
	Text      []rune
	Marker    int64
}

// IsText reports whether the event carries a text payload.
func (e Event) IsText() bool {
	return len(e.Text) > 0
}

// Marked reports whether the event carries our marker.
func (e Event) Marked() bool {
	return IsOwn(e.Marker)
}

// Poster posts synthetic events to the operating system.
type Poster interface {
	Post(ev Event) error
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(ev Event) error

// Post calls f(ev).
func (f PosterFunc) Post(ev Event) error {
	return f(ev)
}

// MarkingPoster stamps the marker on every event before forwarding it.
type MarkingPoster struct {
	next Poster
}

// NewMarkingPoster wraps p. Wrapping an existing MarkingPoster returns it.
func NewMarkingPoster(p Poster) *MarkingPoster {
	if mp, ok := p.(*MarkingPoster); ok {
		return mp
	}
	return &MarkingPoster{next: p}
}

// Post stamps ev and forwards it.
func (m *MarkingPoster) Post(ev Event) error {
	Stamp(&ev)
	return m.next.Post(ev)
}

// Stamp sets the marker on ev.
func Stamp(ev *Event) {
	ev.Marker = Marker
}

// KeyPress returns the key-down/key-up pair for code with mods held.
func KeyPress(code uint16, mods keyevent.Modifiers) [2]Event {
	return [2]Event{
		{KeyCode: code, Modifiers: mods, Down: true},
		{KeyCode: code, Modifiers: mods, Down: false},
	}
}

// Chunks splits text into payloads of at most limit UTF-16 code units.
// Surrogate pairs are never split. A limit below 2 is raised to 2.
func Chunks(text []rune, limit int) [][]rune {
	if len(text) == 0 {
		return nil
	}
	if limit < 2 {
		limit = 2
	}
	var (
		out   [][]rune
		start int
		units int
	)
	for i, r := range text {
		w := utf16.RuneLen(r)
		if w < 1 {
			w = 1
		}
		if units+w > limit {
			out = append(out, text[start:i])
			start, units = i, 0
		}
		units += w
	}
	return append(out, text[start:])
}

// UTF16Len returns the length of text in UTF-16 code units.
func UTF16Len(text []rune) int {
	n := 0
	for _, r := range text {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}
