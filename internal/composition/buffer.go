package composition

import (
	"sync"
	"unicode"
)

// DefaultBufferLimit bounds the session mirror in runes.
const DefaultBufferLimit = 256

// Buffer is a best-effort mirror of the text typed and injected since the
// last reset. The foreign application's text is authoritative; the buffer
// only feeds restore-on-delete.
type Buffer struct {
	mu    sync.Mutex
	runes []rune
	limit int
}

// NewBuffer returns an empty buffer keeping at most limit runes.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultBufferLimit
	}
	return &Buffer{limit: limit}
}

// Append mirrors typed runes.
func (b *Buffer) Append(rs ...rune) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runes = append(b.runes, rs...)
	b.trim()
}

// Apply mirrors a replacement: backspace runes are removed, then text added.
func (b *Buffer) Apply(backspace int, text []rune) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drop(backspace)
	b.runes = append(b.runes, text...)
	b.trim()
}

// Delete removes the last n runes.
func (b *Buffer) Delete(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drop(n)
}

// Backspace removes the last rune and returns it.
func (b *Buffer) Backspace() (rune, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.runes) == 0 {
		return 0, false
	}
	r := b.runes[len(b.runes)-1]
	b.runes = b.runes[:len(b.runes)-1]
	return r, true
}

// DeleteWord removes trailing whitespace and the word before it, as an
// Option+Delete does.
func (b *Buffer) DeleteWord() {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := len(b.runes)
	for i > 0 && unicode.IsSpace(b.runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(b.runes[i-1]) {
		i--
	}
	b.runes = b.runes[:i]
}

// LastWord returns the word the buffer ends with, or "" when it ends with
// whitespace or is empty.
func (b *Buffer) LastWord() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := len(b.runes)
	for i > 0 && !unicode.IsSpace(b.runes[i-1]) {
		i--
	}
	return string(b.runes[i:])
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runes = b.runes[:0]
}

// String returns the mirrored text.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.runes)
}

// Len returns the number of mirrored runes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.runes)
}

func (b *Buffer) drop(n int) {
	if n > len(b.runes) {
		n = len(b.runes)
	}
	if n > 0 {
		b.runes = b.runes[:len(b.runes)-n]
	}
}

func (b *Buffer) trim() {
	if over := len(b.runes) - b.limit; over > 0 {
		b.runes = append(b.runes[:0], b.runes[over:]...)
	}
}
