package composition

import (
	"log/slog"
	"sync/atomic"
	"time"
	"unicode"

	"goxviet/internal/engine"
	"goxviet/internal/inject"
	"goxviet/internal/keyevent"
	"goxviet/internal/platform"
)

// DeleteCoalescer handles the delete key. A delete is swallowed and
// replaced by what the engine asks for, a native backspace, or one word
// delete per Shift+Delete burst. When posting fails the state is dropped
// and the key passes to the OS.
type DeleteCoalescer struct {
	client *engine.Client
	inj    Injector
	buf    *Buffer
	keys   platform.KeyState
	log    *slog.Logger

	wordDelete atomic.Bool
	window     time.Duration
	now        func() time.Time

	lastWord time.Time
	inBurst  bool
}

func newDeleteCoalescer(client *engine.Client, inj Injector, buf *Buffer, opts Options, log *slog.Logger) *DeleteCoalescer {
	d := &DeleteCoalescer{
		client: client,
		inj:    inj,
		buf:    buf,
		keys:   opts.KeyState,
		log:    log,
		window: opts.WordDeleteWindow,
		now:    opts.Now,
	}
	d.wordDelete.Store(opts.WordDelete)
	if d.keys == nil {
		d.keys = platform.NoShift{}
	}
	if d.window <= 0 {
		d.window = DefaultWordDeleteWindow
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// SetWordDelete turns the Shift+Delete word delete on or off. It may be
// called from any goroutine.
func (d *DeleteCoalescer) SetWordDelete(on bool) {
	d.wordDelete.Store(on)
}

// Handle processes one delete key-down.
func (d *DeleteCoalescer) Handle(ev keyevent.KeyEvent) platform.Verdict {
	// Event flags can miss a held shift on this key; the physical state
	// is consulted here and nowhere else.
	shift := ev.Shift() || d.keys.ShiftDown()

	if shift && d.wordDelete.Load() {
		return d.deleteWord()
	}
	d.inBurst = false

	upper := ev.CapsLock() != shift
	res := d.client.Key(ev, upper, shift)
	switch {
	case res != nil && res.Action != engine.ActionNone && (res.Backspace > 0 || len(res.Chars) > 0):
		rep := d.inj.Replace(res.Backspace, res.Chars)
		if rep.Outcome == inject.OutcomeFailed {
			return d.fail("delete replacement failed", rep.Err)
		}
		d.buf.Apply(res.Backspace, res.Chars)
		if rep.Err != nil {
			d.log.Debug("delete replacement incomplete", "outcome", rep.Outcome.String(), "error", rep.Err)
		}
	case res != nil && res.Action == engine.ActionNone && res.Backspace > 0:
		if err := d.inj.DeleteRaw(res.Backspace); err != nil {
			return d.fail("raw delete failed", err)
		}
		d.buf.Delete(res.Backspace)
	default:
		return d.native()
	}
	return platform.Swallow
}

// fail drops composition state and lets the OS delete.
func (d *DeleteCoalescer) fail(msg string, err error) platform.Verdict {
	d.log.Warn(msg, "error", err)
	d.client.ClearAll()
	d.buf.Reset()
	d.inBurst = false
	return platform.Pass
}

func (d *DeleteCoalescer) deleteWord() platform.Verdict {
	now := d.now()
	coalesced := d.inBurst && now.Sub(d.lastWord) < d.window
	d.lastWord, d.inBurst = now, true
	if coalesced {
		return platform.Swallow
	}
	d.client.ClearAll()
	if err := d.inj.Chord(keyevent.KeyDelete, keyevent.ModOption); err != nil {
		return d.fail("word delete failed", err)
	}
	d.buf.DeleteWord()
	return platform.Swallow
}

// native deletes one character with the OS's own backspace. When that
// uncovers the end of a mirrored word, the word is handed back to the
// engine so its tones can still be edited.
func (d *DeleteCoalescer) native() platform.Verdict {
	if err := d.inj.DeleteRaw(1); err != nil {
		return d.fail("native delete failed", err)
	}
	r, ok := d.buf.Backspace()
	if !ok || !unicode.IsSpace(r) {
		return platform.Swallow
	}
	if word := d.buf.LastWord(); word != "" {
		d.client.RestoreWord(word)
	}
	return platform.Swallow
}
