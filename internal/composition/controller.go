// Package composition decides, per key-down, whether a key passes through
// or is replaced by engine output, and mirrors the result in a session
// buffer.
package composition

import (
	"log/slog"
	"time"

	"goxviet/internal/engine"
	"goxviet/internal/inject"
	"goxviet/internal/keyevent"
	"goxviet/internal/logging"
	"goxviet/internal/platform"
)

// DefaultWordDeleteWindow is the coalescing window for Shift+Delete bursts.
const DefaultWordDeleteWindow = 50 * time.Millisecond

// Injector is the part of the text injector the controller drives.
type Injector interface {
	Replace(backspace int, text []rune) inject.Report
	DeleteRaw(n int) error
	Chord(code uint16, mods keyevent.Modifiers) error
}

// Options configures a Controller.
type Options struct {
	// WordDelete turns Shift+Delete into a native word delete.
	WordDelete       bool
	WordDeleteWindow time.Duration
	BufferLimit      int
	// KeyState supplies the physical shift state for the delete key.
	KeyState platform.KeyState
	Now      func() time.Time
	Logger   *slog.Logger
}

// DefaultOptions returns word delete enabled with the default window.
func DefaultOptions() Options {
	return Options{WordDelete: true, WordDeleteWindow: DefaultWordDeleteWindow}
}

// Controller is the per-key state machine between the interceptor and the
// engine. It is driven from the tap callback thread only.
type Controller struct {
	client  *engine.Client
	inj     Injector
	buf     *Buffer
	deletes *DeleteCoalescer
	log     *slog.Logger
}

// NewController wires client and inj together.
func NewController(client *engine.Client, inj Injector, opts Options) *Controller {
	log := logging.OrDiscard(opts.Logger)
	buf := NewBuffer(opts.BufferLimit)
	return &Controller{
		client:  client,
		inj:     inj,
		buf:     buf,
		deletes: newDeleteCoalescer(client, inj, buf, opts, log),
		log:     log,
	}
}

// Buffer returns the session mirror.
func (c *Controller) Buffer() *Buffer {
	return c.buf
}

// Deletes returns the delete coalescer.
func (c *Controller) Deletes() *DeleteCoalescer {
	return c.deletes
}

// Reset clears all engine state and the session mirror.
func (c *Controller) Reset() {
	c.client.ClearAll()
	c.buf.Reset()
}

// HandleKey processes one key-down that is neither a chord nor the toggle.
func (c *Controller) HandleKey(ev keyevent.KeyEvent) platform.Verdict {
	switch {
	case ev.KeyCode == keyevent.KeyEscape:
		return c.escape()
	case endsComposition(ev.KeyCode):
		c.Reset()
		return platform.Pass
	case ev.KeyCode == keyevent.KeyDelete:
		return c.deletes.Handle(ev)
	}
	return c.compose(ev)
}

// endsComposition reports keys that move the caret or commit a line.
func endsComposition(code uint16) bool {
	if keyevent.IsNavigation(code) {
		return true
	}
	switch code {
	case keyevent.KeyHome, keyevent.KeyEnd, keyevent.KeyPageUp, keyevent.KeyPageDown:
		return true
	}
	return false
}

func (c *Controller) escape() platform.Verdict {
	res := c.client.Escape()
	if res != nil && res.Action == engine.ActionRestore {
		return c.replace(engine.Plan{
			Kind:      engine.PlanReplace,
			Action:    res.Action,
			Backspace: res.Backspace,
			Text:      res.Chars,
		})
	}
	plan := engine.PlanFor(res)
	if plan.Kind == engine.PlanPass {
		c.buf.Reset()
		return platform.Pass
	}
	return c.replace(plan)
}

func (c *Controller) compose(ev keyevent.KeyEvent) platform.Verdict {
	shift := ev.Shift()
	upper := ev.CapsLock() != shift

	plan := engine.PlanFor(c.client.Key(ev, upper, shift))
	if plan.Kind == engine.PlanPass {
		if r, ok := keyevent.Rune(ev.KeyCode, upper, shift); ok {
			c.buf.Append(r)
		} else {
			c.buf.Reset()
		}
		return platform.Pass
	}
	return c.replace(plan)
}

// replace injects plan and swallows the key. If nothing could be posted
// the key passes through and the engine starts over.
func (c *Controller) replace(plan engine.Plan) platform.Verdict {
	rep := c.inj.Replace(plan.Backspace, plan.Text)
	if rep.Outcome == inject.OutcomeFailed {
		c.log.Warn("injection failed", "strategy", rep.Applied.String(), "error", rep.Err)
		c.Reset()
		return platform.Pass
	}
	if rep.Fallback() {
		c.log.Debug("injection fell back",
			"requested", rep.Requested.String(),
			"applied", rep.Applied.String(),
			"outcome", rep.Outcome.String())
	}
	c.buf.Apply(plan.Backspace, plan.Text)
	return platform.Swallow
}
