package engine

import (
	"log/slog"
	"sync"

	"goxviet/internal/keyevent"
	"goxviet/internal/logging"
)

// Settings are the engine options the pipeline controls.
type Settings struct {
	Method           Method
	ModernTone       bool
	EscRestore       bool
	FreeTone         bool
	InstantRestore   bool
	SkipWShortcut    bool
	ShortcutsEnabled bool
}

// DefaultSettings mirrors the engine's own defaults.
func DefaultSettings() Settings {
	return Settings{
		Method:           MethodTelex,
		ModernTone:       true,
		EscRestore:       true,
		InstantRestore:   true,
		ShortcutsEnabled: true,
	}
}

// Shortcut is one text-expansion pair handed to the engine.
type Shortcut struct {
	Trigger     string
	Replacement string
}

// PlanKind says whether a result leaves the key alone or replaces text.
type PlanKind uint8

const (
	PlanPass PlanKind = iota
	PlanReplace
)

// Plan is an engine result reduced to what the injector needs.
type Plan struct {
	Kind      PlanKind
	Action    Action
	Backspace int
	Text      []rune
}

// PlanFor converts r. Nil and None results pass the key through, as does
// a Send that neither deletes nor inserts.
func PlanFor(r *Result) Plan {
	if r == nil || r.Action == ActionNone {
		return Plan{Kind: PlanPass}
	}
	if r.Backspace == 0 && len(r.Chars) == 0 {
		return Plan{Kind: PlanPass, Action: r.Action}
	}
	return Plan{Kind: PlanReplace, Action: r.Action, Backspace: r.Backspace, Text: r.Chars}
}

// Client owns the engine for the lifetime of a pipeline. Engine calls are
// serialized: settings may change from other goroutines while the tap
// thread is processing keys.
type Client struct {
	eng  Engine
	log  *slog.Logger
	once sync.Once

	mu       sync.Mutex
	settings Settings
}

// NewClient wraps eng. A nil eng is replaced by Unavailable.
func NewClient(eng Engine, log *slog.Logger) *Client {
	if eng == nil {
		eng = Unavailable{}
	}
	return &Client{eng: eng, log: logging.OrDiscard(log), settings: DefaultSettings()}
}

// Init initialises the engine. Only the first call reaches the engine.
func (c *Client) Init() {
	c.once.Do(func() {
		c.mu.Lock()
		c.eng.Init()
		c.mu.Unlock()
		c.log.Debug("engine initialised", "native", NativeAvailable())
	})
}

// Apply pushes s to the engine.
func (c *Client) Apply(s Settings) {
	c.Init()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
	c.eng.SetMethod(s.Method)
	c.eng.SetModernTone(s.ModernTone)
	c.eng.SetEscRestore(s.EscRestore)
	c.eng.SetFreeTone(s.FreeTone)
	c.eng.SetInstantRestore(s.InstantRestore)
	c.eng.SetSkipWShortcut(s.SkipWShortcut)
	c.eng.SetShortcutsEnabled(s.ShortcutsEnabled)
	c.log.Debug("engine settings applied", "method", s.Method.String(), "modern_tone", s.ModernTone)
}

// Settings returns the last applied settings.
func (c *Client) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetMethod changes only the input method.
func (c *Client) SetMethod(m Method) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Method = m
	c.eng.SetMethod(m)
}

// SetModernTone changes only the tone placement style.
func (c *Client) SetModernTone(modern bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.ModernTone = modern
	c.eng.SetModernTone(modern)
}

// SetEnabled mirrors the pipeline's enabled flag into the engine.
func (c *Client) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eng.SetEnabled(enabled)
}

// Key sends one key to the engine. uppercase and shift are decided by the
// caller: they are not always the same thing.
func (c *Client) Key(ev keyevent.KeyEvent, uppercase, shift bool) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.ProcessKeyExt(ev.KeyCode, uppercase, ev.Modifiers.Has(keyevent.ModControl), shift)
}

// Escape asks the engine to restore the raw keystrokes of the current word.
func (c *Client) Escape() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.ProcessKey(keyevent.KeyEscape, false, false)
}

// RestoreWord re-seeds the composition buffer from word.
func (c *Client) RestoreWord(word string) {
	if word == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eng.RestoreWord(word)
}

// ClearComposition drops the current word.
func (c *Client) ClearComposition() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eng.ClearComposition()
}

// ClearAll drops the current word and the restore history.
func (c *Client) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eng.ClearAllState()
}

// ReplaceShortcuts clears the engine dictionary and loads entries.
// It returns how many the engine accepted.
func (c *Client) ReplaceShortcuts(entries []Shortcut) int {
	c.mu.Lock()
	c.eng.ClearShortcuts()
	added := 0
	for _, e := range entries {
		if c.eng.AddShortcut(e.Trigger, e.Replacement) {
			added++
		}
	}
	c.mu.Unlock()
	if added < len(entries) {
		c.log.Warn("engine rejected shortcuts", "offered", len(entries), "added", added)
	}
	return added
}

// RemoveShortcut removes one trigger from the engine dictionary.
func (c *Client) RemoveShortcut(trigger string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eng.RemoveShortcut(trigger)
}
