// Package platformtest provides in-memory platform services: a tap that
// tests drive by hand, a recording poster and a simulated text field that
// applies posted events the way a simple editor would.
package platformtest

import (
	"errors"
	"sync"
	"unicode/utf16"

	"goxviet/internal/keyevent"
	"goxviet/internal/platform"
	"goxviet/internal/synth"
)

// Tap is a manually driven EventTap.
type Tap struct {
	mu   sync.Mutex
	sink platform.Sink

	// StartErr is returned by Start when set.
	StartErr error
	Starts   int
}

func (t *Tap) Start(sink platform.Sink) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Starts++
	if t.StartErr != nil {
		return t.StartErr
	}
	if t.sink != nil {
		return platform.ErrAlreadyRunning
	}
	t.sink = sink
	return nil
}

func (t *Tap) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = nil
	return nil
}

func (t *Tap) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sink != nil
}

// Emit delivers ev to the sink. A stopped tap passes everything.
func (t *Tap) Emit(ev keyevent.KeyEvent) platform.Verdict {
	t.mu.Lock()
	sink := t.sink
	t.mu.Unlock()
	if sink == nil {
		return platform.Pass
	}
	return sink.HandleEvent(ev)
}

// Poster records posted events and, when Target is set, applies them.
type Poster struct {
	mu     sync.Mutex
	events []synth.Event

	Target *TextField
	// Echo, when set, receives every posted event as the tap would see it.
	Echo func(keyevent.KeyEvent)
}

func (p *Poster) Post(ev synth.Event) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	target, echo := p.Target, p.Echo
	p.mu.Unlock()

	if target != nil {
		target.apply(ev)
	}
	if echo != nil && !ev.IsText() {
		kind := keyevent.KindKeyUp
		if ev.Down {
			kind = keyevent.KindKeyDown
		}
		echo(keyevent.KeyEvent{KeyCode: ev.KeyCode, Modifiers: ev.Modifiers, Kind: kind, Synthetic: ev.Marked()})
	}
	return nil
}

// Events returns a copy of everything posted.
func (p *Poster) Events() []synth.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]synth.Event(nil), p.events...)
}

// Reset forgets recorded events.
func (p *Poster) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// Step is a compact description of a posted key-down or text event.
type Step struct {
	Key  uint16
	Mods keyevent.Modifiers
	Text string
}

// Steps summarises posted events: key-downs by code and modifiers, text
// payloads by content. Key-ups are omitted.
func (p *Poster) Steps() []Step {
	var out []Step
	for _, ev := range p.Events() {
		if !ev.Down {
			continue
		}
		if ev.IsText() {
			out = append(out, Step{Text: string(ev.Text)})
			continue
		}
		out = append(out, Step{Key: ev.KeyCode, Mods: ev.Modifiers})
	}
	return out
}

// TextField is a single-line text field addressed in UTF-16 code units.
// It implements platform.Element and applies synthesized key events.
type TextField struct {
	mu    sync.Mutex
	units []uint16
	sel   platform.Range

	RoleName string
	App      string

	// OnSetValue rewrites a value written through the accessibility API,
	// simulating an application that reacts to the write.
	OnSetValue func(v string) string
	// FailReads and FailWrites make that many accessibility calls fail
	// transiently before succeeding.
	FailReads  int
	FailWrites int

	Writes   int
	Released int
}

var errTransient = errors.New("transient")

// NewTextField returns a field containing text with the caret at the end.
func NewTextField(role, app, text string) *TextField {
	f := &TextField{RoleName: role, App: app}
	f.units = utf16.Encode([]rune(text))
	f.sel = platform.Range{Location: len(f.units)}
	return f
}

// Text returns the current content.
func (f *TextField) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(utf16.Decode(f.units))
}

// Selection returns the current selection.
func (f *TextField) Selection() platform.Range {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sel
}

// Select sets the selection directly.
func (f *TextField) Select(r platform.Range) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sel = f.clamp(r)
}

func (f *TextField) clamp(r platform.Range) platform.Range {
	n := len(f.units)
	if r.Location < 0 {
		r.Location = 0
	}
	if r.Location > n {
		r.Location = n
	}
	if r.Length < 0 {
		r.Length = 0
	}
	if r.Location+r.Length > n {
		r.Length = n - r.Location
	}
	return r
}

func (f *TextField) Role() (string, error) { return f.RoleName, nil }
func (f *TextField) AppID() (string, error) { return f.App, nil }

func (f *TextField) Value() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailReads > 0 {
		f.FailReads--
		return "", errTransient
	}
	return string(utf16.Decode(f.units)), nil
}

func (f *TextField) SelectedRange() (platform.Range, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sel, nil
}

func (f *TextField) SetValue(v string) error {
	f.mu.Lock()
	if f.FailWrites > 0 {
		f.FailWrites--
		f.mu.Unlock()
		return errTransient
	}
	hook := f.OnSetValue
	f.mu.Unlock()

	if hook != nil {
		v = hook(v)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes++
	f.units = utf16.Encode([]rune(v))
	f.sel = platform.Range{Location: len(f.units)}
	return nil
}

func (f *TextField) SetSelectedRange(r platform.Range) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sel = f.clamp(r)
	return nil
}

func (f *TextField) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Released++
}

func (f *TextField) replaceSelection(ins []uint16) {
	start, end := f.sel.Location, f.sel.End()
	out := make([]uint16, 0, len(f.units)-(end-start)+len(ins))
	out = append(out, f.units[:start]...)
	out = append(out, ins...)
	out = append(out, f.units[end:]...)
	f.units = out
	f.sel = platform.Range{Location: start + len(ins)}
}

func isSpace(u uint16) bool { return u == ' ' || u == '\t' }

// apply interprets one synthesized event. Only key-downs and text
// key-downs change the field.
func (f *TextField) apply(ev synth.Event) {
	if !ev.Down {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if ev.IsText() {
		f.replaceSelection(utf16.Encode(ev.Text))
		return
	}
	switch ev.KeyCode {
	case keyevent.KeyDelete:
		if f.sel.Length > 0 {
			f.replaceSelection(nil)
			return
		}
		if f.sel.Location == 0 {
			return
		}
		start := f.sel.Location - 1
		if ev.Modifiers.Has(keyevent.ModOption) {
			for start > 0 && isSpace(f.units[start]) {
				start--
			}
			for start > 0 && !isSpace(f.units[start-1]) {
				start--
			}
		}
		f.sel = platform.Range{Location: start, Length: f.sel.Location - start}
		f.replaceSelection(nil)
	case keyevent.KeyForwardDelete:
		if f.sel.Length == 0 && f.sel.Location < len(f.units) {
			f.sel.Length = 1
		}
		f.replaceSelection(nil)
	case keyevent.KeyArrowLeft:
		if ev.Modifiers.Has(keyevent.ModShift) {
			if f.sel.Location > 0 {
				f.sel = platform.Range{Location: f.sel.Location - 1, Length: f.sel.Length + 1}
			}
			return
		}
		if f.sel.Length > 0 {
			f.sel = platform.Range{Location: f.sel.Location}
		} else if f.sel.Location > 0 {
			f.sel.Location--
		}
	case keyevent.KeyArrowRight:
		if f.sel.Length > 0 {
			f.sel = platform.Range{Location: f.sel.End()}
		} else if f.sel.Location < len(f.units) {
			f.sel.Location++
		}
	}
}

// AX serves one focused element.
type AX struct {
	mu sync.Mutex

	Focused   platform.Element
	Frontmost string

	// FocusErrors makes that many FocusedElement calls fail transiently.
	FocusErrors int
	Queries     int
}

func (a *AX) FocusedElement() (platform.Element, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Queries++
	if a.FocusErrors > 0 {
		a.FocusErrors--
		return nil, platform.ErrAccessibility
	}
	if a.Focused == nil {
		return nil, platform.ErrNoFocus
	}
	return a.Focused, nil
}

func (a *AX) FrontmostAppID() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Frontmost == "" {
		return "", platform.ErrNoFocus
	}
	return a.Frontmost, nil
}

// SetFocus swaps the focused element.
func (a *AX) SetFocus(el platform.Element, frontmost string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Focused = el
	a.Frontmost = frontmost
}

// Permission is a settable permission state.
type Permission struct {
	Granted bool
	Prompts int
}

func (p *Permission) Trusted() bool { return p.Granted }

func (p *Permission) Prompt() bool {
	p.Prompts++
	return p.Granted
}

// InputSource is a settable input source.
type InputSource struct{ NonLatin bool }

func (s *InputSource) IsLatin() bool { return !s.NonLatin }

// KeyState is a settable physical shift state.
type KeyState struct{ Shift bool }

func (k *KeyState) ShiftDown() bool { return k.Shift }

// Workspace lets tests announce application switches.
type Workspace struct {
	mu       sync.Mutex
	watchers map[int]func(string)
	next     int
}

func (w *Workspace) Watch(fn func(string)) (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watchers == nil {
		w.watchers = make(map[int]func(string))
	}
	id := w.next
	w.next++
	w.watchers[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.watchers, id)
	}, nil
}

// Activate notifies every watcher that appID came to the front.
func (w *Workspace) Activate(appID string) {
	w.mu.Lock()
	fns := make([]func(string), 0, len(w.watchers))
	for _, fn := range w.watchers {
		fns = append(fns, fn)
	}
	w.mu.Unlock()
	for _, fn := range fns {
		fn(appID)
	}
}

// Env is a full set of fakes wired together.
type Env struct {
	Tap        *Tap
	Poster     *Poster
	AX         *AX
	Permission *Permission
	Input      *InputSource
	Keys       *KeyState
	Workspace  *Workspace
	Field      *TextField
}

// NewEnv returns fakes with a granted permission and field focused in app.
func NewEnv(role, app, text string) *Env {
	field := NewTextField(role, app, text)
	return &Env{
		Tap:        &Tap{},
		Poster:     &Poster{Target: field},
		AX:         &AX{Focused: field, Frontmost: app},
		Permission: &Permission{Granted: true},
		Input:      &InputSource{},
		Keys:       &KeyState{},
		Workspace:  &Workspace{},
		Field:      field,
	}
}

// Services returns the fakes as platform.Services.
func (e *Env) Services() platform.Services {
	return platform.Services{
		Tap:         e.Tap,
		Poster:      e.Poster,
		AX:          e.AX,
		Permission:  e.Permission,
		InputSource: e.Input,
		KeyState:    e.Keys,
		Workspace:   e.Workspace,
	}
}
