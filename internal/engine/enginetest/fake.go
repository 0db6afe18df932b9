// Package enginetest provides a scripted engine for pipeline tests.
package enginetest

import (
	"fmt"
	"strings"
	"sync"

	"goxviet/internal/engine"
)

// Call is one recorded engine call.
type Call struct {
	Name    string
	KeyCode uint16
	Upper   bool
	Ctrl    bool
	Shift   bool
	Arg     string
}

// Fake is a scripted Engine. Keys accumulate in a buffer until a clear;
// when the buffer equals a scripted sequence the scripted result is
// returned, otherwise ActionNone. Queued results take precedence.
type Fake struct {
	mu sync.Mutex

	// RequireInit makes processing calls return nil until Init is called.
	RequireInit bool
	// Capacity bounds the shortcut dictionary; zero means 200.
	Capacity int

	calls       []Call
	initialized bool
	buffer      []uint16
	rules       map[string]engine.Result
	queue       []*engine.Result
	shortcuts   map[string]string
	settings    engine.Settings
	enabled     bool
}

var _ engine.Engine = (*Fake)(nil)

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		rules:     make(map[string]engine.Result),
		shortcuts: make(map[string]string),
	}
}

func seqKey(seq []uint16) string {
	var b strings.Builder
	for i, c := range seq {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", c)
	}
	return b.String()
}

// Script returns res when the buffered key sequence becomes seq.
func (f *Fake) Script(seq []uint16, res engine.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[seqKey(seq)] = res
}

// Queue makes the next processing call return res regardless of buffer
// state. A nil res simulates an uninitialised engine for that call.
func (f *Fake) Queue(res *engine.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, res)
}

// Calls returns a copy of the call log.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns how many times the named method was called.
func (f *Fake) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Reset clears the call log only.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Buffer returns the keys buffered since the last clear.
func (f *Fake) Buffer() []uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint16(nil), f.buffer...)
}

// Shortcuts returns the current dictionary.
func (f *Fake) Shortcuts() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.shortcuts))
	for k, v := range f.shortcuts {
		out[k] = v
	}
	return out
}

// Settings returns what the setters have configured.
func (f *Fake) Settings() engine.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

// Enabled reports the last SetEnabled value.
func (f *Fake) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *Fake) record(c Call) {
	f.calls = append(f.calls, c)
}

func (f *Fake) process(c Call) *engine.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(c)

	if f.RequireInit && !f.initialized {
		return nil
	}
	if len(f.queue) > 0 {
		res := f.queue[0]
		f.queue = f.queue[1:]
		return copyResult(res)
	}
	f.buffer = append(f.buffer, c.KeyCode)
	if res, ok := f.rules[seqKey(f.buffer)]; ok {
		return copyResult(&res)
	}
	return &engine.Result{Action: engine.ActionNone}
}

func copyResult(r *engine.Result) *engine.Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Chars = append([]rune(nil), r.Chars...)
	return &out
}

func (f *Fake) Init() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: "Init"})
	f.initialized = true
}

func (f *Fake) ProcessKey(keyCode uint16, uppercase, ctrl bool) *engine.Result {
	return f.process(Call{Name: "ProcessKey", KeyCode: keyCode, Upper: uppercase, Ctrl: ctrl})
}

func (f *Fake) ProcessKeyExt(keyCode uint16, uppercase, ctrl, shift bool) *engine.Result {
	return f.process(Call{Name: "ProcessKeyExt", KeyCode: keyCode, Upper: uppercase, Ctrl: ctrl, Shift: shift})
}

func (f *Fake) RestoreWord(word string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: "RestoreWord", Arg: word})
}

func (f *Fake) set(name string, arg any, apply func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: name, Arg: fmt.Sprint(arg)})
	apply()
}

func (f *Fake) SetMethod(m engine.Method) {
	f.set("SetMethod", m, func() { f.settings.Method = m })
}

func (f *Fake) SetEnabled(enabled bool) {
	f.set("SetEnabled", enabled, func() { f.enabled = enabled })
}

func (f *Fake) SetModernTone(modern bool) {
	f.set("SetModernTone", modern, func() { f.settings.ModernTone = modern })
}

func (f *Fake) SetEscRestore(enabled bool) {
	f.set("SetEscRestore", enabled, func() { f.settings.EscRestore = enabled })
}

func (f *Fake) SetFreeTone(enabled bool) {
	f.set("SetFreeTone", enabled, func() { f.settings.FreeTone = enabled })
}

func (f *Fake) SetInstantRestore(enabled bool) {
	f.set("SetInstantRestore", enabled, func() { f.settings.InstantRestore = enabled })
}

func (f *Fake) SetSkipWShortcut(skip bool) {
	f.set("SetSkipWShortcut", skip, func() { f.settings.SkipWShortcut = skip })
}

func (f *Fake) SetShortcutsEnabled(enabled bool) {
	f.set("SetShortcutsEnabled", enabled, func() { f.settings.ShortcutsEnabled = enabled })
}

func (f *Fake) ClearComposition() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: "ClearComposition"})
	f.buffer = nil
}

func (f *Fake) ClearAllState() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: "ClearAllState"})
	f.buffer = nil
}

func (f *Fake) AddShortcut(trigger, replacement string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: "AddShortcut", Arg: trigger})
	limit := f.Capacity
	if limit == 0 {
		limit = 200
	}
	if _, exists := f.shortcuts[trigger]; !exists && len(f.shortcuts) >= limit {
		return false
	}
	f.shortcuts[trigger] = replacement
	return true
}

func (f *Fake) RemoveShortcut(trigger string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: "RemoveShortcut", Arg: trigger})
	delete(f.shortcuts, trigger)
}

func (f *Fake) ClearShortcuts() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: "ClearShortcuts"})
	f.shortcuts = make(map[string]string)
}
