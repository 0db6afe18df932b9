// Package platform declares the operating-system services the pipeline
// consumes: the system-wide event tap, synthetic event posting, the
// accessibility tree, permission state, the active input source and the
// physical keyboard state.
//
// The darwin implementation is native; every other platform reports the
// services as unavailable.
package platform

import (
	"errors"

	"goxviet/internal/keyevent"
	"goxviet/internal/synth"
)

var (
	// ErrPermissionDenied means the accessibility capability is not granted.
	ErrPermissionDenied = errors.New("accessibility permission denied")
	// ErrAlreadyRunning is returned by Start on a running tap.
	ErrAlreadyRunning = errors.New("event tap already running")
	// ErrUnavailable means the service is not implemented on this platform.
	ErrUnavailable = errors.New("platform service unavailable")
	// ErrNoFocus means no focused element could be resolved.
	ErrNoFocus = errors.New("no focused element")
	// ErrAccessibility is a transient accessibility API failure.
	ErrAccessibility = errors.New("accessibility api failure")
)

// Verdict is what the tap does with an event after the sink has seen it.
type Verdict uint8

const (
	// Pass delivers the event unchanged.
	Pass Verdict = iota
	// Swallow drops the event.
	Swallow
)

func (v Verdict) String() string {
	if v == Swallow {
		return "swallow"
	}
	return "pass"
}

// Sink receives every event observed by an EventTap, on the tap's
// callback thread, one at a time.
type Sink interface {
	HandleEvent(ev keyevent.KeyEvent) Verdict
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev keyevent.KeyEvent) Verdict

// HandleEvent calls f(ev).
func (f SinkFunc) HandleEvent(ev keyevent.KeyEvent) Verdict {
	return f(ev)
}

// EventTap is a system-wide, highest-priority key event subscription able
// to suppress events before normal delivery.
type EventTap interface {
	Start(sink Sink) error
	Stop() error
	Running() bool
}

// Range is a text range in UTF-16 code units.
type Range struct {
	Location int
	Length   int
}

// End returns Location+Length.
func (r Range) End() int {
	return r.Location + r.Length
}

// Element is a focused UI element. Callers must Release it.
type Element interface {
	Role() (string, error)
	AppID() (string, error)
	Value() (string, error)
	SelectedRange() (Range, error)
	SetValue(v string) error
	SetSelectedRange(r Range) error
	Release()
}

// Accessibility queries the accessibility tree.
type Accessibility interface {
	FocusedElement() (Element, error)
	FrontmostAppID() (string, error)
}

// Permission reports the accessibility capability.
type Permission interface {
	Trusted() bool
	// Prompt asks the system to show its permission dialog and reports
	// the current state.
	Prompt() bool
}

// InputSource reports whether the active keyboard layout is Latin script.
type InputSource interface {
	IsLatin() bool
}

// KeyState reads the physical keyboard state, independent of event flags.
type KeyState interface {
	ShiftDown() bool
}

// Workspace reports frontmost application changes.
type Workspace interface {
	// Watch calls fn with the new application id on every activation until
	// the returned stop function is called. fn runs off the tap thread.
	Watch(fn func(appID string)) (stop func(), err error)
}

// Services bundles one implementation of each service.
type Services struct {
	Tap         EventTap
	Poster      synth.Poster
	AX          Accessibility
	Permission  Permission
	InputSource InputSource
	KeyState    KeyState
	Workspace   Workspace
}

// Native returns the services for the running operating system.
func Native() Services {
	return native()
}

// Latin is an InputSource that always reports a Latin layout.
type Latin struct{}

// IsLatin returns true.
func (Latin) IsLatin() bool { return true }

// NoShift is a KeyState that never reports Shift held.
type NoShift struct{}

// ShiftDown returns false.
func (NoShift) ShiftDown() bool { return false }
