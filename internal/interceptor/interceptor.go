// Package interceptor is the front of the pipeline: it owns the
// system-wide event tap, filters our own synthetic events, handles the
// enable toggle and hands ordinary key-downs to the composition
// controller.
package interceptor

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"goxviet/internal/composition"
	"goxviet/internal/engine"
	"goxviet/internal/keyevent"
	"goxviet/internal/logging"
	"goxviet/internal/platform"
	"goxviet/internal/shortcut"
)

// Invalidator drops cached focus decisions on application switches.
type Invalidator interface {
	Invalidate()
}

// Options configures an Interceptor.
type Options struct {
	// Toggle is the enable shortcut. The zero value means Control+Space.
	Toggle  shortcut.Toggle
	Enabled bool
	Logger  *slog.Logger
	// Crash records panics in the event handler. Nil logs them only.
	Crash *logging.CrashHandler
}

// Interceptor implements platform.Sink.
type Interceptor struct {
	svc    platform.Services
	client *engine.Client
	ctrl   *composition.Controller
	cache  Invalidator
	log    *slog.Logger
	crash  *logging.CrashHandler

	enabled atomic.Bool
	toggle  atomic.Pointer[shortcut.Toggle]
	// resetPending is set off the tap thread and consumed on it, so
	// composition state is only cleared from the callback.
	resetPending atomic.Bool

	hookMu   sync.Mutex
	onToggle func(enabled bool)
	onMethod func(m engine.Method)

	mu        sync.Mutex
	stopWatch func()
}

// New assembles an interceptor from already built parts. cache may be nil.
func New(svc platform.Services, client *engine.Client, ctrl *composition.Controller, cache Invalidator, opts Options) *Interceptor {
	if svc.InputSource == nil {
		svc.InputSource = platform.Latin{}
	}
	i := &Interceptor{
		svc:    svc,
		client: client,
		ctrl:   ctrl,
		cache:  cache,
		log:    logging.OrDiscard(opts.Logger),
		crash:  opts.Crash,
	}
	if i.crash == nil {
		i.crash = logging.NewCrashHandler(&logging.CrashHandlerConfig{Component: "interceptor", Logger: i.log})
	}
	t := opts.Toggle
	if t == (shortcut.Toggle{}) {
		t = shortcut.Default()
	}
	i.toggle.Store(&t)
	i.enabled.Store(opts.Enabled)
	return i
}

// Start checks the accessibility permission and installs the tap. Without
// permission it returns platform.ErrPermissionDenied and leaves the tap
// untouched; call Start again once permission is granted.
func (i *Interceptor) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.svc.Tap.Running() {
		return platform.ErrAlreadyRunning
	}
	if i.svc.Permission == nil || !i.svc.Permission.Trusted() {
		i.log.Warn("accessibility permission not granted")
		return platform.ErrPermissionDenied
	}

	i.client.Init()
	i.client.SetEnabled(i.enabled.Load())
	if err := i.svc.Tap.Start(i); err != nil {
		return fmt.Errorf("interceptor: start tap: %w", err)
	}

	if i.svc.Workspace != nil {
		stop, err := i.svc.Workspace.Watch(i.appActivated)
		if err != nil {
			i.log.Warn("application switch notifications unavailable", "error", err)
		} else {
			i.stopWatch = stop
		}
	}
	i.log.Info("interceptor started", "enabled", i.enabled.Load(), "toggle", i.CurrentShortcut().String())
	return nil
}

// Stop removes the tap. It is safe to call on a stopped interceptor.
func (i *Interceptor) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.stopWatch != nil {
		i.stopWatch()
		i.stopWatch = nil
	}
	if !i.svc.Tap.Running() {
		return nil
	}
	if err := i.svc.Tap.Stop(); err != nil {
		return fmt.Errorf("interceptor: stop tap: %w", err)
	}
	i.ctrl.Reset()
	i.log.Info("interceptor stopped")
	return nil
}

// IsRunning reports whether the tap is installed.
func (i *Interceptor) IsRunning() bool {
	return i.svc.Tap.Running()
}

func (i *Interceptor) appActivated(appID string) {
	i.resetPending.Store(true)
	if i.cache != nil {
		i.cache.Invalidate()
	}
	i.log.Debug("application activated", "app", appID)
}

// HandleEvent implements platform.Sink. It never panics into the tap.
func (i *Interceptor) HandleEvent(ev keyevent.KeyEvent) (v platform.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			i.crash.HandlePanic(r, map[string]any{"kind": ev.Kind.String()})
			v = platform.Pass
		}
	}()

	if ev.Synthetic {
		return platform.Pass
	}
	if i.resetPending.Swap(false) {
		i.ctrl.Reset()
	}

	toggle := i.CurrentShortcut()
	switch ev.Kind {
	case keyevent.KindMouseDown:
		i.ctrl.Reset()
		return platform.Pass
	case keyevent.KindModifiersChanged, keyevent.KindKeyUp:
		if shortcut.Matches(ev, toggle) {
			i.flip()
			return platform.Swallow
		}
		return platform.Pass
	case keyevent.KindKeyDown:
	default:
		return platform.Pass
	}

	if shortcut.Matches(ev, toggle) {
		i.flip()
		return platform.Swallow
	}
	if ev.IsChord() {
		i.ctrl.Reset()
		return platform.Pass
	}
	if !i.enabled.Load() || !i.svc.InputSource.IsLatin() {
		return platform.Pass
	}
	return i.ctrl.HandleKey(ev)
}

// flip runs on the tap thread.
func (i *Interceptor) flip() {
	on := !i.enabled.Load()
	i.setEnabled(on)
	i.resetPending.Store(false)
	i.ctrl.Reset()
}

func (i *Interceptor) setEnabled(on bool) {
	if i.enabled.Swap(on) == on {
		return
	}
	i.client.SetEnabled(on)
	i.resetPending.Store(true)
	i.log.Info("input toggled", "enabled", on)

	i.hookMu.Lock()
	fn := i.onToggle
	i.hookMu.Unlock()
	if fn != nil {
		fn(on)
	}
}

// Enable turns Vietnamese input on.
func (i *Interceptor) Enable() { i.setEnabled(true) }

// Disable turns Vietnamese input off.
func (i *Interceptor) Disable() { i.setEnabled(false) }

// Toggle flips the enabled flag and returns the new state.
func (i *Interceptor) Toggle() bool {
	on := !i.enabled.Load()
	i.setEnabled(on)
	return on
}

// IsEnabled reports whether Vietnamese input is on.
func (i *Interceptor) IsEnabled() bool {
	return i.enabled.Load()
}

// OnToggle registers fn to be called with the new state after every
// change of the enabled flag. It replaces any earlier hook.
func (i *Interceptor) OnToggle(fn func(enabled bool)) {
	i.hookMu.Lock()
	defer i.hookMu.Unlock()
	i.onToggle = fn
}

// OnMethodChange registers fn to be called after the input method changes.
func (i *Interceptor) OnMethodChange(fn func(m engine.Method)) {
	i.hookMu.Lock()
	defer i.hookMu.Unlock()
	i.onMethod = fn
}

// SetInputMethod switches between Telex and VNI.
func (i *Interceptor) SetInputMethod(m engine.Method) {
	prev := i.client.Settings().Method
	i.client.SetMethod(m)
	i.resetPending.Store(true)
	if prev != m {
		i.methodChanged(m)
	}
}

// SetToneStyle selects modern (true) or traditional tone placement.
func (i *Interceptor) SetToneStyle(modern bool) {
	i.client.SetModernTone(modern)
	i.resetPending.Store(true)
}

// ApplySettings pushes a full settings snapshot to the engine.
func (i *Interceptor) ApplySettings(s engine.Settings) {
	prev := i.client.Settings().Method
	i.client.Apply(s)
	i.resetPending.Store(true)
	if prev != s.Method {
		i.methodChanged(s.Method)
	}
}

func (i *Interceptor) methodChanged(m engine.Method) {
	i.log.Info("input method changed", "method", m.String())
	i.hookMu.Lock()
	fn := i.onMethod
	i.hookMu.Unlock()
	if fn != nil {
		fn(m)
	}
}

// SetShortcut replaces the toggle shortcut wholesale.
func (i *Interceptor) SetShortcut(t shortcut.Toggle) error {
	if err := t.Validate(); err != nil {
		return err
	}
	i.toggle.Store(&t)
	i.log.Info("toggle shortcut changed", "toggle", t.String())
	return nil
}

// CurrentShortcut returns the toggle shortcut in force.
func (i *Interceptor) CurrentShortcut() shortcut.Toggle {
	return *i.toggle.Load()
}
