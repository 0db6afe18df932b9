package inject

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"goxviet/internal/keyevent"
	"goxviet/internal/logging"
	"goxviet/internal/platform"
	"goxviet/internal/synth"
)

// Default injector tuning.
const (
	DefaultAXRetries = 3
	DefaultAXBackoff = 2 * time.Millisecond
)

// Options tunes an Injector. A zero ChunkLimit or nil Delayer takes the
// default; retries and backoff are used as given, so start from
// DefaultOptions.
type Options struct {
	// ChunkLimit bounds a text payload in UTF-16 code units.
	ChunkLimit int
	// AXRetries is the number of AXDirect attempts after the first.
	AXRetries int
	// AXBackoff is multiplied by the attempt number between attempts.
	AXBackoff time.Duration
	Delayer   Delayer
	Logger    *slog.Logger
}

// DefaultOptions returns the default injector tuning.
func DefaultOptions() Options {
	return Options{
		ChunkLimit: synth.DefaultChunkLimit,
		AXRetries:  DefaultAXRetries,
		AXBackoff:  DefaultAXBackoff,
	}
}

// Injector applies replacements to the focused application. Calls are
// serialized; at most one injection is in flight.
type Injector struct {
	mu sync.Mutex

	poster   *synth.MarkingPoster
	ax       platform.Accessibility
	selector *Selector
	table    *Table

	chunk   int
	retries int
	backoff time.Duration
	delay   Delayer
	log     *slog.Logger
}

// New returns an injector posting through poster. Every event it posts
// carries the synthetic marker.
func New(poster synth.Poster, ax platform.Accessibility, selector *Selector, opts Options) *Injector {
	in := &Injector{
		poster:   synth.NewMarkingPoster(poster),
		ax:       ax,
		selector: selector,
		chunk:    opts.ChunkLimit,
		retries:  opts.AXRetries,
		backoff:  opts.AXBackoff,
		delay:    opts.Delayer,
		log:      logging.OrDiscard(opts.Logger),
	}
	if selector != nil {
		in.table = selector.Table()
	}
	if in.table == nil {
		in.table = DefaultTable()
	}
	if in.chunk <= 0 {
		in.chunk = synth.DefaultChunkLimit
	}
	if in.retries < 0 {
		in.retries = 0
	}
	if in.backoff < 0 {
		in.backoff = 0
	}
	if in.delay == nil {
		in.delay = SleepDelayer{}
	}
	return in
}

// Selector returns the strategy selector used by Replace.
func (in *Injector) Selector() *Selector {
	return in.selector
}

// Replace detects the strategy for the focused context and injects.
func (in *Injector) Replace(backspace int, text []rune) Report {
	var d Decision
	if in.selector != nil {
		d = in.selector.Detect()
	} else {
		d = in.table.Decide("", "")
	}
	return in.Inject(backspace, text, d)
}

// Inject deletes backspace characters before the caret and inserts text
// using the strategy in d.
func (in *Injector) Inject(backspace int, text []rune, d Decision) Report {
	in.mu.Lock()
	defer in.mu.Unlock()

	if backspace < 0 {
		backspace = 0
	}
	rep := Report{Requested: d.Strategy, Applied: d.Strategy, Attempts: 1}
	var err error
	switch d.Strategy {
	case Instant:
		err = in.typeKeyed(backspace, text, NoDelays)
	case Fast, Slow:
		err = in.typeKeyed(backspace, text, delaysFor(d))
	case Selection:
		err = in.typeSelection(backspace, text, d.Delays)
	case Autocomplete:
		err = in.typeAutocomplete(backspace, text, d)
	case AXDirect:
		rep = in.writeDirect(backspace, text, d)
	default:
		err = in.typeKeyed(backspace, text, FastDelays)
		rep.Applied = Fast
	}
	if err != nil {
		rep.Outcome, rep.Err = OutcomeFailed, err
	}

	in.log.Debug("injected",
		"requested", rep.Requested.String(),
		"applied", rep.Applied.String(),
		"outcome", rep.Outcome.String(),
		"attempts", rep.Attempts,
		"backspace", backspace,
		"count", len(text),
		"app", d.AppID)
	return rep
}

// DeleteRaw posts n plain deletes with no delays.
func (in *Injector) DeleteRaw(n int) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := 0; i < n; i++ {
		if err := in.press(keyevent.KeyDelete, 0); err != nil {
			return err
		}
	}
	return nil
}

// Chord posts one key press with mods held.
func (in *Injector) Chord(code uint16, mods keyevent.Modifiers) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.press(code, mods)
}

func delaysFor(d Decision) Delays {
	if d.Delays == (Delays{}) {
		return ProfileFor(d.Strategy)
	}
	return d.Delays
}

func (in *Injector) press(code uint16, mods keyevent.Modifiers) error {
	for _, ev := range synth.KeyPress(code, mods) {
		if err := in.poster.Post(ev); err != nil {
			return fmt.Errorf("inject: post key %d: %w", code, err)
		}
	}
	return nil
}

func (in *Injector) repeat(code uint16, mods keyevent.Modifiers, n int, gap time.Duration) error {
	for i := 0; i < n; i++ {
		if i > 0 {
			in.delay.Delay(gap)
		}
		if err := in.press(code, mods); err != nil {
			return err
		}
	}
	return nil
}

func (in *Injector) typeText(text []rune, gap time.Duration) error {
	for i, chunk := range synth.Chunks(text, in.chunk) {
		if i > 0 {
			in.delay.Delay(gap)
		}
		for _, down := range [...]bool{true, false} {
			if err := in.poster.Post(synth.Event{Text: chunk, Down: down}); err != nil {
				return fmt.Errorf("inject: post text: %w", err)
			}
		}
	}
	return nil
}

func (in *Injector) typeKeyed(backspace int, text []rune, d Delays) error {
	if err := in.repeat(keyevent.KeyDelete, 0, backspace, d.InterKey); err != nil {
		return err
	}
	if backspace > 0 && len(text) > 0 {
		in.delay.Delay(d.Settle)
	}
	return in.typeText(text, d.PostType)
}

// typeSelection selects the characters to replace and types over them.
func (in *Injector) typeSelection(backspace int, text []rune, d Delays) error {
	if len(text) == 0 {
		return in.typeKeyed(backspace, nil, d)
	}
	if err := in.repeat(keyevent.KeyArrowLeft, keyevent.ModShift, backspace, d.InterKey); err != nil {
		return err
	}
	return in.typeText(text, d.PostType)
}

func (in *Injector) typeAutocomplete(backspace int, text []rune, d Decision) error {
	if err := in.press(keyevent.KeyForwardDelete, 0); err != nil {
		return err
	}
	if !in.table.IsDuplicateGlyphApp(d.AppID) || len(text) == 0 || backspace == 0 {
		return in.typeSelection(backspace, text, d.Delays)
	}

	// Type first, then walk back over the new text to delete the old
	// characters in front of it.
	n := len(text)
	if err := in.typeText(text, d.Delays.PostType); err != nil {
		return err
	}
	if err := in.repeat(keyevent.KeyArrowLeft, 0, n, d.Delays.InterKey); err != nil {
		return err
	}
	if err := in.repeat(keyevent.KeyDelete, 0, backspace, d.Delays.InterKey); err != nil {
		return err
	}
	return in.repeat(keyevent.KeyArrowRight, 0, n, d.Delays.InterKey)
}

// directPlan is an AXDirect write computed once from the first snapshot.
type directPlan struct {
	value string
	caret int
}

var errMismatch = errors.New("inject: read-back mismatch")

// planDirect deletes backspace code points before the selection and
// replaces the selection with text.
func planDirect(value string, sel platform.Range, backspace int, text []rune) directPlan {
	units := utf16.Encode([]rune(value))
	n := len(units)
	loc := min(max(sel.Location, 0), n)
	end := min(max(sel.End(), loc), n)

	start := loc
	for i := 0; i < backspace && start > 0; i++ {
		start--
		if start > 0 && utf16.IsSurrogate(rune(units[start])) && utf16.IsSurrogate(rune(units[start-1])) {
			start--
		}
	}

	ins := utf16.Encode(text)
	out := make([]uint16, 0, start+len(ins)+n-end)
	out = append(out, units[:start]...)
	out = append(out, ins...)
	out = append(out, units[end:]...)
	return directPlan{value: string(utf16.Decode(out)), caret: start + len(ins)}
}

func (in *Injector) writeDirect(backspace int, text []rune, d Decision) Report {
	rep := Report{Requested: AXDirect, Applied: AXDirect}

	var (
		plan    *directPlan
		written bool
		lastErr error
	)
	for attempt := 1; attempt <= in.retries+1; attempt++ {
		if attempt > 1 {
			in.delay.Delay(in.backoff * time.Duration(attempt-1))
		}
		rep.Attempts = attempt

		got, p, wrote, err := in.attemptDirect(plan, backspace, text)
		plan = p
		written = written || wrote
		if err == nil {
			rep.Outcome = OutcomeSuccess
			return rep
		}
		lastErr = err
		if errors.Is(err, errMismatch) && longer(got, plan.value) {
			in.log.Debug("direct write extended by application", "app", d.AppID)
			rep.Applied, rep.Outcome = Autocomplete, OutcomeForeignOverride
			if serr := in.selectForeign(plan, got); serr != nil {
				in.log.Debug("could not select appended text", "error", serr)
			}
			if perr := in.typeAutocomplete(len(text), text, d); perr != nil {
				rep.Outcome, rep.Err = OutcomeFailed, perr
			}
			return rep
		}
		if plan == nil && !errors.Is(err, platform.ErrAccessibility) && !errors.Is(err, errTransientAX) {
			break
		}
	}

	in.log.Debug("direct write failed, typing instead", "attempts", rep.Attempts, "error", lastErr)
	rep.Applied, rep.Outcome, rep.Err = Autocomplete, OutcomeTransientFailure, lastErr
	bs := backspace
	if written {
		bs = len(text)
	}
	if perr := in.typeAutocomplete(bs, text, d); perr != nil {
		rep.Outcome, rep.Err = OutcomeFailed, perr
	}
	return rep
}

var errTransientAX = errors.New("inject: accessibility call failed")

// attemptDirect performs one write-and-verify round. It returns the value
// read back, the plan in force and whether the value was written.
func (in *Injector) attemptDirect(plan *directPlan, backspace int, text []rune) (string, *directPlan, bool, error) {
	el, err := in.ax.FocusedElement()
	if err != nil {
		return "", plan, false, err
	}
	defer el.Release()

	if plan == nil {
		value, err := el.Value()
		if err != nil {
			return "", nil, false, fmt.Errorf("%w: read value: %v", errTransientAX, err)
		}
		sel, err := el.SelectedRange()
		if err != nil {
			return "", nil, false, fmt.Errorf("%w: read selection: %v", errTransientAX, err)
		}
		p := planDirect(value, sel, backspace, text)
		plan = &p
	}

	if err := el.SetValue(plan.value); err != nil {
		return "", plan, false, fmt.Errorf("%w: set value: %v", errTransientAX, err)
	}
	// A failed caret move still leaves the text right.
	_ = el.SetSelectedRange(platform.Range{Location: plan.caret})

	got, err := el.Value()
	if err != nil {
		return "", plan, true, fmt.Errorf("%w: read back: %v", errTransientAX, err)
	}
	if norm.NFC.String(got) != norm.NFC.String(plan.value) {
		return got, plan, true, errMismatch
	}
	return got, plan, true, nil
}

// selectForeign selects what the application appended after the caret so
// the forward delete of the fallback removes all of it.
func (in *Injector) selectForeign(plan *directPlan, got string) error {
	extra := len16(got) - len16(plan.value)
	if extra <= 0 {
		return nil
	}
	el, err := in.ax.FocusedElement()
	if err != nil {
		return err
	}
	defer el.Release()
	return el.SetSelectedRange(platform.Range{Location: plan.caret, Length: extra})
}

func len16(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func longer(got, want string) bool {
	return utf8.RuneCountInString(norm.NFC.String(got)) > utf8.RuneCountInString(norm.NFC.String(want))
}
