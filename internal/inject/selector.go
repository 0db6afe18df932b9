package inject

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"goxviet/internal/logging"
	"goxviet/internal/platform"
)

// Default selector tuning.
const (
	DefaultCacheTTL     = 200 * time.Millisecond
	DefaultFocusRetries = 2
	DefaultFocusBackoff = 500 * time.Microsecond
)

// SelectorOptions tunes a Selector. A zero CacheTTL takes the default;
// retries and backoff are used as given, so start from
// DefaultSelectorOptions.
type SelectorOptions struct {
	CacheTTL     time.Duration
	FocusRetries int
	FocusBackoff time.Duration
	Delayer      Delayer
	Now          func() time.Time
	Logger       *slog.Logger
}

// DefaultSelectorOptions returns the default selector tuning.
func DefaultSelectorOptions() SelectorOptions {
	return SelectorOptions{
		CacheTTL:     DefaultCacheTTL,
		FocusRetries: DefaultFocusRetries,
		FocusBackoff: DefaultFocusBackoff,
	}
}

// Selector chooses a strategy for the focused element and caches the
// decision for a short time.
//
// Detect is called only from the tap thread; Invalidate may be called from
// any goroutine.
type Selector struct {
	ax      platform.Accessibility
	table   *Table
	ttl     time.Duration
	retries int
	backoff time.Duration
	delay   Delayer
	now     func() time.Time
	log     *slog.Logger

	cached   Decision
	cachedAt time.Time
	valid    bool
	stale    atomic.Bool
}

// NewSelector returns a selector reading focus from ax.
func NewSelector(ax platform.Accessibility, table *Table, opts SelectorOptions) *Selector {
	if table == nil {
		table = DefaultTable()
	}
	s := &Selector{
		ax:      ax,
		table:   table,
		ttl:     opts.CacheTTL,
		retries: opts.FocusRetries,
		backoff: opts.FocusBackoff,
		delay:   opts.Delayer,
		now:     opts.Now,
		log:     logging.OrDiscard(opts.Logger),
	}
	if s.ttl <= 0 {
		s.ttl = DefaultCacheTTL
	}
	if s.retries < 0 {
		s.retries = 0
	}
	if s.backoff < 0 {
		s.backoff = 0
	}
	if s.delay == nil {
		s.delay = SleepDelayer{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Table returns the decision table.
func (s *Selector) Table() *Table {
	return s.table
}

// Invalidate drops the cached decision. The next Detect queries again.
func (s *Selector) Invalidate() {
	s.stale.Store(true)
}

// Detect returns the decision for the focused context.
func (s *Selector) Detect() Decision {
	now := s.now()
	if s.stale.Swap(false) {
		s.valid = false
	}
	if s.valid && now.Sub(s.cachedAt) < s.ttl {
		return s.cached
	}

	d := s.detect()
	s.cached, s.cachedAt, s.valid = d, now, true
	s.log.Debug("strategy selected",
		"strategy", d.Strategy.String(),
		"rule", d.Rule,
		"app", d.AppID,
		"role", d.Role)
	return d
}

func (s *Selector) detect() Decision {
	role, app := s.focus()
	if app == "" {
		if front, err := s.ax.FrontmostAppID(); err == nil {
			app = front
		}
	}
	return s.table.Decide(role, app)
}

// focus reads the focused element's role and owning application,
// retrying transient accessibility failures.
func (s *Selector) focus() (role, app string) {
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			s.delay.Delay(s.backoff)
		}
		el, err := s.ax.FocusedElement()
		if err != nil {
			if errors.Is(err, platform.ErrAccessibility) {
				continue
			}
			return "", ""
		}
		role, _ = el.Role()
		app, _ = el.AppID()
		el.Release()
		return role, app
	}
	s.log.Debug("focused element query exhausted retries", "retries", s.retries)
	return "", ""
}
