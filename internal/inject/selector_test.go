package inject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"goxviet/internal/platform/platformtest"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSelector(ax *platformtest.AX, c *clock, rec *RecordingDelayer) *Selector {
	opts := DefaultSelectorOptions()
	opts.Now, opts.Delayer = c.now, rec
	return NewSelector(ax, nil, opts)
}

func TestSelectorCaches(t *testing.T) {
	field := platformtest.NewTextField(RoleTextArea, "com.apple.Terminal", "")
	ax := &platformtest.AX{Focused: field}
	c := &clock{t: time.Unix(1000, 0)}
	s := newTestSelector(ax, c, &RecordingDelayer{})

	d := s.Detect()
	assert.Equal(t, Slow, d.Strategy)
	assert.Equal(t, 1, ax.Queries)
	assert.Equal(t, 1, field.Released)

	c.advance(DefaultCacheTTL - time.Millisecond)
	ax.SetFocus(platformtest.NewTextField(RoleTextArea, "com.microsoft.VSCode", ""), "")
	assert.Equal(t, Slow, s.Detect().Strategy, "cached decision within ttl")
	assert.Equal(t, 1, ax.Queries)

	c.advance(time.Millisecond)
	assert.Equal(t, Instant, s.Detect().Strategy)
	assert.Equal(t, 2, ax.Queries)
}

func TestSelectorInvalidate(t *testing.T) {
	ax := &platformtest.AX{Focused: platformtest.NewTextField(RoleTextArea, "com.apple.Terminal", "")}
	c := &clock{t: time.Unix(1000, 0)}
	s := newTestSelector(ax, c, &RecordingDelayer{})

	assert.Equal(t, Slow, s.Detect().Strategy)
	ax.SetFocus(platformtest.NewTextField(RoleComboBox, "com.example", ""), "")
	s.Invalidate()
	assert.Equal(t, Selection, s.Detect().Strategy)
	assert.Equal(t, 2, ax.Queries)
}

func TestSelectorRetriesTransientFocus(t *testing.T) {
	ax := &platformtest.AX{
		Focused:     platformtest.NewTextField(RoleTextField, "com.apple.Safari", ""),
		FocusErrors: 2,
	}
	rec := &RecordingDelayer{}
	s := newTestSelector(ax, &clock{t: time.Unix(1, 0)}, rec)

	assert.Equal(t, AXDirect, s.Detect().Strategy)
	assert.Equal(t, 3, ax.Queries)
	assert.Equal(t, []time.Duration{DefaultFocusBackoff, DefaultFocusBackoff}, rec.Delays())
}

func TestSelectorExhaustedRetriesFallsBackToFrontmost(t *testing.T) {
	ax := &platformtest.AX{
		Focused:     platformtest.NewTextField(RoleTextField, "com.apple.Safari", ""),
		Frontmost:   "com.apple.Terminal",
		FocusErrors: 10,
	}
	s := newTestSelector(ax, &clock{t: time.Unix(1, 0)}, &RecordingDelayer{})

	d := s.Detect()
	assert.Equal(t, Slow, d.Strategy)
	assert.Equal(t, "com.apple.Terminal", d.AppID)
	assert.Equal(t, DefaultFocusRetries+1, ax.Queries)
}

func TestSelectorNoFocus(t *testing.T) {
	ax := &platformtest.AX{}
	d := newTestSelector(ax, &clock{}, &RecordingDelayer{}).Detect()
	assert.Equal(t, Fast, d.Strategy)
	assert.Equal(t, "default", d.Rule)
	assert.Equal(t, 1, ax.Queries, "no focus is not retried")
}
