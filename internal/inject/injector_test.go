package inject

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goxviet/internal/keyevent"
	"goxviet/internal/platform"
	"goxviet/internal/platform/platformtest"
	"goxviet/internal/synth"
)

type fixture struct {
	env *platformtest.Env
	rec *RecordingDelayer
	inj *Injector
}

func newFixture(role, app, text string) *fixture {
	env := platformtest.NewEnv(role, app, text)
	rec := &RecordingDelayer{}
	selOpts := DefaultSelectorOptions()
	selOpts.Delayer = rec
	opts := DefaultOptions()
	opts.Delayer = rec
	return &fixture{
		env: env,
		rec: rec,
		inj: New(env.Poster, env.AX, NewSelector(env.AX, nil, selOpts), opts),
	}
}

func del() platformtest.Step { return platformtest.Step{Key: keyevent.KeyDelete} }
func typed(s string) platformtest.Step { return platformtest.Step{Text: s} }
func key(code uint16, mods keyevent.Modifiers) platformtest.Step {
	return platformtest.Step{Key: code, Mods: mods}
}

func assertAllMarked(t *testing.T, p *platformtest.Poster) {
	t.Helper()
	for i, ev := range p.Events() {
		assert.True(t, ev.Marked(), "event %d is unmarked", i)
	}
}

func TestInstantReplace(t *testing.T) {
	f := newFixture(RoleTextArea, "com.microsoft.VSCode", "a")
	rep := f.inj.Replace(1, []rune("â"))

	assert.Equal(t, Report{Requested: Instant, Applied: Instant, Outcome: OutcomeSuccess, Attempts: 1}, rep)
	assert.Equal(t, []platformtest.Step{del(), typed("â")}, f.env.Poster.Steps())
	assert.Equal(t, "â", f.env.Field.Text())
	assert.Empty(t, f.rec.Delays())
	assertAllMarked(t, f.env.Poster)
}

func TestFastDelays(t *testing.T) {
	f := newFixture(RoleTextArea, "com.example.unknown", "tieng")
	rep := f.inj.Replace(3, []rune("ếng"))

	assert.Equal(t, Fast, rep.Applied)
	assert.Equal(t, "tiếng", f.env.Field.Text())
	assert.Equal(t, []time.Duration{
		FastDelays.InterKey, FastDelays.InterKey, FastDelays.Settle,
	}, f.rec.Delays())
}

func TestSlowTerminalDelaysAndChunks(t *testing.T) {
	f := newFixture(RoleTextArea, "com.apple.Terminal", "")
	f.inj.chunk = 4
	text := []rune("xin chào các")
	rep := f.inj.Replace(0, text)

	assert.Equal(t, Slow, rep.Applied)
	assert.Equal(t, "xin chào các", f.env.Field.Text())
	assert.Equal(t, []platformtest.Step{typed("xin "), typed("chào"), typed(" các")}, f.env.Poster.Steps())
	assert.Equal(t, []time.Duration{TerminalDelays.PostType, TerminalDelays.PostType}, f.rec.Delays())
}

func TestSelectionStrategy(t *testing.T) {
	f := newFixture(RoleComboBox, "com.example", "viet")
	rep := f.inj.Replace(2, []rune("ệt"))

	assert.Equal(t, Selection, rep.Applied)
	assert.Equal(t, []platformtest.Step{
		key(keyevent.KeyArrowLeft, keyevent.ModShift),
		key(keyevent.KeyArrowLeft, keyevent.ModShift),
		typed("ệt"),
	}, f.env.Poster.Steps())
	assert.Equal(t, "việt", f.env.Field.Text())
}

func TestSelectionWithoutTextDeletes(t *testing.T) {
	f := newFixture(RoleComboBox, "com.example", "ab")
	f.inj.Replace(1, nil)
	assert.Equal(t, []platformtest.Step{del()}, f.env.Poster.Steps())
	assert.Equal(t, "a", f.env.Field.Text())
}

func TestAutocompleteClearsSuggestionFirst(t *testing.T) {
	f := newFixture(RoleTextField, "com.example", "dduowngf suggestion")
	f.env.Field.Select(platform.Range{Location: 8, Length: 11})

	rep := f.inj.Inject(8, []rune("đường"), Decision{Strategy: Autocomplete, AppID: "com.example"})

	assert.Equal(t, OutcomeSuccess, rep.Outcome)
	steps := f.env.Poster.Steps()
	require.NotEmpty(t, steps)
	assert.Equal(t, key(keyevent.KeyForwardDelete, 0), steps[0])
	assert.Equal(t, "đường", f.env.Field.Text())
}

func TestAutocompleteDuplicateGlyphSequence(t *testing.T) {
	f := newFixture(RoleTextArea, "org.mozilla.firefox", "ab")
	f.inj.Inject(1, []rune("â"), Decision{Strategy: Autocomplete, AppID: "org.mozilla.firefox"})

	assert.Equal(t, []platformtest.Step{
		key(keyevent.KeyForwardDelete, 0),
		typed("â"),
		key(keyevent.KeyArrowLeft, 0),
		del(),
		key(keyevent.KeyArrowRight, 0),
	}, f.env.Poster.Steps())
	assert.Equal(t, "aâ", f.env.Field.Text())
}

func TestAXDirectSuccess(t *testing.T) {
	f := newFixture(RoleTextField, "com.apple.Spotlight", "tieng viet")
	f.env.Field.Select(platform.Range{Location: 5})

	rep := f.inj.Replace(3, []rune("ếng"))

	assert.Equal(t, Report{Requested: AXDirect, Applied: AXDirect, Outcome: OutcomeSuccess, Attempts: 1}, rep)
	assert.Equal(t, "tiếng viet", f.env.Field.Text())
	assert.Equal(t, platform.Range{Location: 5}, f.env.Field.Selection())
	assert.Empty(t, f.env.Poster.Events(), "direct writes post no events")
	assert.Equal(t, 1, f.env.Field.Writes)
}

func TestAXDirectDropsSelectedSuggestion(t *testing.T) {
	f := newFixture(RoleTextField, "com.apple.Safari", "vnexpress.net")
	f.env.Field.Select(platform.Range{Location: 2, Length: 11})

	rep := f.inj.Replace(0, []rune("ư"))
	assert.Equal(t, OutcomeSuccess, rep.Outcome)
	assert.Equal(t, "vnư", f.env.Field.Text())
}

func TestAXDirectComparesNormalized(t *testing.T) {
	f := newFixture(RoleTextField, "com.apple.Spotlight", "")
	// The application stores the decomposed form.
	f.env.Field.OnSetValue = func(v string) string {
		return strings.ReplaceAll(v, "\u1ec7", "e\u0323\u0302")
	}
	rep := f.inj.Replace(0, []rune("\u1ec7"))
	assert.Equal(t, OutcomeSuccess, rep.Outcome)
	assert.Equal(t, 1, rep.Attempts)
}

func TestAXDirectForeignOverride(t *testing.T) {
	f := newFixture(RoleTextField, "com.apple.Spotlight", "a")
	f.env.Field.OnSetValue = func(v string) string { return v + "pp store" }

	rep := f.inj.Replace(1, []rune("â"))

	assert.Equal(t, OutcomeForeignOverride, rep.Outcome)
	assert.Equal(t, Autocomplete, rep.Applied)
	assert.True(t, rep.Fallback())
	steps := f.env.Poster.Steps()
	require.NotEmpty(t, steps)
	assert.Equal(t, key(keyevent.KeyForwardDelete, 0), steps[0])
	assert.Equal(t, "â", f.env.Field.Text(), "appended suggestion is removed")
	assertAllMarked(t, f.env.Poster)
}

func TestAXDirectForeignOverrideKeepsTextAfterCaret(t *testing.T) {
	f := newFixture(RoleTextField, "com.apple.Spotlight", "a end")
	f.env.Field.Select(platform.Range{Location: 1})
	f.env.Field.OnSetValue = func(v string) string {
		return strings.Replace(v, "â", "âpp", 1)
	}

	rep := f.inj.Replace(1, []rune("â"))

	assert.Equal(t, OutcomeForeignOverride, rep.Outcome)
	assert.Equal(t, "â end", f.env.Field.Text())
}

func TestAXDirectRetryDoesNotDeleteTwice(t *testing.T) {
	f := newFixture(RoleTextField, "com.apple.Spotlight", "xab")
	f.env.Field.FailWrites = 2

	rep := f.inj.Replace(1, []rune("â"))

	assert.Equal(t, OutcomeSuccess, rep.Outcome)
	assert.Equal(t, 3, rep.Attempts)
	assert.Equal(t, "xaâ", f.env.Field.Text())
	assert.Equal(t, []time.Duration{DefaultAXBackoff, 2 * DefaultAXBackoff}, f.rec.Delays())
}

func TestAXDirectRetriesReadFailures(t *testing.T) {
	f := newFixture(RoleTextField, "com.apple.Spotlight", "ab")
	f.env.Field.FailReads = 1

	rep := f.inj.Replace(1, []rune("ă"))
	assert.Equal(t, OutcomeSuccess, rep.Outcome)
	assert.Equal(t, 2, rep.Attempts)
	assert.Equal(t, "aă", f.env.Field.Text())
}

func TestAXDirectExhaustedFallsBack(t *testing.T) {
	f := newFixture(RoleTextField, "com.apple.Spotlight", "ab")
	f.env.Field.FailWrites = 100

	rep := f.inj.Replace(1, []rune("ă"))

	assert.Equal(t, OutcomeTransientFailure, rep.Outcome)
	assert.Equal(t, Autocomplete, rep.Applied)
	assert.Equal(t, DefaultAXRetries+1, rep.Attempts)
	assert.Error(t, rep.Err)
	assert.Equal(t, []platformtest.Step{
		key(keyevent.KeyForwardDelete, 0),
		key(keyevent.KeyArrowLeft, keyevent.ModShift),
		typed("ă"),
	}, f.env.Poster.Steps())
	assert.Equal(t, "aă", f.env.Field.Text())
}

func TestAXDirectNoFocusFallsBackImmediately(t *testing.T) {
	f := newFixture(RoleTextField, "com.apple.Spotlight", "ab")
	d := f.inj.Selector().Detect()
	f.env.AX.SetFocus(nil, "")

	rep := f.inj.Inject(1, []rune("ă"), d)
	assert.Equal(t, OutcomeTransientFailure, rep.Outcome)
	assert.Equal(t, 1, rep.Attempts)
	assert.ErrorIs(t, rep.Err, platform.ErrNoFocus)
}

func TestPlanDirectSurrogates(t *testing.T) {
	p := planDirect("a😀", platform.Range{Location: 3}, 1, []rune("b"))
	assert.Equal(t, "ab", p.value)
	assert.Equal(t, 2, p.caret)

	p = planDirect("ab", platform.Range{Location: 2}, 5, []rune("x"))
	assert.Equal(t, "x", p.value)
	assert.Equal(t, 1, p.caret)
}

func TestDeleteRawAndChord(t *testing.T) {
	f := newFixture(RoleTextArea, "com.microsoft.VSCode", "xin chao ban")

	require.NoError(t, f.inj.DeleteRaw(2))
	assert.Equal(t, "xin chao b", f.env.Field.Text())

	require.NoError(t, f.inj.Chord(keyevent.KeyDelete, keyevent.ModOption))
	assert.Equal(t, "xin chao ", f.env.Field.Text())
	assertAllMarked(t, f.env.Poster)
}

func TestPostFailure(t *testing.T) {
	boom := errors.New("boom")
	poster := synth.PosterFunc(func(synth.Event) error { return boom })
	inj := New(poster, &platformtest.AX{}, nil, Options{Delayer: &RecordingDelayer{}})

	rep := inj.Inject(1, []rune("x"), Decision{Strategy: Instant})
	assert.Equal(t, OutcomeFailed, rep.Outcome)
	assert.ErrorIs(t, rep.Err, boom)
	assert.ErrorIs(t, inj.DeleteRaw(1), boom)
}
