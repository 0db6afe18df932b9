package composition

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"goxviet/internal/engine"
	"goxviet/internal/engine/enginetest"
	"goxviet/internal/inject"
	"goxviet/internal/keyevent"
	"goxviet/internal/platform"
	"goxviet/internal/platform/platformtest"
	"goxviet/internal/synth"
)

func deleteKey(mods keyevent.Modifiers) keyevent.KeyEvent {
	return keyevent.KeyDown(keyevent.KeyDelete, mods)
}

func TestWordDeleteCoalescesBurst(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	for _, code := range []uint16{keyevent.KeyX, keyevent.KeyI, keyevent.KeyN, keyevent.KeySpace} {
		h.press(t, code, 0)
	}
	h.fake.Reset()
	h.env.Keys.Shift = true

	for i := 0; i < 5; i++ {
		assert.Equal(t, platform.Swallow, h.ctrl.HandleKey(deleteKey(0)))
		h.clock.advance(10 * time.Millisecond)
	}

	assert.Equal(t, 1, h.fake.Count("ClearAllState"))
	assert.Zero(t, h.fake.Count("ProcessKeyExt"))
	assert.Equal(t, []platformtest.Step{step(keyevent.KeyDelete, keyevent.ModOption)}, h.env.Poster.Steps())
	assert.Equal(t, "", h.env.Field.Text())
	assert.Zero(t, h.ctrl.Buffer().Len())
}

func TestWordDeleteAfterWindow(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.ctrl.HandleKey(deleteKey(keyevent.ModShift))
	h.clock.advance(DefaultWordDeleteWindow)
	h.ctrl.HandleKey(deleteKey(keyevent.ModShift))

	assert.Equal(t, 2, h.fake.Count("ClearAllState"))
	assert.Len(t, h.env.Poster.Steps(), 2)
}

func TestPlainDeleteEndsBurst(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.ctrl.HandleKey(deleteKey(keyevent.ModShift))
	h.ctrl.HandleKey(deleteKey(0))
	h.ctrl.HandleKey(deleteKey(keyevent.ModShift))

	assert.Equal(t, 2, h.fake.Count("ClearAllState"))
	assert.Equal(t, 1, h.fake.Count("ProcessKeyExt"))
}

func TestWordDeleteDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.WordDelete = false
	h := newHarness(t, opts)
	h.env.Keys.Shift = true

	assert.Equal(t, platform.Swallow, h.ctrl.HandleKey(deleteKey(0)))
	call := h.lastKeyCall(t)
	assert.Equal(t, keyevent.KeyDelete, call.KeyCode)
	assert.True(t, call.Shift, "physical shift reaches the engine for delete")
	assert.Zero(t, h.fake.Count("ClearAllState"))
}

func TestDeleteWithEngineReplacement(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.fake.Script([]uint16{keyevent.KeyA, keyevent.KeyA}, engine.Result{
		Action: engine.ActionSend, Backspace: 1, Chars: []rune("â"),
	})
	h.press(t, keyevent.KeyA, 0)
	h.press(t, keyevent.KeyA, 0)
	h.env.Poster.Reset()

	h.fake.Queue(&engine.Result{Action: engine.ActionSend, Backspace: 1, Chars: []rune("a")})
	assert.Equal(t, platform.Swallow, h.ctrl.HandleKey(deleteKey(0)))
	assert.Equal(t, "a", h.env.Field.Text())
	assert.Equal(t, "a", h.ctrl.Buffer().String())
}

func TestDeleteRawBackspaces(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	for _, code := range []uint16{keyevent.KeyA, keyevent.KeyB, keyevent.KeyC} {
		h.press(t, code, 0)
	}
	h.fake.Queue(&engine.Result{Action: engine.ActionNone, Backspace: 2})

	assert.Equal(t, platform.Swallow, h.ctrl.HandleKey(deleteKey(0)))
	assert.Equal(t, []platformtest.Step{
		step(keyevent.KeyDelete, 0),
		step(keyevent.KeyDelete, 0),
	}, h.env.Poster.Steps())
	assert.Equal(t, "a", h.env.Field.Text())
	assert.Equal(t, "a", h.ctrl.Buffer().String())
}

func TestDeletePastCompositionIsNative(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.press(t, keyevent.KeyB, 0)

	// The fake answers None with no backspace: nothing buffered.
	assert.Equal(t, platform.Swallow, h.ctrl.HandleKey(deleteKey(0)))
	assert.Equal(t, []platformtest.Step{step(keyevent.KeyDelete, 0)}, h.env.Poster.Steps())
	assert.Equal(t, "", h.env.Field.Text())
	assert.Zero(t, h.fake.Count("RestoreWord"))
}

func TestDeleteRestoresPreviousWord(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	for _, code := range []uint16{keyevent.KeyV, keyevent.KeyI, keyevent.KeyE, keyevent.KeyT, keyevent.KeySpace} {
		h.press(t, code, 0)
	}
	assert.Equal(t, "viet ", h.env.Field.Text())

	h.ctrl.HandleKey(deleteKey(0))

	assert.Equal(t, "viet", h.env.Field.Text())
	var restored []string
	for _, c := range h.fake.Calls() {
		if c.Name == "RestoreWord" {
			restored = append(restored, c.Arg)
		}
	}
	assert.Equal(t, []string{"viet"}, restored)

	// Deleting inside the word restores nothing more.
	h.ctrl.HandleKey(deleteKey(0))
	assert.Equal(t, 1, h.fake.Count("RestoreWord"))
}

func failingDeletes(t *testing.T) (*Controller, *enginetest.Fake) {
	t.Helper()
	boom := errors.New("post failed")
	poster := synth.PosterFunc(func(synth.Event) error { return boom })
	inj := inject.New(poster, &platformtest.AX{}, nil, inject.Options{Delayer: &inject.RecordingDelayer{}})
	fake := enginetest.New()
	return NewController(engine.NewClient(fake, nil), inj, DefaultOptions()), fake
}

func TestDeletePassesWhenPostingFails(t *testing.T) {
	tests := []struct {
		name   string
		result *engine.Result
		mods   keyevent.Modifiers
	}{
		{name: "native"},
		{name: "engine replacement", result: &engine.Result{Action: engine.ActionSend, Backspace: 1, Chars: []rune("a")}},
		{name: "raw backspaces", result: &engine.Result{Action: engine.ActionNone, Backspace: 2}},
		{name: "word delete", mods: keyevent.ModShift},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, fake := failingDeletes(t)
			ctrl.Buffer().Append([]rune("xin ")...)
			if tt.result != nil {
				fake.Queue(tt.result)
			}

			assert.Equal(t, platform.Pass, ctrl.HandleKey(deleteKey(tt.mods)))
			assert.GreaterOrEqual(t, fake.Count("ClearAllState"), 1)
			assert.Zero(t, ctrl.Buffer().Len())
		})
	}
}
