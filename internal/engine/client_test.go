package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goxviet/internal/engine"
	"goxviet/internal/engine/enginetest"
	"goxviet/internal/keyevent"
)

func TestPlanFor(t *testing.T) {
	assert.Equal(t, engine.PlanPass, engine.PlanFor(nil).Kind)
	assert.Equal(t, engine.PlanPass, engine.PlanFor(&engine.Result{Action: engine.ActionNone, Backspace: 3}).Kind)
	assert.Equal(t, engine.PlanPass, engine.PlanFor(&engine.Result{Action: engine.ActionSend}).Kind)

	p := engine.PlanFor(&engine.Result{Action: engine.ActionSend, Backspace: 1, Chars: []rune("â")})
	assert.Equal(t, engine.PlanReplace, p.Kind)
	assert.Equal(t, 1, p.Backspace)
	assert.Equal(t, "â", string(p.Text))

	p = engine.PlanFor(&engine.Result{Action: engine.ActionRestore, Backspace: 2, Chars: []rune("aa")})
	assert.Equal(t, engine.PlanReplace, p.Kind)
	assert.Equal(t, engine.ActionRestore, p.Action)
}

func TestClientInitOnce(t *testing.T) {
	fake := enginetest.New()
	c := engine.NewClient(fake, nil)
	c.Init()
	c.Init()
	c.Apply(engine.DefaultSettings())
	assert.Equal(t, 1, fake.Count("Init"))
}

func TestClientApplySettings(t *testing.T) {
	fake := enginetest.New()
	c := engine.NewClient(fake, nil)

	s := engine.Settings{Method: engine.MethodVNI, FreeTone: true, SkipWShortcut: true}
	c.Apply(s)
	assert.Equal(t, s, fake.Settings())
	assert.Equal(t, s, c.Settings())

	c.SetMethod(engine.MethodTelex)
	c.SetModernTone(true)
	assert.Equal(t, engine.MethodTelex, fake.Settings().Method)
	assert.True(t, fake.Settings().ModernTone)
	assert.Equal(t, engine.MethodTelex, c.Settings().Method)
}

func TestClientKeyPassesFlags(t *testing.T) {
	fake := enginetest.New()
	c := engine.NewClient(fake, nil)

	c.Key(keyevent.KeyDown(keyevent.KeyA, keyevent.ModControl), true, false)
	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ProcessKeyExt", calls[0].Name)
	assert.Equal(t, keyevent.KeyA, calls[0].KeyCode)
	assert.True(t, calls[0].Upper)
	assert.True(t, calls[0].Ctrl)
	assert.False(t, calls[0].Shift)
}

func TestClientEscapeUsesEscapeKey(t *testing.T) {
	fake := enginetest.New()
	fake.Script([]uint16{keyevent.KeyEscape}, engine.Result{Action: engine.ActionRestore, Backspace: 1, Chars: []rune("aa")})
	c := engine.NewClient(fake, nil)

	res := c.Escape()
	require.NotNil(t, res)
	assert.Equal(t, engine.ActionRestore, res.Action)
	assert.Equal(t, "ProcessKey", fake.Calls()[0].Name)
}

func TestClearAllIsIdempotent(t *testing.T) {
	script := func(f *enginetest.Fake) {
		f.Script([]uint16{keyevent.KeyA, keyevent.KeyA}, engine.Result{Action: engine.ActionSend, Backspace: 1, Chars: []rune("â")})
	}
	run := func(clears int) []*engine.Result {
		fake := enginetest.New()
		script(fake)
		c := engine.NewClient(fake, nil)
		c.Key(keyevent.KeyDown(keyevent.KeyB, 0), false, false)
		for i := 0; i < clears; i++ {
			c.ClearAll()
		}
		return []*engine.Result{
			c.Key(keyevent.KeyDown(keyevent.KeyA, 0), false, false),
			c.Key(keyevent.KeyDown(keyevent.KeyA, 0), false, false),
		}
	}
	assert.Equal(t, run(1), run(2))
	assert.Equal(t, "â", string(run(2)[1].Chars))
}

func TestReplaceShortcuts(t *testing.T) {
	fake := enginetest.New()
	fake.Capacity = 2
	c := engine.NewClient(fake, nil)

	added := c.ReplaceShortcuts([]engine.Shortcut{
		{Trigger: "vn", Replacement: "Việt Nam"},
		{Trigger: "hn", Replacement: "Hà Nội"},
		{Trigger: "sg", Replacement: "Sài Gòn"},
	})
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, fake.Count("ClearShortcuts"))
	assert.Len(t, fake.Shortcuts(), 2)

	c.RemoveShortcut("vn")
	assert.NotContains(t, fake.Shortcuts(), "vn")
}

func TestUnavailableEngineReturnsNil(t *testing.T) {
	c := engine.NewClient(nil, nil)
	c.Init()
	assert.Nil(t, c.Key(keyevent.KeyDown(keyevent.KeyA, 0), false, false))
	assert.Nil(t, c.Escape())
	assert.Equal(t, engine.PlanPass, engine.PlanFor(c.Escape()).Kind)
}

func TestUninitialisedFakeReturnsNil(t *testing.T) {
	fake := enginetest.New()
	fake.RequireInit = true
	assert.Nil(t, fake.ProcessKey(keyevent.KeyA, false, false))
	fake.Init()
	assert.NotNil(t, fake.ProcessKey(keyevent.KeyA, false, false))
}

func TestParseMethod(t *testing.T) {
	m, err := engine.ParseMethod("vni")
	require.NoError(t, err)
	assert.Equal(t, engine.MethodVNI, m)
	m, err = engine.ParseMethod("0")
	require.NoError(t, err)
	assert.Equal(t, engine.MethodTelex, m)
	_, err = engine.ParseMethod("viqr")
	assert.Error(t, err)
}
