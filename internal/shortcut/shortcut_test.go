package shortcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goxviet/internal/keyevent"
)

func TestMatchesKeyed(t *testing.T) {
	tog := Default()

	assert.True(t, Matches(keyevent.KeyDown(keyevent.KeySpace, keyevent.ModControl), tog))
	// Fn and CapsLock are outside the matched subset.
	assert.True(t, Matches(keyevent.KeyDown(keyevent.KeySpace, keyevent.ModControl|keyevent.ModCapsLock|keyevent.ModFn), tog))

	assert.False(t, Matches(keyevent.KeyDown(keyevent.KeySpace, keyevent.ModControl|keyevent.ModShift), tog))
	assert.False(t, Matches(keyevent.KeyDown(keyevent.KeySpace, 0), tog))
	assert.False(t, Matches(keyevent.KeyDown(keyevent.KeyA, keyevent.ModControl), tog))
	assert.False(t, Matches(keyevent.KeyUp(keyevent.KeySpace, keyevent.ModControl), tog))
	assert.False(t, Matches(keyevent.ModifiersChanged(keyevent.ModControl), tog))
}

func TestMatchesModifierOnly(t *testing.T) {
	tog := Toggle{KeyCode: ModifierOnly, Modifiers: keyevent.ModControl | keyevent.ModShift}

	assert.True(t, Matches(keyevent.ModifiersChanged(keyevent.ModControl|keyevent.ModShift), tog))
	assert.True(t, Matches(keyevent.ModifiersChanged(keyevent.ModControl|keyevent.ModShift|keyevent.ModCapsLock), tog))

	// Superset and subset never match.
	assert.False(t, Matches(keyevent.ModifiersChanged(keyevent.ModControl|keyevent.ModShift|keyevent.ModOption), tog))
	assert.False(t, Matches(keyevent.ModifiersChanged(keyevent.ModControl), tog))

	// A regular key down with the exact modifiers is not a modifier-only match.
	assert.False(t, Matches(keyevent.KeyDown(keyevent.KeyA, keyevent.ModControl|keyevent.ModShift), tog))
	assert.False(t, Matches(keyevent.KeyDown(ModifierOnly, keyevent.ModControl|keyevent.ModShift), tog))
}

func TestMatchesNeverFiresOnEmptyModifierOnly(t *testing.T) {
	tog := Toggle{KeyCode: ModifierOnly}
	assert.False(t, Matches(keyevent.ModifiersChanged(0), tog))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())
	assert.NoError(t, Toggle{KeyCode: ModifierOnly, Modifiers: keyevent.ModShift}.Validate())
	assert.ErrorIs(t, Toggle{KeyCode: ModifierOnly, Modifiers: keyevent.ModFn}.Validate(), ErrNoModifiers)
	assert.ErrorIs(t, Toggle{KeyCode: 0, Modifiers: keyevent.ModControl}.Validate(), ErrNoKey)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Toggle
	}{
		{"ctrl+space", Default()},
		{" Control + Space ", Default()},
		{"ctrl+shift", Toggle{KeyCode: ModifierOnly, Modifiers: keyevent.ModControl | keyevent.ModShift}},
		{"cmd+opt+z", Toggle{KeyCode: keyevent.KeyZ, Modifiers: keyevent.ModCommand | keyevent.ModOption}},
		{"alt+`", Toggle{KeyCode: keyevent.KeyBackquote, Modifiers: keyevent.ModOption}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "ctrl+", "ctrl+space+z", "ctrl+hyper"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrSyntax, in)
	}
	_, err := Parse("fn")
	assert.Error(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	for _, tog := range []Toggle{
		Default(),
		{KeyCode: ModifierOnly, Modifiers: keyevent.ModControl | keyevent.ModShift},
		{KeyCode: keyevent.KeyV, Modifiers: keyevent.ModCommand | keyevent.ModShift},
	} {
		got, err := Parse(tog.String())
		require.NoError(t, err, tog.String())
		assert.Equal(t, tog, got)
	}
	assert.Equal(t, "ctrl+space", Default().String())
}

func TestTextMarshaling(t *testing.T) {
	var tog Toggle
	require.NoError(t, tog.UnmarshalText([]byte("ctrl+shift")))
	assert.True(t, tog.IsModifierOnly())

	b, err := tog.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ctrl+shift", string(b))

	assert.Error(t, tog.UnmarshalText([]byte("nope+nope")))
}
