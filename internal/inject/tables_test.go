package inject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tbl := DefaultTable()
	tests := []struct {
		name  string
		role  string
		app   string
		want  Strategy
		rule  string
		delay Delays
	}{
		{"combo box", RoleComboBox, "com.example.app", Selection, "role", NoDelays},
		{"search field outranks instant app", RoleSearchField, "com.microsoft.VSCode", Selection, "role", NoDelays},
		{"spotlight", RoleTextField, "com.apple.Spotlight", AXDirect, "search_overlay", NoDelays},
		{"chrome address bar", RoleTextField, "com.google.Chrome", Selection, "address_bar", NoDelays},
		{"safari address bar", RoleTextField, "com.apple.Safari", AXDirect, "address_bar", NoDelays},
		{"chrome page text area", RoleTextArea, "com.google.Chrome", Fast, "default", FastDelays},
		{"editor", RoleTextArea, "com.microsoft.VSCode", Instant, "instant", NoDelays},
		{"terminal", RoleTextArea, "com.apple.Terminal", Slow, "terminal", TerminalDelays},
		{"electron", RoleTextArea, "com.tinyspeck.slackmacgap", Slow, "electron", ElectronDelays},
		{"unknown", "", "", Fast, "default", FastDelays},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tbl.Decide(tt.role, tt.app)
			assert.Equal(t, tt.want, d.Strategy)
			assert.Equal(t, tt.rule, d.Rule)
			assert.Equal(t, tt.delay, d.Delays)
			assert.Equal(t, tt.app, d.AppID)
			assert.Equal(t, tt.role, d.Role)
		})
	}
}

func TestOverrideWins(t *testing.T) {
	tbl := DefaultTable()
	tbl.Override("com.apple.Terminal", Instant)
	tbl.Override("com.example.combo", AXDirect)

	assert.Equal(t, Instant, tbl.Decide(RoleTextArea, "com.apple.Terminal").Strategy)
	d := tbl.Decide(RoleComboBox, "com.example.combo")
	assert.Equal(t, AXDirect, d.Strategy)
	assert.Equal(t, "override", d.Rule)

	var empty Table
	empty.Override("x", Slow)
	assert.Equal(t, TerminalDelays, empty.Decide("", "x").Delays)
}

func TestParseStrategy(t *testing.T) {
	for s := Instant; s <= AXDirect; s++ {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStrategy(" AXDirect ")
	require.NoError(t, err)
	assert.Equal(t, AXDirect, got)

	_, err = ParseStrategy("teleport")
	assert.Error(t, err)
	assert.Equal(t, "strategy(9)", Strategy(9).String())
}

func TestReportFallback(t *testing.T) {
	assert.False(t, Report{Requested: AXDirect, Applied: AXDirect}.Fallback())
	assert.True(t, Report{Requested: AXDirect, Applied: Autocomplete}.Fallback())
	assert.Equal(t, "foreign_override", OutcomeForeignOverride.String())
}
