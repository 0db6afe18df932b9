package expansion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goxviet/internal/engine"
)

func TestNormalizeAndValidate(t *testing.T) {
	e := New("  VN ", "Việt Nam").Normalize()
	assert.Equal(t, "vn", e.Trigger)
	assert.NoError(t, e.Validate())

	assert.ErrorIs(t, New("", "x").Normalize().Validate(), ErrEmptyTrigger)
	assert.ErrorIs(t, New("a b", "x").Normalize().Validate(), ErrTriggerSpace)
	assert.ErrorIs(t, New("ab", "").Normalize().Validate(), ErrEmptyReplacement)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("ệ", MaxReplacement+10)
	got := Truncate(long)
	assert.Equal(t, MaxReplacement, utf8.RuneCountInString(got))
	assert.Equal(t, "ngắn", Truncate("ngắn"))
}

func TestParseMethodAndCondition(t *testing.T) {
	m, err := ParseMethod("VNI")
	require.NoError(t, err)
	assert.Equal(t, MethodVNI, m)
	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodAll, m)
	_, err = ParseMethod("qwerty")
	assert.Error(t, err)

	c, err := ParseCondition("immediate")
	require.NoError(t, err)
	assert.Equal(t, Immediate, c)
	_, err = ParseCondition("later")
	assert.Error(t, err)
}

func TestForMethod(t *testing.T) {
	entries := []Entry{
		New("vn", "Việt Nam"),
		{Trigger: "tx", Replacement: "telex only", Enabled: true, Method: MethodTelex},
		{Trigger: "vi", Replacement: "vni only", Enabled: true, Method: MethodVNI},
		{Trigger: "off", Replacement: "disabled", Enabled: false},
	}

	telex := ForMethod(entries, engine.MethodTelex)
	assert.Equal(t, []engine.Shortcut{
		{Trigger: "vn", Replacement: "Việt Nam"},
		{Trigger: "tx", Replacement: "telex only"},
	}, telex)

	vni := ForMethod(entries, engine.MethodVNI)
	require.Len(t, vni, 2)
	assert.Equal(t, "vi", vni[1].Trigger)
}
