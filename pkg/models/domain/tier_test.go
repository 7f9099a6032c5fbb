package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRuleTier(t *testing.T) {
	valid := map[string]Tier{
		"High":    TierHigh,
		" medium": TierMedium,
		"LOW":     TierLow,
		"1":       TierHigh,
		"2":       TierMedium,
		"3":       TierLow,
	}
	for raw, want := range valid {
		got, err := ParseRuleTier(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "Critical", "Safe/Well Architected", "4"} {
		_, err := ParseRuleTier(raw)
		assert.Error(t, err, raw)
	}
}

func TestColor_Hex(t *testing.T) {
	assert.Equal(t, "FF0000", ColorRed.Hex())
	assert.Equal(t, "800080", ColorPurple.Hex())
	assert.Equal(t, "FFFFFF", Color("").Hex())

	r, g, b := ColorOrange.RGB()
	assert.Equal(t, []int{255, 165, 0}, []int{r, g, b})
	assert.Equal(t, "FFFFFF", ColorRed.TextHex())
	assert.Equal(t, "000000", ColorYellow.TextHex())
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("Red")
	require.NoError(t, err)
	assert.Equal(t, ColorRed, c)

	c, err = ParseColor("#00008b")
	require.NoError(t, err)
	assert.Equal(t, "00008B", c.Hex())
	assert.Equal(t, "FFFFFF", c.TextHex())

	c, err = ParseColor("c0c0c0")
	require.NoError(t, err)
	assert.Equal(t, "000000", c.TextHex())

	for _, raw := range []string{"", "blurple", "#12345", "GGGGGG"} {
		_, err := ParseColor(raw)
		assert.Error(t, err, raw)
	}
}

func TestRuleTable_FirstRuleWins(t *testing.T) {
	rt := NewRuleTable([]PriorityRule{
		{ControlTitle: "A", Priority: TierHigh, Recommendation: "first"},
		{ControlTitle: "A", Priority: TierLow, Recommendation: "second"},
	})

	r, ok := rt.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "first", r.Recommendation)
	assert.Equal(t, 1, rt.Len())
}
