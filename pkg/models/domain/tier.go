package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier is the resolved priority of a finding
type Tier string

const (
	TierCritical Tier = "Critical"
	TierHigh     Tier = "High"
	TierMedium   Tier = "Medium"
	TierLow      Tier = "Low"
	TierSafe     Tier = "Safe/Well Architected"
	TierNoData   Tier = "No data"
)

// NoRecommendation is the recommendation text of findings without a matching rule
const NoRecommendation = "No recommendation available"

// TierOrder is the fixed presentation order of tiers in summaries
var TierOrder = []Tier{TierHigh, TierMedium, TierLow, TierCritical, TierSafe, TierNoData}

// ParseRuleTier parses the priority column of the lookup table.
// Besides the tier names it accepts the numeric ranks 1 (High), 2 (Medium) and 3 (Low).
func ParseRuleTier(raw string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "1":
		return TierHigh, nil
	case "medium", "2":
		return TierMedium, nil
	case "low", "3":
		return TierLow, nil
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// Color is the display color assigned to a tier or severity
type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorWhite  Color = "white"
	ColorPurple Color = "purple"
)

var colorHex = map[Color]string{
	ColorRed:    "FF0000",
	ColorOrange: "FFA500",
	ColorYellow: "FFFF00",
	ColorGreen:  "00FF00",
	ColorWhite:  "FFFFFF",
	ColorPurple: "800080",
}

// ParseColor accepts a named color or a six digit hex value, with or without '#'
func ParseColor(raw string) (Color, error) {
	raw = strings.TrimSpace(raw)
	if _, ok := colorHex[Color(strings.ToLower(raw))]; ok {
		return Color(strings.ToLower(raw)), nil
	}
	h := strings.ToUpper(strings.TrimPrefix(raw, "#"))
	if len(h) != 6 {
		return "", fmt.Errorf("invalid color %q", raw)
	}
	if _, err := strconv.ParseUint(h, 16, 32); err != nil {
		return "", fmt.Errorf("invalid color %q", raw)
	}
	return Color("#" + h), nil
}

// Hex returns the RGB fill of the color without a leading '#'
func (c Color) Hex() string {
	if h, ok := colorHex[c]; ok {
		return h
	}
	if strings.HasPrefix(string(c), "#") && len(c) == 7 {
		return string(c[1:])
	}
	return "FFFFFF"
}

// RGB returns the color components, used by renderers that take numeric colors
func (c Color) RGB() (r, g, b int) {
	v, _ := strconv.ParseUint(c.Hex(), 16, 32)
	return int(v>>16) & 0xFF, int(v>>8) & 0xFF, int(v) & 0xFF
}

// TextHex returns a readable font color for text drawn on top of the color
func (c Color) TextHex() string {
	switch c {
	case ColorRed, ColorPurple:
		return "FFFFFF"
	case ColorOrange, ColorYellow, ColorGreen, ColorWhite:
		return "000000"
	}
	r, g, b := c.RGB()
	if r*299+g*587+b*114 < 128000 {
		return "FFFFFF"
	}
	return "000000"
}
