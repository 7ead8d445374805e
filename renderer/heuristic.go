package renderer

import (
	"strconv"
	"strings"
)

// SVG's intrinsic replaced-element default size, used when the markup carries
// no usable width/height attributes.
const (
	DefaultGuessWidth  = 300
	DefaultGuessHeight = 150
)

// GuessDimensions makes a best-effort width/height guess from raw SVG markup
// by locating the first width="…" and height="…" numeric attribute
// occurrences. The guess only seeds the initial viewport before real
// measurement; it is never the final output size.
func GuessDimensions(svg string) (width, height float64) {
	width = DefaultGuessWidth
	height = DefaultGuessHeight

	if w, ok := extractAttribute(svg, "width"); ok {
		width = w
	}
	if h, ok := extractAttribute(svg, "height"); ok {
		height = h
	}
	return width, height
}

// extractAttribute finds the first attr="value" occurrence and parses the
// value as a number, tolerating common unit suffixes. Works on arbitrarily
// malformed markup, which is why this is string scanning and not an XML parse.
func extractAttribute(svg, attr string) (float64, bool) {
	pattern := attr + `="`
	start := strings.Index(svg, pattern)
	if start == -1 {
		return 0, false
	}

	start += len(pattern)
	end := strings.Index(svg[start:], `"`)
	if end == -1 {
		return 0, false
	}

	value := svg[start : start+end]
	for _, unit := range []string{"px", "mm", "cm", "pt", "pc", "in"} {
		value = strings.TrimSuffix(value, unit)
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
