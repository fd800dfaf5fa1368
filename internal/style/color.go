package style

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// NormalizeColor returns c with a leading '#'. A "0x" prefix is rewritten.
func NormalizeColor(c string) string {
	c = strings.TrimSpace(c)
	switch {
	case c == "":
		return ""
	case strings.HasPrefix(c, "#"):
		return c
	case strings.HasPrefix(c, "0x"), strings.HasPrefix(c, "0X"):
		return "#" + c[2:]
	default:
		return "#" + c
	}
}

// IsHexColor reports whether c is a #rgb or #rrggbb color.
func IsHexColor(c string) bool {
	_, ok := ParseColor(c)
	return ok
}

// ParseColor parses a normalised hex color.
func ParseColor(c string) (colorful.Color, bool) {
	col, err := colorful.Hex(NormalizeColor(c))
	if err != nil {
		return colorful.Color{}, false
	}
	return col, true
}
