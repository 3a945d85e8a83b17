package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ParseHexColor converts a hex color string (e.g., "#FF0000" or "FF0000") to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color length: %s", hex)
	}

	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %s: %w", hex, err)
	}
	return tcell.NewHexColor(int32(rgb)), nil
}

// ColorOr parses hex, returning fallback if it is malformed.
func ColorOr(hex string, fallback tcell.Color) tcell.Color {
	c, err := ParseHexColor(hex)
	if err != nil {
		return fallback
	}
	return c
}

// glyphRune returns the first rune of s, or '?' when s is empty.
func glyphRune(s string) rune {
	for _, r := range s {
		return r
	}
	return '?'
}
