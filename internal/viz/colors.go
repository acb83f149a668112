package viz

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cssColors covers the named colors people usually put in an airway config.
var cssColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"pink":    "#ffc0cb",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"navy":    "#000080",
	"teal":    "#008080",
	"maroon":  "#800000",
	"olive":   "#808000",
	"gold":    "#ffd700",
	"skyblue": "#87ceeb",
	"coral":   "#ff7f50",
}

// Color converts a config color token (CSS name, #rgb, #rrggbb or ANSI
// index) to a lipgloss color. ok is false for tokens it cannot place.
func Color(token string) (c lipgloss.Color, ok bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return "", false
	}
	if hex, found := cssColors[t]; found {
		return lipgloss.Color(hex), true
	}
	if strings.HasPrefix(t, "#") {
		switch len(t) {
		case 7:
			return lipgloss.Color(t), true
		case 4:
			return lipgloss.Color("#" + strings.Repeat(t[1:2], 2) + strings.Repeat(t[2:3], 2) + strings.Repeat(t[3:4], 2)), true
		}
		return "", false
	}
	if n, err := strconv.Atoi(t); err == nil && n >= 0 && n <= 255 {
		return lipgloss.Color(t), true
	}
	return "", false
}

func colorOr(token string, fallback lipgloss.Color) lipgloss.Color {
	if c, ok := Color(token); ok {
		return c
	}
	return fallback
}
