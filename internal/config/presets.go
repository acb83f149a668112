package config

import "sort"

var Presets = map[string]Options{
	"default": {},
	"compact": {
		Height: Ptr(Height(64)),
	},
	"tall": {
		Height:    Ptr(Height(320)),
		Resizable: Ptr(true),
	},
	"busy": {
		Height: Ptr(Height(256)),
		Lazy:   Ptr(false),
	},
	"sunset": {
		BackgroundColor: Ptr("#2d1b2e"),
		ColorFromLeft:   Ptr("#feca57"),
		ColorFromRight:  Ptr("#ff6b6b"),
	},
}

func GetPreset(name string) (Options, bool) {
	o, ok := Presets[name]
	return o, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
