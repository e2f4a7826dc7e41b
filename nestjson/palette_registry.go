package nestjson

import (
	"fmt"
	"sort"
	"strings"

	"pkt.systems/unitsctl/internal/ansi"
)

const (
	paletteDefaultName = "default"
	paletteNoneName    = "none"
)

var paletteRegistry = map[string]ansi.Palette{
	paletteDefaultName:    ansi.PaletteJQDefault,
	"jq":                  ansi.PaletteJQDefault,
	"classic":             ansi.PaletteClassic,
	"tokyo-night":         ansi.PaletteTokyoNight,
	"catppuccin-mocha":    ansi.PaletteCatppuccinMocha,
	"gruvbox-light":       ansi.PaletteGruvboxLight,
	"solarized-nightfall": ansi.PaletteSolarizedNightfall,
}

// ColorPalette holds the escape sequence written before each token class.
type ColorPalette struct {
	Key         string
	String      string
	Number      string
	True        string
	False       string
	Null        string
	Brackets    string
	Punctuation string
}

// PaletteNames returns the sorted list of palette names, including "none".
func PaletteNames() []string {
	names := make([]string, 0, len(paletteRegistry)+1)
	for name := range paletteRegistry {
		names = append(names, name)
	}
	names = append(names, paletteNoneName)
	sort.Strings(names)
	return names
}

// ResolvePalette looks up a palette by name. An empty name selects the
// default palette and "none" disables colouring. When enableColor is false
// the name is still validated but a no-color palette is returned.
func ResolvePalette(name string, enableColor bool) (ColorPalette, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = paletteDefaultName
	}
	if name == paletteNoneName {
		return NoColorPalette(), nil
	}
	ap, ok := paletteRegistry[name]
	if !ok {
		return ColorPalette{}, fmt.Errorf("unknown palette %q (use one of: %s)", name, strings.Join(PaletteNames(), ", "))
	}
	if !enableColor {
		return NoColorPalette(), nil
	}
	return colorPaletteFromAnsi(ap), nil
}

func colorPaletteFromAnsi(ap ansi.Palette) ColorPalette {
	brackets := ap.Brackets
	if brackets == "" {
		brackets = ap.Nil
	}
	punct := ap.Punctuation
	if punct == "" {
		punct = brackets
	}
	return ColorPalette{
		Key:         ap.Key,
		String:      ap.String,
		Number:      ap.Num,
		True:        ap.Bool,
		False:       ap.Bool,
		Null:        ap.Nil,
		Brackets:    brackets,
		Punctuation: punct,
	}
}

// NoColorPalette disables all styling.
func NoColorPalette() ColorPalette {
	return ColorPalette{}
}
