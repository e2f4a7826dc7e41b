// Package ansi holds the escape sequences and palette presets used when
// rendering JSON to a terminal.
package ansi

// Base ANSI escape codes.
const (
	Reset      = "\x1b[0m"
	Bold       = "\x1b[1m"
	Faint      = "\x1b[90m"
	Red        = "\x1b[31m"
	Green      = "\x1b[32m"
	Yellow     = "\x1b[33m"
	Blue       = "\x1b[34m"
	Magenta    = "\x1b[35m"
	Cyan       = "\x1b[36m"
	BrightRed  = "\x1b[1;31m"
	BrightBlue = "\x1b[1;34m"
)

// Palette assigns an escape sequence to each JSON token class. An empty
// field leaves that token class unstyled.
type Palette struct {
	Key         string
	String      string
	Num         string
	Bool        string
	Nil         string
	Brackets    string
	Punctuation string
}

// PaletteJQDefault mirrors jq's default JQ_COLORS.
var PaletteJQDefault = Palette{
	Key:         "\x1b[1;34m",
	String:      "\x1b[0;32m",
	Num:         "\x1b[0;39m",
	Bool:        "\x1b[0;39m",
	Nil:         "\x1b[0;90m",
	Brackets:    "\x1b[1;39m",
	Punctuation: "\x1b[1;39m",
}

// PaletteClassic is 16-colour friendly.
var PaletteClassic = Palette{
	Key:         Cyan,
	String:      BrightBlue,
	Num:         Magenta,
	Bool:        Yellow,
	Nil:         Faint,
	Brackets:    Faint,
	Punctuation: Faint,
}

// PaletteTokyoNight uses muted blues and violets.
var PaletteTokyoNight = Palette{
	Key:         "\x1b[38;5;69m",
	String:      "\x1b[38;5;110m",
	Num:         "\x1b[38;5;176m",
	Bool:        "\x1b[38;5;117m",
	Nil:         "\x1b[38;5;244m",
	Brackets:    "\x1b[38;5;74m",
	Punctuation: "\x1b[38;5;244m",
}

// PaletteCatppuccinMocha is the pastel mocha flavour.
var PaletteCatppuccinMocha = Palette{
	Key:         "\x1b[38;5;217m",
	String:      "\x1b[38;5;183m",
	Num:         "\x1b[38;5;147m",
	Bool:        "\x1b[38;5;152m",
	Nil:         "\x1b[38;5;244m",
	Brackets:    "\x1b[38;5;182m",
	Punctuation: "\x1b[38;5;244m",
}

// PaletteGruvboxLight targets light terminal backgrounds.
var PaletteGruvboxLight = Palette{
	Key:         "\x1b[38;5;130m",
	String:      "\x1b[38;5;108m",
	Num:         "\x1b[38;5;66m",
	Bool:        "\x1b[38;5;142m",
	Nil:         "\x1b[38;5;180m",
	Brackets:    "\x1b[38;5;136m",
	Punctuation: "\x1b[38;5;180m",
}

// PaletteSolarizedNightfall is a dark solarized variant.
var PaletteSolarizedNightfall = Palette{
	Key:         "\x1b[38;5;37m",
	String:      "\x1b[38;5;86m",
	Num:         "\x1b[38;5;61m",
	Bool:        "\x1b[38;5;65m",
	Nil:         "\x1b[38;5;239m",
	Brackets:    "\x1b[38;5;33m",
	Punctuation: "\x1b[38;5;239m",
}
