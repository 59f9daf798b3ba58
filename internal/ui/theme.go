package ui

// Palette holds the ANSI sequences used by one theme
type Palette struct {
	User   string
	Bot    string
	Status string
	Muted  string
	Accent string
	Reset  string
}

var (
	darkPalette = Palette{
		User:   "\x1b[1;36m",
		Bot:    "\x1b[1;35m",
		Status: "\x1b[33m",
		Muted:  "\x1b[90m",
		Accent: "\x1b[1;97m",
		Reset:  "\x1b[0m",
	}

	lightPalette = Palette{
		User:   "\x1b[1;34m",
		Bot:    "\x1b[1;32m",
		Status: "\x1b[35m",
		Muted:  "\x1b[37m",
		Accent: "\x1b[1;30m",
		Reset:  "\x1b[0m",
	}
)

// PaletteFor returns the palette of a theme. With color disabled every
// sequence is empty so the output stays plain text.
func PaletteFor(dark, color bool) Palette {
	switch {
	case !color:
		return Palette{}
	case dark:
		return darkPalette
	default:
		return lightPalette
	}
}

// ThemeGlyph is the toggle icon shown for a theme
func ThemeGlyph(dark bool) string {
	if dark {
		return "🌙"
	}
	return "☀️"
}
