package ui

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"golang.org/x/term"
)

// TerminalOutput wraps f for ANSI output and reports whether colors should be
// used. Colors are off when f is not a terminal or NO_COLOR is set.
func TerminalOutput(f *os.File, disableColor bool) (io.Writer, bool) {
	if disableColor || os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(f.Fd())) {
		return colorable.NewNonColorable(f), false
	}
	return colorable.NewColorable(f), true
}
