package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Lattice banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _       _   _   _   _          ", "#818cf8"},
		{"| | __ _| |_| |_(_) ___ ___     ", "#a78bfa"},
		{"| |/ _` | __| __| |/ __/ _ \\    ", "#c084fc"},
		{"| | (_| | |_| |_| | (_|  __/    ", "#e879f9"},
		{"|_|\\__,_|\\__|\\__|_|\\___\\___|    ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  block page builder v"+version).Faint())
	fmt.Fprintln(w)
}
