package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`  _                           _`,
	` | |__   __ _ _ __ __ _  __ _(_)_ __`,
	` | '_ \ / _' | '__/ _' |/ _' | | '_ \`,
	` | |_) | (_| | | | (_| | (_| | | | | |`,
	` |_.__/ \__,_|_|  \__, |\__,_|_|_| |_|`,
	`                  |___/`,
}

// Warm gradient, one color per line.
var bannerColors = []string{"#fbbf24", "#f59e0b", "#f97316", "#ef4444", "#e11d48", "#be123c"}

// PrintBanner writes the bargain banner and version to w.
// Colors degrade to whatever the terminal behind w supports.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, p.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, p.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
