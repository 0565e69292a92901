package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}

// paint applies attrs to text when useColor is set, overriding fatih/color's
// own tty detection.
func paint(text string, useColor bool, attrs ...color.Attribute) string {
	if !useColor {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// Bold returns bold text if color is enabled.
func Bold(text string, useColor bool) string {
	return paint(text, useColor, color.Bold)
}

// RowStatus writes a row with label, detail, and a status icon.
func RowStatus(sec *Section, label, detail, status string, useColor bool) {
	icon := StatusIcon(status, useColor)
	if detail != "" {
		sec.Row("%s — %s %s", label, detail, icon)
	} else {
		sec.Row("%s %s", label, icon)
	}
}

// RowWarnings writes one row per warning, prefixed with a warning marker.
func RowWarnings(sec *Section, warnings []string, useColor bool) {
	for _, w := range warnings {
		sec.Row("%s %s", paint("WARN", useColor, color.FgYellow), w)
	}
}
