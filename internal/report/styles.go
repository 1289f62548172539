package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorMode selects when output is colored.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode accepts auto, always and never.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// Profile resolves mode for w. Auto colors only terminals and respects
// NO_COLOR through termenv.
func Profile(mode ColorMode, w io.Writer) termenv.Profile {
	switch mode {
	case ColorAlways:
		return termenv.ANSI256
	case ColorNever:
		return termenv.Ascii
	}
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}

// styles are bound to one renderer so several reporters can target
// different writers.
type styles struct {
	header  lipgloss.Style
	group   lipgloss.Style
	bold    lipgloss.Style
	warn    lipgloss.Style
	note    lipgloss.Style
	faster  lipgloss.Style
	slower  lipgloss.Style
	same    lipgloss.Style
	newMark lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")), // Green
		group:   r.NewStyle().Foreground(lipgloss.Color("2")),            // Green
		bold:    r.NewStyle().Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),            // Yellow
		note:    r.NewStyle().Foreground(lipgloss.Color("2")),            // Green
		faster:  r.NewStyle().Foreground(lipgloss.Color("2")),            // Green
		slower:  r.NewStyle().Foreground(lipgloss.Color("1")),            // Red
		same:    r.NewStyle().Foreground(lipgloss.Color("4")),            // Blue
		newMark: r.NewStyle().Foreground(lipgloss.Color("3")),            // Yellow
		label:   r.NewStyle().Foreground(lipgloss.Color("6")),            // Cyan
		dim:     r.NewStyle().Foreground(lipgloss.Color("8")),            // Gray
	}
}
