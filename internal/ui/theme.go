package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Theme holds the lipgloss styles applied to user-facing reports.
type Theme struct {
	Header  lipgloss.Style
	Name    lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultTheme returns the styles used when color output is enabled.
func DefaultTheme() Theme {
	return Theme{
		Header:  lipgloss.NewStyle().Bold(true),
		Name:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Styler applies theme styles only when color output is enabled.
type Styler struct {
	theme    Theme
	useColor bool
}

// NewStyler constructs a Styler.
func NewStyler(theme Theme, useColor bool) Styler {
	return Styler{theme: theme, useColor: useColor}
}

// Theme exposes the configured styles.
func (styler Styler) Theme() Theme {
	return styler.theme
}

// Render styles text when color is enabled and returns it unchanged otherwise.
func (styler Styler) Render(text string, style lipgloss.Style) string {
	if !styler.useColor {
		return text
	}
	return style.Render(text)
}

// IsTerminal reports whether writer is a file descriptor attached to a terminal.
func IsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile || file == nil {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
