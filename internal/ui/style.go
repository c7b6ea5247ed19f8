package ui

import (
	"os"

	"github.com/amonks/changespec/changespec"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const defaultTerminalWidth = 80

var statusColors = map[changespec.Status]lipgloss.Color{
	changespec.StatusNeedsPresubmits:   lipgloss.Color("214"),
	changespec.StatusRunningPresubmits: lipgloss.Color("33"),
	changespec.StatusNeedsQA:           lipgloss.Color("171"),
	changespec.StatusPreMailed:         lipgloss.Color("39"),
	changespec.StatusMailed:            lipgloss.Color("45"),
	changespec.StatusChangesRequested:  lipgloss.Color("203"),
	changespec.StatusSubmitted:         lipgloss.Color("42"),
}

// StatusLabel renders a status for display, coloured when stdout is a
// terminal that accepts colour.
func StatusLabel(status changespec.Status) string {
	label := status.DisplayName()
	if !ColorEnabled() {
		return label
	}
	color, ok := statusColors[status]
	if !ok {
		return label
	}
	return lipgloss.NewStyle().Foreground(color).Bold(status.IsSyncable()).Render(label)
}

// Heading renders a bold section heading.
func Heading(value string) string {
	if !ColorEnabled() {
		return value
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")).Render(value)
}

// ColorEnabled reports whether stdout should receive ANSI styling.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}
