// Package styles holds the lipgloss styles shared by CLI output.
package styles

import "github.com/charmbracelet/lipgloss"

// ANSI palette for broad terminal compatibility.
var (
	Primary = lipgloss.Color("4")
	Success = lipgloss.Color("2")
	Warning = lipgloss.Color("3")
	Error   = lipgloss.Color("1")
	Muted   = lipgloss.Color("245")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("7")).
		Width(16)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// Field renders a "label value" line with an aligned label column.
func Field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, Label.Render(label), value)
}

// Indicators.
const (
	CheckMark = "✓"
	CrossMark = "✗"
)
