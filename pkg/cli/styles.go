package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorFailure = lipgloss.Color("#EF4444")
	colorHeading = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
)

// Styles colors command output for the terminal it is written to. Writers
// that are not terminals, such as pipes and files, get plain text.
type Styles struct {
	Success lipgloss.Style
	Failure lipgloss.Style
	Heading lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns styles rendered for w's color capabilities.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	return &Styles{
		Success: r.NewStyle().Foreground(colorSuccess),
		Failure: r.NewStyle().Foreground(colorFailure).Bold(true),
		Heading: r.NewStyle().Foreground(colorHeading).Bold(true),
		Muted:   r.NewStyle().Foreground(colorMuted),
	}
}

// OK formats a success line prefixed with a check mark.
func (s *Styles) OK(format string, args ...any) string {
	return s.Success.Render("✓ " + fmt.Sprintf(format, args...))
}

// Fail formats a failure line prefixed with a cross.
func (s *Styles) Fail(format string, args ...any) string {
	return s.Failure.Render("✗ " + fmt.Sprintf(format, args...))
}
