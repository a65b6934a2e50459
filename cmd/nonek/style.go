package main

import (
	"errors"
	"nonek/pkg/diag"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorError   = lipgloss.Color("#EF4444")
	colorSuccess = lipgloss.Color("#10B981")
	colorMuted   = lipgloss.Color("#94A3B8")
	colorPrimary = lipgloss.Color("#8B5CF6")
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	snippetStyle = lipgloss.NewStyle().Foreground(colorMuted)
	okStyle      = lipgloss.NewStyle().Foreground(colorSuccess)
	failStyle    = lipgloss.NewStyle().Foreground(colorError)
	bannerStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// renderError styles a diagnostic header and its snippet separately.
// Joined errors are rendered one after another.
func renderError(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		parts := []string{}
		for _, e := range joined.Unwrap() {
			parts = append(parts, renderError(e))
		}
		return strings.Join(parts, "\n")
	}

	var d *diag.Error
	if !errors.As(err, &d) {
		return errorStyle.Render("error:") + " " + err.Error()
	}
	out := errorStyle.Render(d.Header())
	if d.Snippet != "" {
		out += "\n" + snippetStyle.Render(d.Snippet)
	}
	return out
}
