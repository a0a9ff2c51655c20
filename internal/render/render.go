// file: internal/render/render.go
// version: 1.0.0
// guid: 9a1e7c35-2b86-4f40-8d93-f6c0b2e5a718

// Package render formats artworks and status lines for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jdfalk/art-roulette/internal/models"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	artistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	catalogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Card renders one artwork as a bordered block.
func Card(a *models.Artwork, catalogName string) string {
	if a == nil {
		return ""
	}
	lines := []string{
		titleStyle.Render(a.Title),
		artistStyle.Render(a.Artist),
	}
	if a.DateDisplay != "" {
		lines = append(lines, dateStyle.Render(a.DateDisplay))
	}
	lines = append(lines, "")
	lines = append(lines, field("image", a.ImageURL))
	if a.SourceURL != "" {
		lines = append(lines, field("page", a.SourceURL))
	}
	if a.Department != "" {
		lines = append(lines, field("department", a.Department))
	}
	if a.CreditLine != "" {
		lines = append(lines, field("credit", a.CreditLine))
	}
	if catalogName != "" {
		lines = append(lines, catalogStyle.Render(fmt.Sprintf("%s #%s", catalogName, a.ID)))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

// Success, Warning and Error style one-line status messages.
func Success(msg string) string { return successStyle.Render("✓ " + msg) }
func Warning(msg string) string { return warningStyle.Render("! " + msg) }
func Error(msg string) string   { return errorStyle.Render("✗ " + msg) }

// Header styles a section heading.
func Header(msg string) string { return headerStyle.Render(msg) }

// Loading is shown while a find is in flight.
func Loading(catalogName string) string {
	return dateStyle.Render(fmt.Sprintf("Finding something from %s...", catalogName))
}

// KeyHelp lists the interactive key bindings.
func KeyHelp() string {
	return labelStyle.Render("[enter/n] shuffle  [r] refresh  [s] save  [o] open page  [c] cancel  [1-3] catalog  [q] quit")
}
