package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("39")  // Cyan
	ColorSecondary = lipgloss.Color("212") // Pink
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("245") // Gray
	ColorHighlight = lipgloss.Color("226") // Yellow
)

// Styles for various UI elements
var (
	// Text styles
	Bold      = lipgloss.NewStyle().Bold(true)
	Dim       = lipgloss.NewStyle().Foreground(ColorMuted)
	Highlight = lipgloss.NewStyle().Foreground(ColorHighlight)
	Header    = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	// Status styles
	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Error   = lipgloss.NewStyle().Foreground(ColorError)

	// Result styles
	ResultScore = lipgloss.NewStyle().Foreground(ColorSuccess)
	Document    = lipgloss.NewStyle().Foreground(ColorPrimary)
	ChunkID     = lipgloss.NewStyle().Foreground(ColorMuted)

	// Section styles
	SectionTitle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true).
			MarginTop(1)
)

// FormatScore formats a similarity score for result listings.
func FormatScore(score float64) string {
	return ResultScore.Render(fmt.Sprintf("score=%.4f", score))
}

// FormatProvenance renders a chunk's document and page reference.
func FormatProvenance(document string, page int) string {
	return Document.Render(document) + Dim.Render(fmt.Sprintf(" p.%d", page))
}
