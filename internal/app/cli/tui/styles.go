package tui

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cyanBold         = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	greenStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	greenCheck       = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	questionMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	questionStyle    = lipgloss.NewStyle().Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	inputPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	inputTextStyle   = lipgloss.NewStyle()
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Question is an answered wizard prompt, echoed above the current one.
type Question struct {
	Question string
	Answer   string
	Complete bool
}

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// isValidIdent reports whether s can be used as a binary name or build step:
// letters, digits, hyphens and underscores only.
func isValidIdent(s string) bool {
	return identPattern.MatchString(s)
}
