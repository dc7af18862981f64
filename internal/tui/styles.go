package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Palette, 256-color codes.
const (
	blue   = lipgloss.Color("39")
	grey   = lipgloss.Color("245")
	dim    = lipgloss.Color("240")
	white  = lipgloss.Color("255")
	green  = lipgloss.Color("76")
	orange = lipgloss.Color("214")
	red    = lipgloss.Color("203")
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(blue).MarginBottom(1)
	statsStyle      = lipgloss.NewStyle().Foreground(grey).MarginBottom(1)
	statusStyle     = lipgloss.NewStyle().Foreground(grey)
	breadcrumbStyle = lipgloss.NewStyle().Foreground(grey)
	filterStyle     = lipgloss.NewStyle().Foreground(orange)
	helpStyle       = lipgloss.NewStyle().Foreground(dim).MarginTop(1)

	// Column headings get an underline rule.
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dim).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(dim)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(blue)
	fileStyle     = lipgloss.NewStyle().Foreground(white)

	// Member actions as the delete command would apply them.
	retainedStyle = lipgloss.NewStyle().Bold(true).Foreground(green)
	deleteStyle   = lipgloss.NewStyle().Foreground(red)

	barFilledStyle = lipgloss.NewStyle().Foreground(orange)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(dim)
)

// FormatSize formats a byte count for display.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

// FormatCount formats a count for display.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
