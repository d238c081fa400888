// Package ui holds terminal presentation shared by the run summary and the
// archive browser.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	ColorPrimary   = lipgloss.Color("62")  // Purple
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorMuted     = lipgloss.Color("240") // Darker gray
	ColorHighlight = lipgloss.Color("212") // Pink
	ColorSuccess   = lipgloss.Color("78")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
)

// PlatformColors tint each platform's header.
var PlatformColors = map[string]lipgloss.Color{
	"youtube":   lipgloss.Color("196"),
	"instagram": lipgloss.Color("205"),
	"tiktok":    lipgloss.Color("51"),
}

// Title style for the top banner.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(ColorPrimary).
	Padding(0, 1)

// SectionHeader style for platform headings.
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	MarginTop(1).
	Padding(0, 1)

// SelectedItem style for the currently highlighted item.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(ColorPrimary).
	Padding(0, 1)

// NormalItem style for list rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// Meta style for scores, counts and dates.
var Meta = lipgloss.NewStyle().
	Foreground(ColorSecondary)

// CategoryBadge style for category labels.
var CategoryBadge = lipgloss.NewStyle().
	Foreground(ColorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// HotBadge marks trending insights.
var HotBadge = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(ColorError).
	Bold(true).
	Padding(0, 1)

// Live and Fallback mark where a platform's data came from.
var (
	Live     = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	Fallback = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(ColorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(ColorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorError).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorMuted).
	Padding(1, 2)

// Summary style for the daily summary line.
var Summary = lipgloss.NewStyle().
	Italic(true).
	Foreground(ColorHighlight).
	Padding(0, 1)
