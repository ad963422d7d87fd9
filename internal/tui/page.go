package tui

import tea "github.com/charmbracelet/bubbletea"

// Page is a top-level screen in the TUI.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string

	// Close tears the page down. After Close the page issues no further
	// requests and stops rescheduling its timers.
	Close()
}
