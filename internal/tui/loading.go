package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 120 * time.Millisecond

// renderSpinner renders the in-flight indicator.
// The frame is selected from the clock so it animates on re-render.
func renderSpinner(now time.Time) string {
	frame := spinnerFrames[now.UnixMilli()/spinnerInterval.Milliseconds()%int64(len(spinnerFrames))]
	return lipgloss.NewStyle().
		Background(ColorNavy).
		Foreground(ColorGray).
		Render(frame)
}

// SpinnerTickMsg triggers a re-render for the in-flight indicator.
type SpinnerTickMsg struct{}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(_ time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}
