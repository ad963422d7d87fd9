package tui

import tea "github.com/charmbracelet/bubbletea"

// App is the top-level Bubble Tea model. It tracks the terminal size and
// hands everything else to its page.
type App struct {
	page   Page
	width  int
	height int
}

// NewApp wraps page.
func NewApp(page Page) *App {
	return &App{page: page}
}

func (a *App) Init() tea.Cmd {
	return a.page.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = wsm.Width
		a.height = wsm.Height
	}
	return a, a.page.Update(msg)
}

func (a *App) View() string {
	return a.page.View(a.width, a.height)
}

// Close tears down the page. Safe to call more than once.
func (a *App) Close() {
	a.page.Close()
}
