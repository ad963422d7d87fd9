package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the page shell and the tiles.
var (
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorGray  = lipgloss.Color("#6B7280")
	ColorNavy  = lipgloss.Color("#1E2A4A")
	ColorBlue  = lipgloss.Color("#3B82F6")

	// ColorTile matches the tile background of the web page.
	ColorTile = lipgloss.Color("#1F2937")
)

// fadeRamp steps from nearly invisible on the tile background to full white.
var fadeRamp = []lipgloss.Color{
	"#2F3845",
	"#4B5563",
	"#7B8491",
	"#B5BCC6",
	"#FFFFFF",
}
