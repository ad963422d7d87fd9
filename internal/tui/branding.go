package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// titleGradient runs from amber to orange across the title.
var titleGradient = []string{
	"#F4AA41",
	"#F29A3A",
	"#EF8A33",
	"#EC7A2C",
	"#E96A25",
	"#E65A1E",
}

// renderTitle renders the page title with a left-to-right gradient.
func renderTitle(title string) string {
	runes := []rune(title)
	if len(runes) == 0 {
		return ""
	}

	var b strings.Builder
	for i, r := range runes {
		idx := i * len(titleGradient) / len(runes)
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(titleGradient[idx])).
			Bold(true).
			Render(string(r)))
	}
	return b.String()
}

// renderEmblem draws the small mark shown above the title.
func renderEmblem() string {
	mark := []string{
		" ▄▀▀▄▄▀▀▄ ",
		" █ ●  ● █ ",
		"  ▀▄▄▄▄▀  ",
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(titleGradient[0])).
		Render(strings.Join(mark, "\n"))
}

// hyperlink wraps text in an OSC 8 escape so terminals that support it make
// the footer clickable. Others show the text only.
func hyperlink(url, text string) string {
	return fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", url, text)
}

// renderFooterLink renders the outbound link.
func renderFooterLink(url, text string) string {
	styled := lipgloss.NewStyle().
		Foreground(ColorBlue).
		Underline(true).
		Render(text)
	return hyperlink(url, styled)
}
