package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/starboard/internal/counter"
	"github.com/tinytelemetry/starboard/internal/model"
)

const (
	glyphWidth  = 6
	glyphHeight = 5

	// tile window, excluding border and horizontal padding
	tileInnerWidth  = glyphWidth
	tileInnerHeight = glyphHeight + 2
	tileRestRow     = 1
)

// glyphs are 3x5 block digits; each cell is drawn two columns wide.
var glyphs = map[byte][glyphHeight]string{
	'0': {"###", "# #", "# #", "# #", "###"},
	'1': {" # ", "## ", " # ", " # ", "###"},
	'2': {"###", "  #", "###", "#  ", "###"},
	'3': {"###", "  #", "###", "  #", "###"},
	'4': {"# #", "# #", "###", "  #", "  #"},
	'5': {"###", "#  ", "###", "  #", "###"},
	'6': {"###", "#  ", "###", "# #", "###"},
	'7': {"###", "  #", "  #", "  #", "  #"},
	'8': {"###", "# #", "###", "# #", "###"},
	'9': {"###", "# #", "###", "  #", "###"},
}

// glyphRows returns the rendered rows for c. Characters without a glyph are
// drawn as themselves on the middle row.
func glyphRows(c byte) []string {
	rows := make([]string, glyphHeight)
	g, ok := glyphs[c]
	if !ok {
		for i := range rows {
			rows[i] = strings.Repeat(" ", glyphWidth)
		}
		mid := strings.Repeat(" ", glyphWidth/2-1) + string(c)
		rows[glyphHeight/2] = mid + strings.Repeat(" ", glyphWidth-len(mid))
		return rows
	}
	for i, line := range g {
		var b strings.Builder
		for _, cell := range line {
			if cell == '#' {
				b.WriteString("██")
			} else {
				b.WriteString("  ")
			}
		}
		rows[i] = b.String()
	}
	return rows
}

// tile is one animated position of the counter strip. It keeps the digit it
// is leaving so both can be drawn while the transition runs.
type tile struct {
	view    counter.DigitView
	prev    byte
	hasPrev bool
	start   time.Time
	moving  bool
}

// progress returns how far the transition has run, in [0, 1].
func (t *tile) progress(now time.Time) float64 {
	if !t.moving {
		return 1
	}
	p := float64(now.Sub(t.start)) / float64(model.TransitionDuration)
	if p >= 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// animating reports whether the transition is still running at now.
func (t *tile) animating(now time.Time) bool {
	return t.moving && now.Sub(t.start) < model.TransitionDuration
}

// settle drops the exit frame once the transition is over.
func (t *tile) settle(now time.Time) {
	if t.moving && !t.animating(now) {
		t.moving = false
		t.hasPrev = false
	}
}

// syncTiles reconciles tiles with a freshly derived view. A tile whose key
// changed starts a transition from its old digit; new positions slide in
// from empty.
func syncTiles(tiles []tile, views []counter.DigitView, now time.Time) []tile {
	out := make([]tile, len(views))
	for i, v := range views {
		if i >= len(tiles) {
			out[i] = tile{view: v, start: now, moving: true}
			continue
		}
		old := tiles[i]
		if old.view.Key() == v.Key() {
			old.view = v
			out[i] = old
			continue
		}
		out[i] = tile{view: v, prev: old.view.Char, hasPrev: true, start: now, moving: true}
	}
	return out
}

// staticTiles builds tiles showing views without any transition.
func staticTiles(views []counter.DigitView) []tile {
	out := make([]tile, len(views))
	for i, v := range views {
		out[i] = tile{view: v}
	}
	return out
}

// rowOffsets returns the top row of the entering and exiting glyph at
// progress p. Down enters from above and exits downward; Up is the reverse.
func rowOffsets(dir counter.Direction, p float64) (enter, exit int) {
	travel := tileInnerHeight
	remaining := int((1-p)*float64(travel) + 0.5)
	done := int(p*float64(travel) + 0.5)
	if dir == counter.Up {
		return tileRestRow + remaining, tileRestRow - done
	}
	return tileRestRow - remaining, tileRestRow + done
}

func fadeColor(p float64) lipgloss.Color {
	idx := int(p * float64(len(fadeRamp)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(fadeRamp) {
		idx = len(fadeRamp) - 1
	}
	return fadeRamp[idx]
}

// render draws the tile at now. Rows outside the window are clipped.
func (t *tile) render(now time.Time) string {
	p := t.progress(now)
	enterAt, exitAt := rowOffsets(t.view.Direction, p)
	if !t.moving {
		enterAt = tileRestRow
	}

	blank := strings.Repeat(" ", tileInnerWidth)
	rows := make([]string, tileInnerHeight)
	colors := make([]lipgloss.Color, tileInnerHeight)
	for i := range rows {
		rows[i] = blank
		colors[i] = ColorWhite
	}

	paint := func(top int, glyph []string, c lipgloss.Color) {
		for i, line := range glyph {
			r := top + i
			if r < 0 || r >= tileInnerHeight {
				continue
			}
			rows[r] = line
			colors[r] = c
		}
	}

	if t.moving && t.hasPrev {
		paint(exitAt, glyphRows(t.prev), fadeColor(1-p))
	}
	paint(enterAt, glyphRows(t.view.Char), fadeColor(p))

	lines := make([]string, tileInnerHeight)
	for i, row := range rows {
		lines[i] = lipgloss.NewStyle().
			Foreground(colors[i]).
			Background(ColorTile).
			Bold(true).
			Render(row)
	}

	return lipgloss.NewStyle().
		Background(ColorTile).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorGray).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// renderStrip joins the tiles horizontally with a one-column gap.
func renderStrip(tiles []tile, now time.Time) string {
	parts := make([]string, 0, len(tiles)*2)
	for i := range tiles {
		if i > 0 {
			parts = append(parts, " ")
		}
		parts = append(parts, tiles[i].render(now))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
