package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/starboard/internal/counter"
	"github.com/tinytelemetry/starboard/internal/model"
)

func TestGlyphRows_FixedWidth(t *testing.T) {
	t.Parallel()

	for _, c := range []byte("0123456789x") {
		rows := glyphRows(c)
		if len(rows) != glyphHeight {
			t.Fatalf("glyph %q has %d rows", c, len(rows))
		}
		for i, r := range rows {
			if w := lipgloss.Width(r); w != glyphWidth {
				t.Fatalf("glyph %q row %d width = %d, want %d", c, i, w, glyphWidth)
			}
		}
	}
}

func TestRowOffsets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir         counter.Direction
		p           float64
		enter, exit int
	}{
		{counter.Down, 0, tileRestRow - tileInnerHeight, tileRestRow},
		{counter.Down, 1, tileRestRow, tileRestRow + tileInnerHeight},
		{counter.Up, 0, tileRestRow + tileInnerHeight, tileRestRow},
		{counter.Up, 1, tileRestRow, tileRestRow - tileInnerHeight},
	}
	for _, tt := range tests {
		enter, exit := rowOffsets(tt.dir, tt.p)
		if enter != tt.enter || exit != tt.exit {
			t.Fatalf("rowOffsets(%s, %v) = (%d, %d), want (%d, %d)", tt.dir, tt.p, enter, exit, tt.enter, tt.exit)
		}
	}
}

func TestSyncTiles_OnlyChangedKeysMove(t *testing.T) {
	t.Parallel()

	now := time.Unix(10, 0)
	tiles := staticTiles(counter.View(counter.State{Current: 41999}))
	tiles = syncTiles(tiles, counter.View(counter.State{Previous: 41999, Current: 42000}), now)

	wantMoving := []bool{false, true, true, true, true}
	for i, tl := range tiles {
		if tl.moving != wantMoving[i] {
			t.Fatalf("tile %d moving = %v, want %v", i, tl.moving, wantMoving[i])
		}
	}
	if !tiles[1].hasPrev || tiles[1].prev != '1' || tiles[1].view.Char != '2' {
		t.Fatalf("tile 1 = %+v, want 1 -> 2", tiles[1])
	}
	if tiles[2].view.Direction != counter.Up {
		t.Fatalf("tile 2 direction = %s, want up", tiles[2].view.Direction)
	}
}

func TestTileRender_FinishedTransitionMatchesStatic(t *testing.T) {
	t.Parallel()

	start := time.Unix(0, 0)
	view := counter.DigitView{Position: 0, Char: '8', Direction: counter.Up, Changed: true}
	moving := tile{view: view, prev: '7', hasPrev: true, start: start, moving: true}
	static := tile{view: view}

	end := start.Add(model.TransitionDuration)
	if moving.render(end) != static.render(end) {
		t.Fatal("finished transition differs from the static tile")
	}
	if !strings.Contains(static.render(end), "██") {
		t.Fatal("tile has no glyph")
	}
}

func TestTileRender_ClipsToWindow(t *testing.T) {
	t.Parallel()

	start := time.Unix(0, 0)
	tl := tile{
		view:    counter.DigitView{Char: '0', Direction: counter.Down},
		prev:    '9',
		hasPrev: true,
		start:   start,
		moving:  true,
	}
	out := tl.render(start.Add(model.TransitionDuration / 2))
	if h := lipgloss.Height(out); h != tileInnerHeight+2 {
		t.Fatalf("tile height = %d, want %d", h, tileInnerHeight+2)
	}
}
