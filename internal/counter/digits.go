package counter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tinytelemetry/starboard/internal/model"
)

// Direction is the slide-in origin of a digit tile. It is derived from a
// digit comparison and says nothing about the magnitude of the change.
type Direction int

const (
	Down Direction = iota // enter from above
	Up                    // enter from below
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// MarshalText renders the direction as "up" or "down".
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DigitView is one tile of the counter strip.
type DigitView struct {
	Position  int
	Char      byte
	Direction Direction
	Changed   bool // differs from the digit previously at this position
}

// Key identifies the tile content. A new key means the old digit leaves and
// the new one enters instead of being updated in place.
func (d DigitView) Key() string {
	return fmt.Sprintf("%d-%c", d.Position, d.Char)
}

// Pad renders v in decimal, left-padded with zeros to width. Values wider
// than width are returned as-is.
func Pad(v int64, width int) string {
	s := strconv.FormatInt(v, 10)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Digits splits s into single-character strings.
func Digits(s string) []string {
	out := make([]string, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = s[i : i+1]
	}
	return out
}

// View derives the tiles for s using the fixed strip width.
func View(s State) []DigitView {
	return ViewWidth(s, model.DigitWidth)
}

// ViewWidth derives one tile per character of the padded current value.
// Each position is compared with the same position of the padded previous
// value: Down when the new digit is >= the old one, Up otherwise. A position
// missing from the previous string compares as Up.
func ViewWidth(s State, width int) []DigitView {
	cur := Pad(s.Current, width)
	prev := Pad(s.Previous, width)

	views := make([]DigitView, len(cur))
	for i := 0; i < len(cur); i++ {
		v := DigitView{Position: i, Char: cur[i], Direction: Up, Changed: true}
		if i < len(prev) {
			if cur[i] >= prev[i] {
				v.Direction = Down
			}
			v.Changed = cur[i] != prev[i]
		}
		views[i] = v
	}
	return views
}
