// Package minimap renders the sea as a grid of character cells for
// terminals.
package minimap

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Garsondee/Broadside/internal/game"
	"golang.org/x/term"
)

// Kind classifies what a cell shows. Front-ends map kinds to colours.
type Kind int

const (
	KindWater Kind = iota
	KindIsland
	KindStorm
	KindVortex
	KindLandmark
	KindShip
)

// Cell is one character of the chart.
type Cell struct {
	Rune rune
	Kind Kind
	Side game.Side // ships only
}

// Frame is a rendered chart, Rows[y][x].
type Frame struct {
	Cols, Rows int
	Cells      [][]Cell
	Title      string
}

// TermSizeFunc returns the terminal dimensions.
type TermSizeFunc func() (width, height int, err error)

// TerminalSize reads the size of stdout. It fails when stdout is not a
// terminal.
var TerminalSize TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// FitSize returns a chart size for a terminal, leaving one row for the
// title and one for the status line. Sizes that cannot be read fall back
// to 80x24.
func FitSize(size TermSizeFunc) (cols, rows int) {
	w, h, err := size()
	if err != nil || w <= 0 || h <= 0 {
		w, h = 80, 24
	}
	return max(10, w), max(5, h-2)
}

var shipGlyphs = map[game.Archetype]rune{
	game.ArchetypeBattle:   'b',
	game.ArchetypeFlagShip: 'f',
	game.ArchetypeTrading:  't',
	game.ArchetypeFisher:   'o',
	game.ArchetypeGhost:    'G',
	game.ArchetypeOctopus:  'K',
	game.ArchetypeDragon:   'D',
}

// Glyph returns the character for a ship. Player ships are upper case.
func Glyph(s *game.Ship) rune {
	r, ok := shipGlyphs[s.Archetype]
	if !ok {
		r = '?'
	}
	if s.IsPlayer() && r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	return r
}

// Render draws ctx into a cols×rows frame. env may be nil.
func Render(ctx *game.SimulationContext, env *game.Environment, cols, rows int) *Frame {
	f := &Frame{Cols: cols, Rows: rows, Cells: make([][]Cell, rows)}
	for y := range f.Cells {
		f.Cells[y] = make([]Cell, cols)
		for x := range f.Cells[y] {
			f.Cells[y][x] = Cell{Rune: ' ', Kind: KindWater}
		}
	}
	sx := float64(ctx.Sea.W) / float64(cols)
	sy := float64(ctx.Sea.H) / float64(rows)

	fill := func(box game.AABB, c Cell) {
		x0, y0 := int(box.X/sx), int(box.Y/sy)
		x1, y1 := int((box.X+box.W)/sx), int((box.Y+box.H)/sy)
		for y := max(0, y0); y <= min(rows-1, y1); y++ {
			for x := max(0, x0); x <= min(cols-1, x1); x++ {
				f.Cells[y][x] = c
			}
		}
	}
	if env != nil {
		for _, st := range env.Storms {
			fill(st.Region, Cell{Rune: '~', Kind: KindStorm})
		}
	}
	for _, box := range ctx.Sea.IslandBoxes() {
		fill(box, Cell{Rune: '#', Kind: KindIsland})
	}
	if env != nil {
		for _, v := range env.Vortices {
			fill(v.A, Cell{Rune: '@', Kind: KindVortex})
			fill(v.B, Cell{Rune: '@', Kind: KindVortex})
		}
	}
	f.set(ctx.Sea.Treasure, sx, sy, Cell{Rune: 'X', Kind: KindLandmark})
	f.set(ctx.Sea.Lair, sx, sy, Cell{Rune: '%', Kind: KindLandmark})

	// AI first so player ships win a shared cell.
	for _, side := range []game.Side{game.SideAI, game.SidePlayer} {
		for _, s := range ctx.ShipsOf(side) {
			f.set(s.Pos, sx, sy, Cell{Rune: Glyph(s), Kind: KindShip, Side: s.Side})
		}
	}

	f.Title = fmt.Sprintf("T=%d  player=%d  ai=%d  wind=%03.0f  %s",
		ctx.Tick, len(ctx.ShipsOf(game.SidePlayer)), len(ctx.ShipsOf(game.SideAI)),
		ctx.Wind.Heading, ctx.Resources)
	return f
}

func (f *Frame) set(p game.Vec2, sx, sy float64, c Cell) {
	x, y := int(p.X/sx), int(p.Y/sy)
	if x < 0 || y < 0 || x >= f.Cols || y >= f.Rows {
		return
	}
	f.Cells[y][x] = c
}

// At returns the cell at x, y.
func (f *Frame) At(x, y int) Cell { return f.Cells[y][x] }

// String returns the title and the chart as plain lines.
func (f *Frame) String() string {
	var sb strings.Builder
	sb.WriteString(f.Title)
	sb.WriteByte('\n')
	for _, row := range f.Cells {
		for _, c := range row {
			sb.WriteRune(c.Rune)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

const (
	ansiReset  = "\033[0m"
	ansiHome   = "\033[H"
	ansiClear  = "\033[H\033[2J"
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
)

var kindColors = map[Kind]string{
	KindWater:    "\033[34m",
	KindIsland:   "\033[33m",
	KindStorm:    "\033[90m",
	KindVortex:   "\033[35m",
	KindLandmark: "\033[93m",
}

func cellColor(c Cell) string {
	if c.Kind == KindShip {
		if c.Side == game.SidePlayer {
			return "\033[92m"
		}
		return "\033[91m"
	}
	return kindColors[c.Kind]
}

// WriteANSI redraws the frame at the top-left of a terminal, changing colour
// only between runs of differently coloured cells.
func (f *Frame) WriteANSI(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(hideCursor)
	sb.WriteString(ansiHome)
	sb.WriteString(f.Title)
	sb.WriteString("\033[K\r\n")
	for _, row := range f.Cells {
		cur := ""
		for _, c := range row {
			if col := cellColor(c); col != cur {
				sb.WriteString(col)
				cur = col
			}
			sb.WriteRune(c.Rune)
		}
		sb.WriteString(ansiReset)
		sb.WriteString("\r\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// ClearScreen clears the terminal.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, ansiClear)
}

// ShowCursor restores the terminal cursor.
func ShowCursor(w io.Writer) {
	fmt.Fprint(w, showCursor+ansiReset)
}
