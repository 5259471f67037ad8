package export

import (
	"strings"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
)

// Terminal symbols
const (
	WallSymbol     = '█'
	StartSymbol    = 'A'
	GoalSymbol     = 'B'
	PathSymbol     = '*'
	ExploredSymbol = '·'
	OpenSymbol     = ' '
)

// Options selects which overlays are drawn
type Options struct {
	ShowPath     bool
	ShowExplored bool
}

// DefaultOptions draws the path but not the explored cells
func DefaultOptions() Options {
	return Options{ShowPath: true}
}

// overlay classifies a cell for drawing. Path wins over explored.
type overlay uint8

const (
	overlayNone overlay = iota
	overlayExplored
	overlayPath
)

func overlays(res *search.Result, opts Options) map[grid.Coord]overlay {
	marks := make(map[grid.Coord]overlay)
	if res == nil {
		return marks
	}
	if opts.ShowExplored {
		for _, c := range res.Explored {
			marks[c] = overlayExplored
		}
	}
	if opts.ShowPath && res.Found {
		for _, c := range res.Path {
			marks[c] = overlayPath
		}
	}
	return marks
}

// Text renders g with a blank line above and below, one row per line.
// res may be nil to draw the bare maze.
func Text(g *grid.Grid, res *search.Result, opts Options) string {
	marks := overlays(res, opts)

	var b strings.Builder
	b.WriteByte('\n')
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			c := grid.Coord{Row: row, Col: col}
			b.WriteRune(textSymbol(g.Cell(c), marks[c]))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

func textSymbol(t grid.CellType, mark overlay) rune {
	switch t {
	case grid.Wall:
		return WallSymbol
	case grid.Start:
		return StartSymbol
	case grid.Goal:
		return GoalSymbol
	}
	switch mark {
	case overlayPath:
		return PathSymbol
	case overlayExplored:
		return ExploredSymbol
	default:
		return OpenSymbol
	}
}
