package grid

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Grid is an immutable rectangular maze. Cells are stored row-major so
// every lookup is O(1). A Grid is safe for concurrent readers.
type Grid struct {
	width  int
	height int
	cells  []CellType
	start  Coord
	goal   Coord
	legend Legend
}

// Parse builds a Grid from maze text using the given legend.
// Both "\n" and "\r\n" line endings are accepted and one trailing newline
// is ignored. Failures are returned as *MalformedMazeError.
func Parse(text string, legend Legend) (*Grid, error) {
	if err := legend.Validate(); err != nil {
		return nil, err
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, malformed(-1, -1, 0, ErrEmptyMaze)
	}

	lines := strings.Split(text, "\n")
	width := utf8.RuneCountInString(lines[0])
	if width == 0 {
		return nil, malformed(0, -1, 0, ErrEmptyMaze)
	}

	g := &Grid{
		width:  width,
		height: len(lines),
		cells:  make([]CellType, width*len(lines)),
		legend: legend,
	}

	startSeen, goalSeen := false, false
	for row, line := range lines {
		if n := utf8.RuneCountInString(line); n != width {
			return nil, malformed(row, min(n, width), 0, ErrRaggedRow)
		}

		col := 0
		for _, r := range line {
			t, ok := legend.Lookup(r)
			if !ok {
				return nil, malformed(row, col, r, ErrUnknownSymbol)
			}

			switch t {
			case Start:
				if startSeen {
					return nil, malformed(row, col, r, ErrDuplicateStart)
				}
				startSeen = true
				g.start = Coord{row, col}
			case Goal:
				if goalSeen {
					return nil, malformed(row, col, r, ErrDuplicateGoal)
				}
				goalSeen = true
				g.goal = Coord{row, col}
			}

			g.cells[row*width+col] = t
			col++
		}
	}

	if !startSeen {
		return nil, malformed(-1, -1, 0, ErrMissingStart)
	}
	if !goalSeen {
		return nil, malformed(-1, -1, 0, ErrMissingGoal)
	}

	return g, nil
}

// Load reads a maze file and parses it
func Load(path string, legend Legend) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	g, err := Parse(string(data), legend)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// New builds a Grid programmatically. Every cell is open except walls.
// Unlike Parse, start and goal may be the same cell; that cell is then
// stored as Goal, so Cell reports Goal and String shows only the goal
// symbol. Such a grid has no text form that Parse accepts.
func New(width, height int, walls []Coord, start, goal Coord) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]CellType, width*height),
		start:  start,
		goal:   goal,
		legend: DefaultLegend(),
	}
	for i := range g.cells {
		g.cells[i] = Open
	}
	for _, w := range walls {
		if g.InBounds(w) {
			g.cells[g.index(w)] = Wall
		}
	}

	if !g.InBounds(start) || !g.InBounds(goal) || g.Cell(start) == Wall || g.Cell(goal) == Wall {
		return nil, ErrInvalidEndpoint
	}
	g.cells[g.index(start)] = Start
	g.cells[g.index(goal)] = Goal

	return g, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// Start returns the start coordinate
func (g *Grid) Start() Coord { return g.start }

// Goal returns the goal coordinate
func (g *Grid) Goal() Coord { return g.goal }

// Legend returns the legend the grid was parsed with
func (g *Grid) Legend() Legend { return g.legend }

// InBounds reports whether c lies inside the grid
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.height && c.Col >= 0 && c.Col < g.width
}

// Cell returns the type of the cell at c; out-of-bounds cells are walls
func (g *Grid) Cell(c Coord) CellType {
	if !g.InBounds(c) {
		return Wall
	}
	return g.cells[g.index(c)]
}

// IsWalkable reports whether c is in bounds and not a wall
func (g *Grid) IsWalkable(c Coord) bool {
	return g.Cell(c).Walkable()
}

// Neighbors returns the walkable cells adjacent to c in the fixed order
// up, down, left, right. Search tie-breaking depends on this order.
func (g *Grid) Neighbors(c Coord) []Coord {
	if !g.InBounds(c) {
		return nil
	}

	result := make([]Coord, 0, 4)
	for _, n := range [4]Coord{c.Up(), c.Down(), c.Left(), c.Right()} {
		if g.IsWalkable(n) {
			result = append(result, n)
		}
	}
	return result
}

// WalkableCount returns the number of walkable cells
func (g *Grid) WalkableCount() int {
	count := 0
	for _, t := range g.cells {
		if t.Walkable() {
			count++
		}
	}
	return count
}

// Each calls fn for every cell in row-major order
func (g *Grid) Each(fn func(c Coord, t CellType)) {
	for i, t := range g.cells {
		fn(Coord{Row: i / g.width, Col: i % g.width}, t)
	}
}

// Equal reports whether two grids have the same shape, cells and endpoints.
// The legend is not compared.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.width != other.width || g.height != other.height || g.start != other.start || g.goal != other.goal {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Rows renders the grid as one string per row using the given legend
func (g *Grid) Rows(legend Legend) []string {
	rows := make([]string, g.height)
	var b strings.Builder
	for row := 0; row < g.height; row++ {
		b.Reset()
		for col := 0; col < g.width; col++ {
			b.WriteRune(legend.Symbol(g.cells[row*g.width+col]))
		}
		rows[row] = b.String()
	}
	return rows
}

// Format renders the grid as maze text using the given legend
func (g *Grid) Format(legend Legend) string {
	return strings.Join(g.Rows(legend), "\n")
}

// String renders the grid with the legend it was parsed with, so that
// Parse(g.String(), g.Legend()) yields an equal grid. Grids from New with
// start == goal are the exception.
func (g *Grid) String() string {
	return g.Format(g.legend)
}

func (g *Grid) index(c Coord) int {
	return c.Row*g.width + c.Col
}
