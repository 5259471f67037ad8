package grid

import "fmt"

// CellType classifies a single maze cell
type CellType uint8

const (
	Wall CellType = iota
	Open
	Start
	Goal
)

var cellTypeNames = map[CellType]string{
	Wall:  "wall",
	Open:  "open",
	Start: "start",
	Goal:  "goal",
}

// String returns the lowercase name of the cell type
func (t CellType) String() string {
	if name, ok := cellTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("celltype(%d)", uint8(t))
}

// Walkable reports whether a cell of this type can be entered
func (t CellType) Walkable() bool {
	return t == Open || t == Start || t == Goal
}

// ParseCellType maps a name such as "wall" back to its CellType
func ParseCellType(name string) (CellType, error) {
	for t, n := range cellTypeNames {
		if n == name {
			return t, nil
		}
	}
	return Wall, fmt.Errorf("unknown cell type %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (t CellType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *CellType) UnmarshalText(text []byte) error {
	parsed, err := ParseCellType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Coord is a (row, col) position in the grid
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String formats the coordinate as (row,col)
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Up returns the coordinate one row above
func (c Coord) Up() Coord { return Coord{c.Row - 1, c.Col} }

// Down returns the coordinate one row below
func (c Coord) Down() Coord { return Coord{c.Row + 1, c.Col} }

// Left returns the coordinate one column to the left
func (c Coord) Left() Coord { return Coord{c.Row, c.Col - 1} }

// Right returns the coordinate one column to the right
func (c Coord) Right() Coord { return Coord{c.Row, c.Col + 1} }
