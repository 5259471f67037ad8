package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedMaze matches every parse failure via errors.Is.
	ErrMalformedMaze = errors.New("malformed maze")

	ErrEmptyMaze      = errors.New("maze has no rows")
	ErrRaggedRow      = errors.New("row width differs from first row")
	ErrUnknownSymbol  = errors.New("unrecognized character")
	ErrMissingStart   = errors.New("maze must have exactly one start point")
	ErrMissingGoal    = errors.New("maze must have exactly one goal")
	ErrDuplicateStart = errors.New("more than one start point")
	ErrDuplicateGoal  = errors.New("more than one goal")

	ErrInvalidDimensions = errors.New("width and height must be positive")
	ErrInvalidEndpoint   = errors.New("start and goal must be in bounds and walkable")
	ErrInvalidLegend     = errors.New("invalid legend")
)

// MalformedMazeError reports why maze text could not be parsed.
// Row and Col are 0-based, or -1 when the failure has no single location.
type MalformedMazeError struct {
	Row    int
	Col    int
	Symbol rune
	Err    error
}

func (e *MalformedMazeError) Error() string {
	switch {
	case e.Row >= 0 && e.Col >= 0 && e.Symbol != 0:
		return fmt.Sprintf("malformed maze: %v %q at row %d, col %d", e.Err, e.Symbol, e.Row, e.Col)
	case e.Row >= 0 && e.Col >= 0:
		return fmt.Sprintf("malformed maze: %v at row %d, col %d", e.Err, e.Row, e.Col)
	case e.Row >= 0:
		return fmt.Sprintf("malformed maze: %v at row %d", e.Err, e.Row)
	default:
		return fmt.Sprintf("malformed maze: %v", e.Err)
	}
}

// Unwrap exposes the specific reason, e.g. ErrRaggedRow.
func (e *MalformedMazeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedMaze) true for any parse failure.
func (e *MalformedMazeError) Is(target error) bool {
	return target == ErrMalformedMaze
}

func malformed(row, col int, symbol rune, err error) *MalformedMazeError {
	return &MalformedMazeError{Row: row, Col: col, Symbol: symbol, Err: err}
}
