package service

import (
	"time"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
)

// SolveRequest selects a maze and an algorithm. Exactly one of Maze (a
// library name) or Text (inline maze text) must be set.
type SolveRequest struct {
	Maze      string `json:"maze,omitempty"`
	Text      string `json:"text,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
}

// MazeInfo summarizes a maze in the library
type MazeInfo struct {
	Filename string     `json:"filename"`
	Name     string     `json:"name"` // identifier used in SolveRequest.Maze
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Walkable int        `json:"walkable"`
	Start    grid.Coord `json:"start"`
	Goal     grid.Coord `json:"goal"`
}

// MazeDetail is a maze with its rendered rows
type MazeDetail struct {
	MazeInfo
	Rows   []string    `json:"rows"`
	Legend grid.Legend `json:"legend"`
}

// RunInfo provides information about a stored run
type RunInfo struct {
	ID             string           `json:"id"`
	MazeName       string           `json:"maze,omitempty"`
	Algorithm      search.Algorithm `json:"algorithm"`
	Found          bool             `json:"found"`
	Steps          int              `json:"steps"` // -1 when no path exists
	PathLength     int              `json:"path_length"`
	ExploredCount  int              `json:"explored_count"`
	Path           []grid.Coord     `json:"path,omitempty"`
	Explored       []grid.Coord     `json:"explored"`
	Stats          search.Stats     `json:"stats"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Start          grid.Coord       `json:"start"`
	Goal           grid.Coord       `json:"goal"`
	Rows           []string         `json:"rows"`
	Legend         grid.Legend      `json:"legend"`
	DurationMicros int64            `json:"duration_us"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
}

// Comparison holds a BFS run and an A* run over the same maze
type Comparison struct {
	BFS        *RunInfo `json:"bfs"`
	AStar      *RunInfo `json:"astar"`
	SameLength bool     `json:"same_length"`
	// ExploredSaved is how many fewer cells A* expanded than BFS
	ExploredSaved int `json:"explored_saved"`
}

// CellInfo describes one cell of a run's grid
type CellInfo struct {
	RunID         string        `json:"run_id"`
	Row           int           `json:"row"`
	Col           int           `json:"col"`
	InBounds      bool          `json:"in_bounds"`
	Type          grid.CellType `json:"type"`
	Symbol        string        `json:"symbol"`
	Walkable      bool          `json:"walkable"`
	OnPath        bool          `json:"on_path"`
	PathIndex     int           `json:"path_index"`     // -1 when not on the path
	ExploredIndex int           `json:"explored_index"` // -1 when never expanded
}

// NewRunInfo flattens a stored run for transport
func NewRunInfo(run *Run) *RunInfo {
	g := run.Grid
	return &RunInfo{
		ID:             run.ID,
		MazeName:       run.MazeName,
		Algorithm:      run.Result.Algorithm,
		Found:          run.Result.Found,
		Steps:          run.Result.Steps(),
		PathLength:     run.Result.Len(),
		ExploredCount:  len(run.Result.Explored),
		Path:           run.Result.Path,
		Explored:       run.Result.Explored,
		Stats:          run.Result.Stats,
		Width:          g.Width(),
		Height:         g.Height(),
		Start:          g.Start(),
		Goal:           g.Goal(),
		Rows:           g.Rows(g.Legend()),
		Legend:         g.Legend(),
		DurationMicros: run.Duration.Microseconds(),
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
	}
}

// NewMazeInfo summarizes a parsed grid
func NewMazeInfo(name string, g *grid.Grid) *MazeInfo {
	return &MazeInfo{
		Filename: name + ".txt",
		Name:     name,
		Width:    g.Width(),
		Height:   g.Height(),
		Walkable: g.WalkableCount(),
		Start:    g.Start(),
		Goal:     g.Goal(),
	}
}
