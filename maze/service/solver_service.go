package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
)

var (
	ErrMazeNotFound   = errors.New("maze not found")
	ErrInvalidMaze    = errors.New("invalid maze")
	ErrRunNotFound    = errors.New("run not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// SolverService defines all maze-solving operations
type SolverService interface {
	// Maze library
	ListMazes(ctx context.Context) ([]*MazeInfo, error)
	GetMaze(ctx context.Context, name string) (*MazeDetail, error)
	SaveMaze(ctx context.Context, name, text string) (*MazeInfo, error)

	// Solving
	Solve(ctx context.Context, req SolveRequest) (*RunInfo, error)
	Compare(ctx context.Context, req SolveRequest) (*Comparison, error)

	// Runs
	GetRun(ctx context.Context, runID string) (*RunInfo, error)
	ListRuns(ctx context.Context) ([]*RunInfo, error)
	DeleteRun(ctx context.Context, runID string) error
	DescribeCell(ctx context.Context, runID string, row, col int) (*CellInfo, error)
	Run(ctx context.Context, runID string) (*Run, error)
}

// MazeLibrary loads and stores maze files
type MazeLibrary interface {
	LoadMaze(name string) (*grid.Grid, error)
	ListMazes() ([]*MazeInfo, error)
	SaveMaze(name, text string) (*grid.Grid, error)
	Legend() grid.Legend
}

// RunStore defines run storage operations
type RunStore interface {
	Create(run *Run) (*Run, error)
	Get(id string) (*Run, error)
	List() []*Run
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// Run is one stored search over a grid
type Run struct {
	ID             string
	MazeName       string
	Grid           *grid.Grid
	Result         search.Result
	Duration       time.Duration
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
