package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
)

// inlineMazeName labels runs solved from request text rather than the library
const inlineMazeName = "inline"

// solverServiceImpl implements the SolverService interface
type solverServiceImpl struct {
	mazes MazeLibrary
	runs  RunStore
}

// NewSolverService creates a new solver service instance
func NewSolverService(mazes MazeLibrary, runs RunStore) SolverService {
	return &solverServiceImpl{
		mazes: mazes,
		runs:  runs,
	}
}

// ListMazes returns every valid maze in the library
func (s *solverServiceImpl) ListMazes(ctx context.Context) ([]*MazeInfo, error) {
	return s.mazes.ListMazes()
}

// GetMaze loads a maze with its rendered rows
func (s *solverServiceImpl) GetMaze(ctx context.Context, name string) (*MazeDetail, error) {
	g, err := s.mazes.LoadMaze(name)
	if err != nil {
		return nil, err
	}

	return &MazeDetail{
		MazeInfo: *NewMazeInfo(strings.TrimSuffix(name, ".txt"), g),
		Rows:     g.Rows(g.Legend()),
		Legend:   g.Legend(),
	}, nil
}

// SaveMaze validates and stores maze text under name
func (s *solverServiceImpl) SaveMaze(ctx context.Context, name, text string) (*MazeInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: maze name is required", ErrInvalidRequest)
	}

	g, err := s.mazes.SaveMaze(name, text)
	if err != nil {
		return nil, err
	}

	log.Printf("[MAZE] saved %s (%dx%d)", name, g.Width(), g.Height())
	return NewMazeInfo(strings.TrimSuffix(name, ".txt"), g), nil
}

// Solve runs one search and stores the result
func (s *solverServiceImpl) Solve(ctx context.Context, req SolveRequest) (*RunInfo, error) {
	algorithm, err := search.ParseAlgorithm(req.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	name, g, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	run, err := s.execute(ctx, name, g, algorithm)
	if err != nil {
		return nil, err
	}
	return NewRunInfo(run), nil
}

// Compare runs BFS and A* over the same grid in parallel and stores both runs
func (s *solverServiceImpl) Compare(ctx context.Context, req SolveRequest) (*Comparison, error) {
	name, g, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	algorithms := search.Algorithms()
	results := make([]*Run, len(algorithms))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, algorithm := range algorithms {
		eg.Go(func() error {
			run, err := s.execute(egCtx, name, g, algorithm)
			if err != nil {
				return err
			}
			results[i] = run
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	bfsRun, astarRun := NewRunInfo(results[0]), NewRunInfo(results[1])
	comparison := &Comparison{
		BFS:           bfsRun,
		AStar:         astarRun,
		SameLength:    bfsRun.Steps == astarRun.Steps,
		ExploredSaved: bfsRun.ExploredCount - astarRun.ExploredCount,
	}

	log.Printf("[COMPARE] maze=%s bfs=%d/%d astar=%d/%d same_length=%t",
		name, bfsRun.Steps, bfsRun.ExploredCount, astarRun.Steps, astarRun.ExploredCount, comparison.SameLength)

	return comparison, nil
}

// GetRun retrieves run information
func (s *solverServiceImpl) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}
	return NewRunInfo(run), nil
}

// ListRuns returns every stored run, newest first
func (s *solverServiceImpl) ListRuns(ctx context.Context) ([]*RunInfo, error) {
	runs := s.runs.List()
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	result := make([]*RunInfo, 0, len(runs))
	for _, run := range runs {
		result = append(result, NewRunInfo(run))
	}
	return result, nil
}

// DeleteRun removes a run
func (s *solverServiceImpl) DeleteRun(ctx context.Context, runID string) error {
	return s.runs.Delete(runID)
}

// DescribeCell reports what a run knows about one cell. Coordinates outside
// the grid describe a wall rather than failing.
func (s *solverServiceImpl) DescribeCell(ctx context.Context, runID string, row, col int) (*CellInfo, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}

	c := grid.Coord{Row: row, Col: col}
	cellType := run.Grid.Cell(c)
	info := &CellInfo{
		RunID:         run.ID,
		Row:           row,
		Col:           col,
		InBounds:      run.Grid.InBounds(c),
		Type:          cellType,
		Symbol:        string(run.Grid.Legend().Symbol(cellType)),
		Walkable:      run.Grid.IsWalkable(c),
		PathIndex:     indexOf(run.Result.Path, c),
		ExploredIndex: indexOf(run.Result.Explored, c),
	}
	info.OnPath = info.PathIndex >= 0
	return info, nil
}

// Run returns the stored run with its grid, for exporters and replay
func (s *solverServiceImpl) Run(ctx context.Context, runID string) (*Run, error) {
	if err := s.runs.UpdateLastAccessed(runID); err != nil {
		return nil, err
	}
	return s.runs.Get(runID)
}

// resolve turns a request into a grid, from the library or inline text
func (s *solverServiceImpl) resolve(req SolveRequest) (string, *grid.Grid, error) {
	hasMaze, hasText := req.Maze != "", req.Text != ""
	switch {
	case hasMaze && hasText:
		return "", nil, fmt.Errorf("%w: set either maze or text, not both", ErrInvalidRequest)
	case !hasMaze && !hasText:
		return "", nil, fmt.Errorf("%w: maze or text is required", ErrInvalidRequest)
	case hasText:
		g, err := grid.Parse(req.Text, s.mazes.Legend())
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidMaze, err)
		}
		return inlineMazeName, g, nil
	}

	g, err := s.mazes.LoadMaze(req.Maze)
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSuffix(req.Maze, ".txt"), g, nil
}

// execute searches g and stores the outcome
func (s *solverServiceImpl) execute(ctx context.Context, name string, g *grid.Grid, algorithm search.Algorithm) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	began := time.Now()
	result, err := search.Solve(g, algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to solve %s: %w", name, err)
	}
	elapsed := time.Since(began)

	run, err := s.runs.Create(&Run{
		MazeName: name,
		Grid:     g,
		Result:   result,
		Duration: elapsed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}

	log.Printf("[SOLVE] run=%s maze=%s algorithm=%s found=%t steps=%d explored=%d took=%s",
		run.ID, name, algorithm, result.Found, result.Steps(), len(result.Explored), elapsed)

	return run, nil
}

func indexOf(cells []grid.Coord, c grid.Coord) int {
	for i, cell := range cells {
		if cell == c {
			return i
		}
	}
	return -1
}
