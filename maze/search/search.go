package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/maze-solver/maze/grid"
)

// Algorithm selects a search strategy
type Algorithm string

const (
	BFS   Algorithm = "bfs"
	AStar Algorithm = "astar"
)

var (
	ErrNilGrid          = errors.New("grid cannot be nil")
	ErrUnknownAlgorithm = errors.New("unknown algorithm: use 'bfs' or 'astar'")
)

// Algorithms lists every supported algorithm
func Algorithms() []Algorithm {
	return []Algorithm{BFS, AStar}
}

// ParseAlgorithm accepts bfs, queue, astar and a* (case-insensitive).
// An empty name selects BFS.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bfs", "queue":
		return BFS, nil
	case "astar", "a*", "a-star":
		return AStar, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Stats counts frontier activity for one search
type Stats struct {
	Pushed      int `json:"pushed"`
	Stale       int `json:"stale"`
	MaxFrontier int `json:"max_frontier"`
}

// Result is the outcome of one search. Path runs from start to goal
// inclusive and is nil when Found is false. Explored lists cells in the
// order they were popped for expansion.
type Result struct {
	Algorithm Algorithm    `json:"algorithm"`
	Found     bool         `json:"found"`
	Path      []grid.Coord `json:"path,omitempty"`
	Explored  []grid.Coord `json:"explored"`
	Stats     Stats        `json:"stats"`
}

// Steps returns the number of moves on the path, or -1 when not found
func (r Result) Steps() int {
	if !r.Found {
		return -1
	}
	return len(r.Path) - 1
}

// Len returns the number of coordinates on the path
func (r Result) Len() int {
	return len(r.Path)
}

// Solve runs the selected algorithm over g
func Solve(g *grid.Grid, algorithm Algorithm) (Result, error) {
	if g == nil {
		return Result{}, ErrNilGrid
	}

	switch algorithm {
	case BFS:
		return bfs(g), nil
	case AStar:
		return astar(g), nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// Manhattan returns |row difference| + |col difference|
func Manhattan(a, b grid.Coord) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
