// Package service provides the business logic layer for the maze solver.
//
// The service package implements:
//   - Maze library access (list, load, save)
//   - Solving mazes with BFS or A* and storing each outcome as a run
//   - Side-by-side algorithm comparison
//   - Per-cell inspection of a stored run
//
// Core Interfaces:
//
// SolverService is the main interface used by every transport.
// MazeLibrary loads and stores maze files.
// RunStore keeps solved runs in memory.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP, CLI)
// and the grid and search packages. Grids are immutable once parsed, so a
// single grid can be searched by several goroutines at once; Compare relies
// on this to run both algorithms in parallel.
//
// Usage:
//
//	library, err := config.NewManager("mazes")
//	if err != nil {
//		log.Fatal(err)
//	}
//	solver := service.NewSolverService(library, runs.NewManager())
//
//	run, err := solver.Solve(ctx, service.SolveRequest{Maze: "maze1", Algorithm: "astar"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(run.Steps, run.ExploredCount)
package service
