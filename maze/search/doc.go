// Package search finds paths through a grid.Grid.
//
// Two algorithms share one contract:
//   - BFS: FIFO frontier, shortest path by step count
//   - A*: min-priority frontier keyed by cost + Manhattan distance, ties
//     broken by insertion order, stale entries skipped when popped
//
// Every call owns its frontier, visited set and predecessor map, so any
// number of searches may run in parallel over the same Grid.
//
// A cell is appended to the exploration trace when it is popped for
// expansion, not when it is discovered. The trace and the path are
// deterministic for a given grid and algorithm because neighbors are
// always visited up, down, left, right.
//
// Usage:
//
//	res, err := search.Solve(g, search.AStar)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !res.Found {
//		fmt.Println("no solution after", len(res.Explored), "states")
//	}
//
// An unsolvable maze is a normal Result with Found set to false, never an
// error.
package search
