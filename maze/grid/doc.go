// Package grid provides the in-memory maze representation used by the solver.
//
// The grid package implements:
//   - Parsing maze text into an immutable Grid
//   - A configurable Legend mapping characters to cell types
//   - O(1) walkability and neighbor queries
//   - Serialization back to text for round trips
//
// Maze Format:
//
// One row per line, every row the same width. With the default legend:
//
//	#  wall
//	.  open (a space is also open)
//	S  start, exactly one
//	E  goal, exactly one (G is also accepted)
//
// Usage:
//
//	g, err := grid.Load("mazes/classic.txt", grid.DefaultLegend())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, n := range g.Neighbors(g.Start()) {
//		fmt.Println(n)
//	}
//
// Out-of-bounds coordinates are never a panic: every query treats them as
// walls. Neighbors are always reported up, down, left, right.
package grid
