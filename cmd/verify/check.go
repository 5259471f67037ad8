package main

import (
	"fmt"
	"strings"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/service"
)

// rebuild parses the rows a run was solved on
func rebuild(run *service.RunInfo) (*grid.Grid, error) {
	return grid.Parse(strings.Join(run.Rows, "\n"), run.Legend)
}

// shortestDistance walks the grid breadth-first without going through the
// search package. It returns -1 when goal cannot be reached.
func shortestDistance(g *grid.Grid) int {
	start, goal := g.Start(), g.Goal()
	if start == goal {
		return 0
	}

	type queueItem struct {
		pos   grid.Coord
		steps int
	}

	queue := []queueItem{{pos: start}}
	visited := map[grid.Coord]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range []grid.Coord{current.pos.Up(), current.pos.Down(), current.pos.Left(), current.pos.Right()} {
			if visited[next] || !g.IsWalkable(next) {
				continue
			}
			if next == goal {
				return current.steps + 1
			}
			visited[next] = true
			queue = append(queue, queueItem{pos: next, steps: current.steps + 1})
		}
	}

	return -1
}

func manhattanDistance(a, b grid.Coord) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// checkRun verifies a run's path against its own grid. It returns one
// message per problem found.
func checkRun(run *service.RunInfo) []string {
	if run == nil {
		return []string{"missing run"}
	}

	g, err := rebuild(run)
	if err != nil {
		return []string{fmt.Sprintf("%s: rows do not parse: %v", run.Algorithm, err)}
	}

	var problems []string
	report := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf("%s: ", run.Algorithm)+fmt.Sprintf(format, args...))
	}

	want := shortestDistance(g)

	if !run.Found {
		if want >= 0 {
			report("reported no path, but the goal is %d steps away", want)
		}
		if len(run.Path) != 0 {
			report("no path reported, but %d cells returned", len(run.Path))
		}
		return problems
	}

	if len(run.Path) == 0 {
		report("found a path but returned no cells")
		return problems
	}
	if run.Path[0] != g.Start() {
		report("path starts at %s, not the start %s", run.Path[0], g.Start())
	}
	if last := run.Path[len(run.Path)-1]; last != g.Goal() {
		report("path ends at %s, not the goal %s", last, g.Goal())
	}

	for i, c := range run.Path {
		if !g.IsWalkable(c) {
			report("path cell %d %s is not walkable", i, c)
		}
		if i > 0 && manhattanDistance(run.Path[i-1], c) != 1 {
			report("path cells %d %s and %d %s are not adjacent", i-1, run.Path[i-1], i, c)
		}
	}

	steps := len(run.Path) - 1
	if run.Steps != steps {
		report("reports %d steps, path has %d", run.Steps, steps)
	}
	if want >= 0 && steps != want {
		report("path has %d steps, shortest is %d", steps, want)
	}

	seen := make(map[grid.Coord]bool, len(run.Explored))
	for _, c := range run.Explored {
		if seen[c] {
			report("cell %s expanded twice", c)
		}
		seen[c] = true
	}
	if len(run.Explored) > 0 && run.Explored[0] != g.Start() {
		report("first expanded cell is %s, not the start", run.Explored[0])
	}

	return problems
}

// checkComparison verifies both runs and that they agree on length
func checkComparison(cmp *service.Comparison) []string {
	if cmp == nil {
		return []string{"missing comparison"}
	}

	problems := append(checkRun(cmp.BFS), checkRun(cmp.AStar)...)
	if cmp.BFS == nil || cmp.AStar == nil {
		return problems
	}

	if cmp.BFS.Found != cmp.AStar.Found {
		problems = append(problems, fmt.Sprintf("bfs found=%v, astar found=%v", cmp.BFS.Found, cmp.AStar.Found))
	} else if cmp.BFS.Steps != cmp.AStar.Steps {
		problems = append(problems, fmt.Sprintf("bfs has %d steps, astar %d", cmp.BFS.Steps, cmp.AStar.Steps))
	}
	if cmp.SameLength != (cmp.BFS.Steps == cmp.AStar.Steps) {
		problems = append(problems, "same_length disagrees with the step counts")
	}

	return problems
}
