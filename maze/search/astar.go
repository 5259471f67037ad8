package search

import "github.com/wricardo/maze-solver/maze/grid"

// astar never decreases a key in place. A cheaper route to a cell pushes
// a second entry; whichever copy pops later is skipped as stale.
func astar(g *grid.Grid) Result {
	start, goal := g.Start(), g.Goal()

	frontier := newPriorityFrontier()
	frontier.add(entry{coord: start, cost: 0, priority: Manhattan(start, goal)})

	visited := make(coordSet)
	parents := make(map[grid.Coord]grid.Coord)
	bestCost := map[grid.Coord]int{start: 0}
	result := Result{Algorithm: AStar, Stats: Stats{Pushed: 1, MaxFrontier: 1}}

	for frontier.len() > 0 {
		current := frontier.remove()
		if visited.has(current.coord) {
			result.Stats.Stale++
			continue
		}
		visited.add(current.coord)
		result.Explored = append(result.Explored, current.coord)

		if current.coord == goal {
			result.Found = true
			result.Path = reconstructPath(parents, start, goal)
			return result
		}

		for _, next := range g.Neighbors(current.coord) {
			if visited.has(next) {
				continue
			}
			cost := current.cost + 1
			// An equal or costlier copy could only pop after next is
			// visited, so skipping it leaves the trace and path unchanged.
			if known, ok := bestCost[next]; ok && cost >= known {
				continue
			}
			bestCost[next] = cost
			parents[next] = current.coord
			frontier.add(entry{coord: next, cost: cost, priority: cost + Manhattan(next, goal)})
			result.Stats.Pushed++
		}
		result.Stats.MaxFrontier = max(result.Stats.MaxFrontier, frontier.len())
	}

	return result
}
