package search

import "github.com/wricardo/maze-solver/maze/grid"

func bfs(g *grid.Grid) Result {
	start, goal := g.Start(), g.Goal()

	frontier := newQueueFrontier()
	frontier.add(entry{coord: start})

	visited := make(coordSet)
	parents := make(map[grid.Coord]grid.Coord)
	result := Result{Algorithm: BFS, Stats: Stats{Pushed: 1, MaxFrontier: 1}}

	for frontier.len() > 0 {
		current := frontier.remove()
		visited.add(current.coord)
		result.Explored = append(result.Explored, current.coord)

		if current.coord == goal {
			result.Found = true
			result.Path = reconstructPath(parents, start, goal)
			return result
		}

		for _, next := range g.Neighbors(current.coord) {
			if visited.has(next) || frontier.contains(next) {
				continue
			}
			parents[next] = current.coord
			frontier.add(entry{coord: next, cost: current.cost + 1})
			result.Stats.Pushed++
		}
		result.Stats.MaxFrontier = max(result.Stats.MaxFrontier, frontier.len())
	}

	return result
}
