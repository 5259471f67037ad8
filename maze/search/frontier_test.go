package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/maze-solver/maze/grid"
)

func TestQueueFrontier(t *testing.T) {
	q := newQueueFrontier()
	assert.Equal(t, 0, q.len())

	a, b := grid.Coord{Row: 0, Col: 0}, grid.Coord{Row: 0, Col: 1}
	assert.True(t, q.add(entry{coord: a}))
	assert.True(t, q.add(entry{coord: b}))
	assert.False(t, q.add(entry{coord: a}), "duplicate should be rejected")
	assert.Equal(t, 2, q.len())
	assert.True(t, q.contains(a))

	assert.Equal(t, a, q.remove().coord)
	assert.False(t, q.contains(a))
	assert.True(t, q.add(entry{coord: a}), "removed cells may be queued again")
	assert.Equal(t, b, q.remove().coord)
	assert.Equal(t, a, q.remove().coord)
	assert.Equal(t, 0, q.len())
}

func TestQueueFrontier_Compaction(t *testing.T) {
	q := newQueueFrontier()
	for i := 0; i < 500; i++ {
		q.add(entry{coord: grid.Coord{Row: i}})
	}
	for i := 0; i < 400; i++ {
		require.Equal(t, i, q.remove().coord.Row)
	}
	assert.Equal(t, 100, q.len())
	assert.Less(t, len(q.items), 500)

	for i := 400; i < 500; i++ {
		require.Equal(t, i, q.remove().coord.Row)
	}
}

func TestPriorityFrontier_OrdersByPriorityThenInsertion(t *testing.T) {
	p := newPriorityFrontier()
	p.add(entry{coord: grid.Coord{Row: 1}, priority: 5})
	p.add(entry{coord: grid.Coord{Row: 2}, priority: 3})
	p.add(entry{coord: grid.Coord{Row: 3}, priority: 5})
	p.add(entry{coord: grid.Coord{Row: 4}, priority: 3})
	p.add(entry{coord: grid.Coord{Row: 5}, priority: 1})

	var order []int
	for p.len() > 0 {
		order = append(order, p.remove().coord.Row)
	}
	assert.Equal(t, []int{5, 2, 4, 1, 3}, order)
}

func TestPriorityFrontier_AllowsDuplicates(t *testing.T) {
	p := newPriorityFrontier()
	c := grid.Coord{Row: 1, Col: 1}
	p.add(entry{coord: c, cost: 4, priority: 6})
	p.add(entry{coord: c, cost: 2, priority: 4})
	assert.Equal(t, 2, p.len())

	first := p.remove()
	assert.Equal(t, 2, first.cost)
	assert.Equal(t, 4, p.remove().cost)
}

func TestReconstructPath(t *testing.T) {
	start := grid.Coord{Row: 0, Col: 0}
	mid := grid.Coord{Row: 0, Col: 1}
	goal := grid.Coord{Row: 1, Col: 1}
	parents := map[grid.Coord]grid.Coord{mid: start, goal: mid}

	assert.Equal(t, []grid.Coord{start, mid, goal}, reconstructPath(parents, start, goal))
	assert.Equal(t, []grid.Coord{start}, reconstructPath(parents, start, start))
	assert.Nil(t, reconstructPath(parents, start, grid.Coord{Row: 9, Col: 9}))
}
