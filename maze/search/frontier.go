package search

import (
	"container/heap"

	"github.com/wricardo/maze-solver/maze/grid"
)

// entry is one frontier item. priority and seq are only used by A*.
type entry struct {
	coord    grid.Coord
	cost     int
	priority int
	seq      int
}

// queueFrontier is a FIFO with an O(1) membership index
type queueFrontier struct {
	items   []entry
	head    int
	members map[grid.Coord]struct{}
}

func newQueueFrontier() *queueFrontier {
	return &queueFrontier{members: make(map[grid.Coord]struct{})}
}

// add enqueues e unless its cell is already waiting
func (q *queueFrontier) add(e entry) bool {
	if _, ok := q.members[e.coord]; ok {
		return false
	}
	q.items = append(q.items, e)
	q.members[e.coord] = struct{}{}
	return true
}

func (q *queueFrontier) remove() entry {
	e := q.items[q.head]
	q.head++
	// reclaim the consumed prefix once it dominates the slice
	if q.head > 64 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	delete(q.members, e.coord)
	return e
}

func (q *queueFrontier) contains(c grid.Coord) bool {
	_, ok := q.members[c]
	return ok
}

func (q *queueFrontier) len() int { return len(q.items) - q.head }

// entryHeap implements heap.Interface ordered by priority, then seq
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// priorityFrontier is a min-heap that stamps entries with an insertion
// sequence so equal priorities pop first-in first-out
type priorityFrontier struct {
	heap entryHeap
	next int
}

func newPriorityFrontier() *priorityFrontier {
	return &priorityFrontier{}
}

func (p *priorityFrontier) add(e entry) {
	e.seq = p.next
	p.next++
	heap.Push(&p.heap, e)
}

func (p *priorityFrontier) remove() entry {
	return heap.Pop(&p.heap).(entry)
}

func (p *priorityFrontier) len() int { return p.heap.Len() }

// coordSet is the visited set
type coordSet map[grid.Coord]struct{}

func (s coordSet) add(c grid.Coord) { s[c] = struct{}{} }

func (s coordSet) has(c grid.Coord) bool {
	_, ok := s[c]
	return ok
}

// reconstructPath walks predecessor links from goal back to start and
// returns the path in start-to-goal order
func reconstructPath(parents map[grid.Coord]grid.Coord, start, goal grid.Coord) []grid.Coord {
	path := []grid.Coord{goal}
	for current := goal; current != start; {
		prev, ok := parents[current]
		if !ok {
			return nil
		}
		path = append(path, prev)
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
