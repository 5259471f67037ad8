// Package replay steps through a search result one cell at a time: first
// every explored cell in trace order, then every path cell from start to
// goal. It has no timers; callers decide the pacing.
package replay

import (
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
)

// Phase identifies what a frame shows
type Phase string

const (
	PhaseExplore Phase = "explore"
	PhasePath    Phase = "path"
	PhaseDone    Phase = "done"
)

// Frame is one replay step. Index counts within the phase.
type Frame struct {
	Phase Phase      `json:"phase"`
	Index int        `json:"index"`
	Cell  grid.Coord `json:"cell"`
	Step  int        `json:"step"`
	Total int        `json:"total"`
	Found bool       `json:"found"`
}

// Player walks a result's trace and path
type Player struct {
	explored []grid.Coord
	path     []grid.Coord
	found    bool
	pos      int
}

// NewPlayer creates a player positioned before the first frame
func NewPlayer(result search.Result) *Player {
	return &Player{
		explored: result.Explored,
		path:     result.Path,
		found:    result.Found,
	}
}

// Next returns the next frame. Once every cell has been shown it returns a
// single done frame and then false.
func (p *Player) Next() (Frame, bool) {
	total := p.Total()
	if p.pos > total {
		return Frame{}, false
	}

	frame := Frame{Step: p.pos, Total: total, Found: p.found}
	switch {
	case p.pos < len(p.explored):
		frame.Phase = PhaseExplore
		frame.Index = p.pos
		frame.Cell = p.explored[p.pos]
	case p.pos < total:
		frame.Phase = PhasePath
		frame.Index = p.pos - len(p.explored)
		frame.Cell = p.path[frame.Index]
	default:
		frame.Phase = PhaseDone
	}

	p.pos++
	return frame, true
}

// Reset rewinds to the first frame
func (p *Player) Reset() { p.pos = 0 }

// Position returns how many frames have been produced
func (p *Player) Position() int { return p.pos }

// Total returns the number of cell frames, excluding the done frame
func (p *Player) Total() int { return len(p.explored) + len(p.path) }

// Done reports whether the done frame has been produced
func (p *Player) Done() bool { return p.pos > p.Total() }
