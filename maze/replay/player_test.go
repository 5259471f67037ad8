package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
)

func solve(t *testing.T, text string) search.Result {
	t.Helper()
	g, err := grid.Parse(text, grid.DefaultLegend())
	require.NoError(t, err)
	res, err := search.Solve(g, search.BFS)
	require.NoError(t, err)
	return res
}

func drain(p *Player) []Frame {
	var frames []Frame
	for {
		f, ok := p.Next()
		if !ok {
			return frames
		}
		frames = append(frames, f)
	}
}

func TestPlayer_ExploreThenPath(t *testing.T) {
	res := solve(t, "S.\n.E")
	p := NewPlayer(res)
	assert.Equal(t, 7, p.Total())

	frames := drain(p)
	require.Len(t, frames, 8)

	for i := 0; i < 4; i++ {
		assert.Equal(t, PhaseExplore, frames[i].Phase)
		assert.Equal(t, i, frames[i].Index)
		assert.Equal(t, res.Explored[i], frames[i].Cell)
	}
	for i := 0; i < 3; i++ {
		f := frames[4+i]
		assert.Equal(t, PhasePath, f.Phase)
		assert.Equal(t, i, f.Index)
		assert.Equal(t, res.Path[i], f.Cell)
	}

	last := frames[7]
	assert.Equal(t, PhaseDone, last.Phase)
	assert.True(t, last.Found)
	assert.Equal(t, 7, last.Step)
	assert.True(t, p.Done())

	_, ok := p.Next()
	assert.False(t, ok)
}

func TestPlayer_NoPath(t *testing.T) {
	res := solve(t, "S#\n#E")
	p := NewPlayer(res)

	frames := drain(p)
	require.Len(t, frames, 2)
	assert.Equal(t, PhaseExplore, frames[0].Phase)
	assert.Equal(t, PhaseDone, frames[1].Phase)
	assert.False(t, frames[1].Found)
}

func TestPlayer_Reset(t *testing.T) {
	p := NewPlayer(solve(t, "S.E"))

	first := drain(p)
	assert.Equal(t, len(first), p.Position())

	p.Reset()
	assert.Equal(t, 0, p.Position())
	assert.False(t, p.Done())
	assert.Equal(t, first, drain(p))
}

func TestPlayer_EmptyResult(t *testing.T) {
	p := NewPlayer(search.Result{})
	f, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, PhaseDone, f.Phase)
	_, ok = p.Next()
	assert.False(t, ok)
}
