package export

import (
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
)

const (
	CellSize   = 50
	CellBorder = 2
)

var (
	backgroundColor = color.RGBA{0, 0, 0, 255}
	wallColor       = color.RGBA{40, 40, 40, 255}
	startColor      = color.RGBA{255, 0, 0, 255}
	goalColor       = color.RGBA{0, 171, 28, 255}
	pathColor       = color.RGBA{220, 235, 113, 255}
	exploredColor   = color.RGBA{212, 97, 85, 255}
	openColor       = color.RGBA{237, 240, 252, 255}
)

// CellColor returns the fill used for a cell in PNG output
func CellColor(t grid.CellType, onPath, explored bool) color.RGBA {
	switch {
	case t == grid.Wall:
		return wallColor
	case t == grid.Start:
		return startColor
	case t == grid.Goal:
		return goalColor
	case onPath:
		return pathColor
	case explored:
		return exploredColor
	default:
		return openColor
	}
}

// Draw paints g onto a new context, one CellSize square per cell with a
// CellBorder gap showing the black background
func Draw(g *grid.Grid, res *search.Result, opts Options) *gg.Context {
	marks := overlays(res, opts)

	dc := gg.NewContext(g.Width()*CellSize, g.Height()*CellSize)
	dc.SetColor(backgroundColor)
	dc.Clear()

	inner := float64(CellSize - 2*CellBorder)
	g.Each(func(c grid.Coord, t grid.CellType) {
		mark := marks[c]
		dc.SetColor(CellColor(t, mark == overlayPath, mark == overlayExplored))
		dc.DrawRectangle(float64(c.Col*CellSize+CellBorder), float64(c.Row*CellSize+CellBorder), inner, inner)
		dc.Fill()
	})

	return dc
}

// PNG writes the rendered maze to w
func PNG(w io.Writer, g *grid.Grid, res *search.Result, opts Options) error {
	return Draw(g, res, opts).EncodePNG(w)
}

// SavePNG writes the rendered maze to a file
func SavePNG(path string, g *grid.Grid, res *search.Result, opts Options) error {
	return Draw(g, res, opts).SavePNG(path)
}
