package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
)

// Feature kinds, stored in the "kind" property
const (
	KindStart    = "start"
	KindGoal     = "goal"
	KindPath     = "path"
	KindExplored = "explored"
)

// point maps a cell to grid space: x is the column, y the row
func point(c grid.Coord) orb.Point {
	return orb.Point{float64(c.Col), float64(c.Row)}
}

// GeoJSON builds a FeatureCollection for a run. The path is a LineString
// (a single Point when start is the goal) and the trace a MultiPoint that
// keeps expansion order.
func GeoJSON(g *grid.Grid, res search.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"width":     g.Width(),
		"height":    g.Height(),
		"algorithm": string(res.Algorithm),
		"found":     res.Found,
	}

	fc.Append(endpoint(KindStart, g.Start()))
	fc.Append(endpoint(KindGoal, g.Goal()))

	if res.Found {
		var geometry orb.Geometry
		if len(res.Path) == 1 {
			geometry = point(res.Path[0])
		} else {
			line := make(orb.LineString, 0, len(res.Path))
			for _, c := range res.Path {
				line = append(line, point(c))
			}
			geometry = line
		}
		f := geojson.NewFeature(geometry)
		f.Properties["kind"] = KindPath
		f.Properties["steps"] = res.Steps()
		fc.Append(f)
	}

	trace := make(orb.MultiPoint, 0, len(res.Explored))
	for _, c := range res.Explored {
		trace = append(trace, point(c))
	}
	f := geojson.NewFeature(trace)
	f.Properties["kind"] = KindExplored
	f.Properties["count"] = len(res.Explored)
	fc.Append(f)

	return fc
}

func endpoint(kind string, c grid.Coord) *geojson.Feature {
	f := geojson.NewFeature(point(c))
	f.Properties["kind"] = kind
	f.Properties["row"] = c.Row
	f.Properties["col"] = c.Col
	return f
}
