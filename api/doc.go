// Package api provides the HTTP REST API for the maze solver.
//
// Endpoints:
//
// Maze library:
//   - GET /api/mazes - List mazes in the library
//   - GET /api/mazes/{name} - Get one maze with its rows
//   - POST /api/mazes - Save a maze ({"name": "...", "text": "..."} or "rows")
//
// Solving:
//   - POST /api/solve - Solve a maze ({"maze": "name"} or {"text": "..."}, "algorithm": "bfs|astar")
//   - POST /api/compare - Solve with both algorithms and compare
//
// Runs:
//   - GET /api/runs - List runs (?sort=created|accessed&order=asc|desc&limit=n&maze=name)
//   - GET /api/runs/{id} - Get a run with its path and trace
//   - DELETE /api/runs/{id} - Delete a run
//   - GET /api/runs/{id}/cells/{row}/{col} - Describe one cell
//   - GET /api/runs/{id}/image.png - PNG rendering (?explored=true&path=false)
//   - GET /api/runs/{id}/geojson - GeoJSON FeatureCollection in grid space
//   - POST /api/runs/{id}/replay - Stream the trace to WebSocket clients ({"interval_ms": n})
//
// WebSocket:
//   - GET /ws?run={id} - Subscribe to replays of a run
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status code: 400 for malformed
// mazes and bad requests, 404 for unknown mazes and runs.
//
//	{
//	  "error": "malformed maze: unrecognized character '?' at row 1, col 0"
//	}
package api
