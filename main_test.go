package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/maze-solver/api"
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/runs"
	"github.com/wricardo/maze-solver/maze/search"
	"github.com/wricardo/maze-solver/maze/service"
	"github.com/wricardo/maze-solver/transport/mcp"
)

func writeMaze(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "maze.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Maze Solver", AppName)
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()

	var names []string
	for _, sub := range cmd.Commands {
		names = append(names, sub.Name)
	}
	assert.Equal(t, []string{"solve", "serve", "mcp"}, names)
	assert.Equal(t, Version, cmd.Version)
}

func TestSolveFile(t *testing.T) {
	path := writeMaze(t, "S.#\n...\n#.E\n")

	var out bytes.Buffer
	err := solveFile(&out, solveOptions{Path: path, Algorithm: search.BFS, Legend: grid.DefaultLegend()})
	require.NoError(t, err)

	expected := "Maze:\n" +
		"\nA █\n   \n█ B\n\n" +
		"Solving...\n" +
		"States Explored: 7\n" +
		"Solution:\n" +
		"\nA █\n** \n█*B\n\n" +
		"Path length: 4\n"
	assert.Equal(t, expected, out.String())
}

func TestSolveFile_Quiet(t *testing.T) {
	path := writeMaze(t, "S.#\n...\n#.E\n")

	var out bytes.Buffer
	err := solveFile(&out, solveOptions{Path: path, Algorithm: search.AStar, Legend: grid.DefaultLegend(), Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, "States Explored: 7\nPath length: 4\n", out.String())
}

func TestSolveFile_ClassicLegend(t *testing.T) {
	path := writeMaze(t, "#####\n#A  #\n### #\n#B  #\n#####\n")

	var out bytes.Buffer
	err := solveFile(&out, solveOptions{Path: path, Algorithm: search.BFS, Legend: grid.ClassicLegend(), Quiet: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Path length: 6")
}

func TestSolveFile_NoPath(t *testing.T) {
	path := writeMaze(t, "S#.\n##.\n..E\n")
	image := filepath.Join(t.TempDir(), "out.png")

	var out bytes.Buffer
	err := solveFile(&out, solveOptions{Path: path, Algorithm: search.BFS, Legend: grid.DefaultLegend(), ImagePath: image})
	assert.ErrorIs(t, err, ErrNoPath)
	assert.Contains(t, out.String(), "States Explored: 1\n")
	assert.NotContains(t, out.String(), "Solution:")

	_, statErr := os.Stat(image)
	assert.NoError(t, statErr, "image is written even without a path")
}

func TestSolveFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := solveFile(&bytes.Buffer{}, solveOptions{Path: "/non/existent/maze.txt", Algorithm: search.BFS, Legend: grid.DefaultLegend()})
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrNoPath))
	})

	t.Run("malformed maze", func(t *testing.T) {
		path := writeMaze(t, "S..\n..\n..E\n")
		err := solveFile(&bytes.Buffer{}, solveOptions{Path: path, Algorithm: search.BFS, Legend: grid.DefaultLegend()})
		assert.ErrorIs(t, err, grid.ErrMalformedMaze)
		assert.ErrorIs(t, err, grid.ErrRaggedRow)
	})
}

func TestSolveFile_Outputs(t *testing.T) {
	path := writeMaze(t, "S.\n.E\n")
	dir := t.TempDir()
	image := filepath.Join(dir, "out.png")
	geo := filepath.Join(dir, "out.geojson")

	err := solveFile(&bytes.Buffer{}, solveOptions{
		Path:        path,
		Algorithm:   search.AStar,
		Legend:      grid.DefaultLegend(),
		ImagePath:   image,
		Explored:    true,
		GeoJSONPath: geo,
		Quiet:       true,
	})
	require.NoError(t, err)

	info, err := os.Stat(image)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	data, err := os.ReadFile(geo)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Equal(t, "astar", fc.ExtraMembers["algorithm"])
}

func TestExitFor(t *testing.T) {
	assert.NoError(t, exitFor(nil))

	tests := []struct {
		err  error
		code int
	}{
		{ErrNoPath, 2},
		{grid.ErrMalformedMaze, 1},
		{os.ErrNotExist, 1},
	}
	for _, tt := range tests {
		var exitErr cli.ExitCoder
		require.True(t, errors.As(exitFor(tt.err), &exitErr))
		assert.Equal(t, tt.code, exitErr.ExitCode(), tt.err.Error())
	}
}

func TestInitializeServices(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maze1.txt"), []byte("SE\n"), 0644))

	solver, runManager, err := initializeServices(dir)
	require.NoError(t, err)
	require.NotNil(t, solver)

	run, err := solver.Solve(context.Background(), service.SolveRequest{Maze: "maze1"})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Steps)
	assert.Equal(t, 1, runManager.Count())
}

func TestInitializeServices_InvalidMazeDir(t *testing.T) {
	_, _, err := initializeServices("/non/existent/path")
	assert.Error(t, err)
}

func TestRunCleanupRoutine(t *testing.T) {
	manager := runs.NewManager()
	g, err := grid.Parse("SE", grid.DefaultLegend())
	require.NoError(t, err)

	_, err = manager.Create(&service.Run{Grid: g})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runCleanupRoutine(ctx, manager, time.Millisecond, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return manager.Count() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

func TestMCPEndpoint(t *testing.T) {
	dir := t.TempDir()
	solver, _, err := initializeServices(dir)
	require.NoError(t, err)

	handler := newHandler(api.NewServer(solver, nil), mcp.NewClient("http://127.0.0.1:0"))

	t.Run("rejects GET", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("answers ping", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", body))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"jsonrpc":"2.0"`)
	})

	t.Run("serves the API", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRunHTTPServer_ListenFailureStopsTunnel(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	tunnelStopped := make(chan struct{})
	original := startTunnel
	startTunnel = func(ctx context.Context, handler http.Handler, cfg serverConfig) {
		<-ctx.Done()
		close(tunnelStopped)
	}
	t.Cleanup(func() { startTunnel = original })

	solver, _, err := initializeServices(t.TempDir())
	require.NoError(t, err)

	cfg := serverConfig{
		Host:  "127.0.0.1",
		Port:  occupied.Addr().(*net.TCPAddr).Port,
		Ngrok: true,
	}

	result := make(chan error, 1)
	go func() { result <- runHTTPServer(context.Background(), solver, cfg) }()

	select {
	case err := <-result:
		assert.ErrorContains(t, err, "HTTP server failed")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not return after listen failure")
	}

	select {
	case <-tunnelStopped:
	default:
		t.Fatal("tunnel context was not cancelled")
	}
}
