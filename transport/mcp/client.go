package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/maze-solver/maze/export"
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
	"github.com/wricardo/maze-solver/maze/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Solver",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Solver - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Mazes are rectangular grids with one start (A) and one goal (B). Moves are
up, down, left and right; walls and the outside of the grid block movement.

AVAILABLE TOOLS:
- list_mazes: List mazes in the library
- get_maze: Show one maze
- solve_maze: Solve a library maze or inline maze text with bfs or astar
- compare_algorithms: Solve with both algorithms and compare the work done
- get_run: Show a stored run with its path
- list_runs: List stored runs
- describe_cell: Inspect one cell of a run (type, path index, expansion order)
- solver_instructions: Maze format and algorithm notes`),
	)

	c.registerTools()
}

var mazeSourceProperties = map[string]interface{}{
	"maze": map[string]interface{}{
		"type":        "string",
		"description": "Name of a maze in the library (use this or text)",
	},
	"text": map[string]interface{}{
		"type":        "string",
		"description": "Inline maze text, one row per line (use this or maze)",
	},
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Maze library
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_mazes",
		Description: "List the mazes available in the library",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMazes)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_maze",
		Description: "Show a maze from the library",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Maze name",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleGetMaze)

	// Solving
	solveProperties := map[string]interface{}{
		"algorithm": map[string]interface{}{
			"type":        "string",
			"enum":        []string{string(search.BFS), string(search.AStar)},
			"description": "Search algorithm (default bfs)",
		},
		"show_explored": map[string]interface{}{
			"type":        "boolean",
			"description": "Mark expanded cells in the rendered maze",
		},
	}
	for k, v := range mazeSourceProperties {
		solveProperties[k] = v
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_maze",
		Description: "Find a shortest path from start to goal",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: solveProperties,
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "compare_algorithms",
		Description: "Solve a maze with BFS and A* and compare path length and cells explored",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: mazeSourceProperties,
		},
	}, c.handleCompare)

	// Runs
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_run",
		Description: "Show a stored run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
				"show_explored": map[string]interface{}{
					"type":        "boolean",
					"description": "Mark expanded cells in the rendered maze",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleGetRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List stored runs, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"maze": map[string]interface{}{
					"type":        "string",
					"description": "Only runs of this maze",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs",
				},
			},
		},
	}, c.handleListRuns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about one cell of a run, including whether it is on the path and when it was expanded",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, top row is 0)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, left column is 0)",
				},
			},
			Required: []string{"run_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solver_instructions",
		Description: "Get the maze format and algorithm notes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool arguments, or an empty map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// intArgument reads a JSON number argument
func intArgument(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func solveRequest(args map[string]interface{}) service.SolveRequest {
	mazeName, _ := args["maze"].(string)
	text, _ := args["text"].(string)
	algorithm, _ := args["algorithm"].(string)
	return service.SolveRequest{Maze: mazeName, Text: text, Algorithm: algorithm}
}

// Tool handlers

func (c *Client) handleListMazes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var mazes []service.MazeInfo
	if err := c.apiCall(ctx, "GET", "/api/mazes", nil, &mazes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(mazes) == 0 {
		return mcp.NewToolResultText("No mazes in the library"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Mazes (%d):\n\n", len(mazes)))
	for _, m := range mazes {
		result.WriteString(fmt.Sprintf("• %s  %dx%d, %d walkable, start %s, goal %s\n",
			m.Name, m.Width, m.Height, m.Walkable, m.Start, m.Goal))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := arguments(request)["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	var maze service.MazeDetail
	if err := c.apiCall(ctx, "GET", "/api/mazes/"+url.PathEscape(name), nil, &maze); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Maze: %s (%dx%d)\nStart: %s  Goal: %s\n\n%s\n",
		maze.Name, maze.Width, maze.Height, maze.Start, maze.Goal, strings.Join(maze.Rows, "\n"))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	showExplored, _ := args["show_explored"].(bool)

	var run service.RunInfo
	if err := c.apiCall(ctx, "POST", "/api/solve", solveRequest(args), &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRun(&run, showExplored)), nil
}

func (c *Client) handleCompare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var comparison service.Comparison
	if err := c.apiCall(ctx, "POST", "/api/compare", solveRequest(arguments(request)), &comparison); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatComparison(&comparison)), nil
}

func (c *Client) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	runID, _ := args["run_id"].(string)
	showExplored, _ := args["show_explored"].(bool)
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	var run service.RunInfo
	if err := c.apiCall(ctx, "GET", "/api/runs/"+url.PathEscape(runID), nil, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRun(&run, showExplored)), nil
}

func (c *Client) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	params := url.Values{}
	if mazeName, ok := args["maze"].(string); ok && mazeName != "" {
		params.Set("maze", mazeName)
	}
	if limit, ok := intArgument(args, "limit"); ok {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	path := "/api/runs"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var response struct {
		Count int               `json:"count"`
		Total int               `json:"total"`
		Runs  []service.RunInfo `json:"runs"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Runs (%d of %d):\n\n", response.Count, response.Total))
	for _, r := range response.Runs {
		outcome := fmt.Sprintf("%d steps", r.Steps)
		if !r.Found {
			outcome = "no path"
		}
		result.WriteString(fmt.Sprintf("- %s  maze=%s algorithm=%s %s, explored %d (Created: %s)\n",
			r.ID, r.MazeName, r.Algorithm, outcome, r.ExploredCount, r.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	runID, _ := args["run_id"].(string)
	row, rowOK := intArgument(args, "row")
	col, colOK := intArgument(args, "col")
	if runID == "" || !rowOK || !colOK {
		return mcp.NewToolResultError("run_id, row and col are required"), nil
	}

	var cell service.CellInfo
	err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/runs/%s/cells/%d/%d", url.PathEscape(runID), row, col), nil, &cell)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Maze Solver - Instructions

MAZE FORMAT:
• One row per line, every row the same width
• # - Wall (blocks movement)
• . - Open cell (a space also works)
• S - Start, exactly one (A is accepted too)
• E - Goal, exactly one (B and G are accepted too)
• Cells outside the grid count as walls

MOVES:
• up, down, left, right; one step each, all steps cost the same
• No diagonal moves

ALGORITHMS:
• bfs - Breadth-first search. Expands cells in order of distance from the
  start and always returns a shortest path.
• astar - A* with the Manhattan distance to the goal. Returns a path of the
  same length as bfs and usually expands fewer cells.

READING A RUN:
• Path lists (row,col) coordinates from start to goal, both included
• Steps is the number of moves, path length minus one
• Explored lists cells in the order they were expanded; describe_cell
  reports a cell's position in that order
• In rendered mazes: █ wall, A start, B goal, * path, · explored

WHEN THERE IS NO PATH:
• The run reports "no path" and the explored cells are every cell
  reachable from the start`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

// renderRun draws the run's maze with its path, falling back to the raw rows
func renderRun(run *service.RunInfo, showExplored bool) string {
	g, err := grid.Parse(strings.Join(run.Rows, "\n"), run.Legend)
	if err != nil {
		return "\n" + strings.Join(run.Rows, "\n") + "\n\n"
	}

	res := &search.Result{
		Algorithm: run.Algorithm,
		Found:     run.Found,
		Path:      run.Path,
		Explored:  run.Explored,
	}
	return export.Text(g, res, export.Options{ShowPath: true, ShowExplored: showExplored})
}

func formatRun(run *service.RunInfo, showExplored bool) string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("Run: %s\nMaze: %s (%dx%d)\nAlgorithm: %s\n",
		run.ID, run.MazeName, run.Width, run.Height, run.Algorithm))
	result.WriteString(renderRun(run, showExplored))
	result.WriteString(fmt.Sprintf("States Explored: %d\n", run.ExploredCount))

	if !run.Found {
		result.WriteString("No solution: the goal cannot be reached from the start\n")
		return result.String()
	}

	coords := make([]string, len(run.Path))
	for i, p := range run.Path {
		coords[i] = p.String()
	}
	result.WriteString(fmt.Sprintf("Steps: %d\nPath: %s\n", run.Steps, strings.Join(coords, " → ")))

	return result.String()
}

func formatComparison(cmp *service.Comparison) string {
	if cmp.BFS == nil || cmp.AStar == nil {
		return "Comparison incomplete"
	}

	var result strings.Builder
	result.WriteString("Algorithm comparison\n")
	result.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")
	for _, run := range []*service.RunInfo{cmp.BFS, cmp.AStar} {
		outcome := "no path"
		if run.Found {
			outcome = fmt.Sprintf("%d steps", run.Steps)
		}
		result.WriteString(fmt.Sprintf("%-6s %-10s explored %-5d run %s\n", run.Algorithm, outcome, run.ExploredCount, run.ID))
	}

	if cmp.SameLength {
		result.WriteString("\n✓ Both paths have the same length")
	} else {
		result.WriteString("\n✗ Path lengths differ")
	}
	result.WriteString(fmt.Sprintf("\nA* expanded %d fewer cells than BFS\n", cmp.ExploredSaved))

	return result.String()
}

func formatCell(cell *service.CellInfo) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Cell at row %d, col %d:\n", cell.Row, cell.Col))
	result.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")

	if !cell.InBounds {
		result.WriteString("Outside the grid - treated as a wall\n")
		return result.String()
	}

	result.WriteString(fmt.Sprintf("Type: %s\nSymbol: %q\nWalkable: %v\n", cell.Type, cell.Symbol, cell.Walkable))

	if cell.OnPath {
		result.WriteString(fmt.Sprintf("On path: yes (index %d)\n", cell.PathIndex))
	} else {
		result.WriteString("On path: no\n")
	}
	if cell.ExploredIndex >= 0 {
		result.WriteString(fmt.Sprintf("Expanded: #%d\n", cell.ExploredIndex+1))
	} else {
		result.WriteString("Expanded: never\n")
	}

	return result.String()
}
