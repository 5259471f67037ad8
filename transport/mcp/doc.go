// Package mcp provides a Model Context Protocol server for the maze solver.
//
// The server is a thin client: every tool call is proxied to the REST API
// and the JSON response is formatted as text for the agent.
//
// MCP Tools:
//   - list_mazes: List mazes in the library
//   - get_maze: Show one maze
//   - solve_maze: Solve a library maze or inline text with bfs or astar
//   - compare_algorithms: Solve with both algorithms and compare
//   - get_run: Show a stored run with its path
//   - list_runs: List stored runs
//   - describe_cell: Inspect one cell of a run
//   - solver_instructions: Maze format and algorithm notes
//
// Transport Modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: the /mcp endpoint of the API server
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
