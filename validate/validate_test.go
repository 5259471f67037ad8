package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/maze-solver/maze/grid"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func contains(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateMaze_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "corridor.txt", "S.#\n...\n#.E\n")

	result := validateMaze(path, grid.DefaultLegend())
	if !result.Valid {
		t.Fatalf("Expected valid maze, but got errors: %v", result.Errors)
	}

	if result.File != "corridor.txt" {
		t.Errorf("Expected file name corridor.txt, got %s", result.File)
	}

	for _, info := range []string{"Grid: 3x3", "Walkable cells: 7 (7 reachable)", "Shortest path: 4 steps"} {
		if !contains(result.Errors, info) {
			t.Errorf("Expected '%s' in %v", info, result.Errors)
		}
	}

	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

func TestValidateMaze_MissingFile(t *testing.T) {
	result := validateMaze("/non/existent/file.txt", grid.DefaultLegend())
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !contains(result.Errors, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateMaze_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"empty", "", "no rows"},
		{"ragged", "S..\n..\n..E\n", "line 2"},
		{"unknown symbol", "S.?\n..E\n", "unrecognized character"},
		{"no start", "...\n..E\n", "start point"},
		{"no goal", "S..\n...\n", "goal"},
		{"two starts", "S.S\n..E\n", "more than one start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "maze.txt", tt.content)

			result := validateMaze(path, grid.DefaultLegend())
			if result.Valid {
				t.Fatal("Expected invalid maze")
			}
			if !contains(result.Errors, tt.expected) {
				t.Errorf("Expected '%s' in %v", tt.expected, result.Errors)
			}
		})
	}
}

func TestValidateMaze_Unreachable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sealed.txt", "S#..\n##..\n...E\n")

	result := validateMaze(path, grid.DefaultLegend())
	if !result.Valid {
		t.Fatalf("Sealed mazes are valid input, got errors: %v", result.Errors)
	}

	if !contains(result.Warnings, "unreachable from start") {
		t.Errorf("Expected connectivity warning, got %v", result.Warnings)
	}
	if !contains(result.Warnings, "Dead space: 8 of 9") {
		t.Errorf("Expected dead space warning, got %v", result.Warnings)
	}
	if contains(result.Errors, "Shortest path") {
		t.Error("Unsolvable mazes have no shortest path")
	}
}

func TestValidateMaze_DeadSpace(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pocket.txt", "S.#.\n..#.\n.E##\n")

	result := validateMaze(path, grid.DefaultLegend())
	if !contains(result.Warnings, "Dead space: 2 of 8") {
		t.Errorf("Expected dead space warning, got %v", result.Warnings)
	}
	if contains(result.Warnings, "Connectivity") {
		t.Error("Goal is reachable")
	}
}

func TestReachableCount(t *testing.T) {
	g, err := grid.Parse("S..\n.#.\n..E", grid.DefaultLegend())
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if got := reachableCount(g); got != 8 {
		t.Errorf("Expected 8 reachable cells, got %d", got)
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "S.E\n")
	writeFile(t, dir, "b.txt", "S.\n")
	writeFile(t, dir, "notes.md", "ignored")

	results, err := validateDir(dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[0].Valid || results[1].Valid {
		t.Errorf("Expected a.txt valid and b.txt invalid, got %v %v", results[0].Valid, results[1].Valid)
	}
}

func TestValidateDir_CustomLegend(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "legend.json", `{"wall":"#","open":" ","start":"A","goal":"B"}`)
	writeFile(t, dir, "classic.txt", "#####\n#A B#\n#####\n")

	results, err := validateDir(dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if len(results) != 1 || !results[0].Valid {
		t.Errorf("Expected classic maze to be valid, got %+v", results)
	}
}

func TestValidateDir_InvalidLegend(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "legend.json", `{"wall":"##"}`)

	if _, err := validateDir(dir); err == nil {
		t.Error("Expected error for invalid legend")
	}
}
