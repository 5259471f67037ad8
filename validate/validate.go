// Command validate provides a small CLI that validates maze files in a
// directory (../mazes by default). It checks:
//   - Every row has the same width and uses only legend characters
//   - Exactly one start and one goal
//   - Connectivity: whether the goal is reachable from the start
//   - Dead space: walkable cells that cannot be reached from the start
//
// A legend.json in the directory overrides the default legend. Unreachable
// goals are reported as warnings, since sealed mazes are valid input.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/search"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// loadLegend returns the directory's legend.json, or the default legend
func loadLegend(dir string) (grid.Legend, error) {
	path := filepath.Join(dir, "legend.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return grid.DefaultLegend(), nil
	}
	return grid.LoadLegend(path)
}

// validateMaze loads and validates a single maze file.
func validateMaze(filePath string, legend grid.Legend) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	g, err := grid.Parse(string(data), legend)
	if err != nil {
		result.Valid = false
		var mErr *grid.MalformedMazeError
		if errors.As(err, &mErr) && mErr.Row >= 0 {
			// Rows are 1-based in reports
			result.Errors = append(result.Errors, fmt.Sprintf("%v (line %d)", mErr.Err, mErr.Row+1))
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
		return result
	}

	res, err := search.Solve(g, search.BFS)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Search failed: %v", err))
		return result
	}

	reachable := reachableCount(g)
	walkable := g.WalkableCount()

	if !res.Found {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Connectivity: goal %s unreachable from start %s", g.Goal(), g.Start()))
	}
	if dead := walkable - reachable; dead > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Dead space: %d of %d walkable cells unreachable from start", dead, walkable))
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", g.Width(), g.Height()))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Start: %s  Goal: %s", g.Start(), g.Goal()))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Walkable cells: %d (%d reachable)", walkable, reachable))
	if res.Found {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Shortest path: %d steps", res.Steps()))
	}

	return result
}

// reachableCount flood-fills from the start over walkable cells.
func reachableCount(g *grid.Grid) int {
	visited := map[grid.Coord]bool{g.Start(): true}
	queue := []grid.Coord{g.Start()}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.Neighbors(current) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return len(visited)
}

// validateDir validates every *.txt file in dir.
func validateDir(dir string) ([]ValidationResult, error) {
	legend, err := loadLegend(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid legend: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("error finding maze files: %w", err)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateMaze(file, legend))
	}
	return results, nil
}

// main validates the directory given as the first argument, printing a
// concise report and exiting with non-zero status if any file is invalid.
func main() {
	mazeDir := "../mazes"
	if len(os.Args) > 1 {
		mazeDir = os.Args[1]
	}

	results, err := validateDir(mazeDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
			for _, warning := range result.Warnings {
				fmt.Println("  ⚠️  " + warning)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Printf("✅ All %d mazes are valid!\n", len(results))
	} else {
		fmt.Println("❌ Some mazes have errors")
		os.Exit(1)
	}
}
