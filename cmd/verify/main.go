// Command verify solves every maze in a running server's library with both
// algorithms and checks the returned paths independently: contiguity,
// walkability, endpoints and optimality against a local breadth-first walk.
//
// Usage:
//
//	go run ./cmd/verify -url http://localhost:8080 -parallel 4
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wricardo/maze-solver/maze/service"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s %s failed: %s", method, path, errResp.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) ListMazes(ctx context.Context) ([]*service.MazeInfo, error) {
	var mazes []*service.MazeInfo
	err := c.do(ctx, http.MethodGet, "/api/mazes", nil, &mazes)
	return mazes, err
}

func (c *Client) Compare(ctx context.Context, maze string) (*service.Comparison, error) {
	var cmp service.Comparison
	if err := c.do(ctx, http.MethodPost, "/api/compare", service.SolveRequest{Maze: maze}, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

func (c *Client) DeleteRun(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/runs/"+id, nil, nil)
}

// Report is the outcome of verifying one maze
type Report struct {
	Maze     string
	Steps    int
	Found    bool
	BFS      int // cells expanded
	AStar    int
	Problems []string
}

func (r Report) OK() bool { return len(r.Problems) == 0 }

// verifyMaze compares one maze and checks both runs
func verifyMaze(ctx context.Context, client *Client, maze string, keep bool) Report {
	report := Report{Maze: maze, Steps: -1}

	cmp, err := client.Compare(ctx, maze)
	if err != nil {
		report.Problems = []string{err.Error()}
		return report
	}

	report.Problems = checkComparison(cmp)
	if cmp.BFS != nil {
		report.Found = cmp.BFS.Found
		report.Steps = cmp.BFS.Steps
		report.BFS = cmp.BFS.ExploredCount
	}
	if cmp.AStar != nil {
		report.AStar = cmp.AStar.ExploredCount
	}

	if !keep {
		for _, run := range []*service.RunInfo{cmp.BFS, cmp.AStar} {
			if run == nil {
				continue
			}
			if err := client.DeleteRun(ctx, run.ID); err != nil {
				log.Printf("Warning: failed to delete run %s: %v", run.ID, err)
			}
		}
	}

	return report
}

// verifyAll verifies every maze in the library, parallel at a time
func verifyAll(ctx context.Context, client *Client, parallel int, keep bool) ([]Report, error) {
	mazes, err := client.ListMazes(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		reports = make([]Report, 0, len(mazes))
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(parallel, 1))
	for _, info := range mazes {
		name := info.Name
		eg.Go(func() error {
			report := verifyMaze(egCtx, client, name, keep)
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Maze < reports[j].Maze })
	return reports, nil
}

func printReports(w io.Writer, reports []Report) bool {
	allOK := true
	for _, r := range reports {
		outcome := fmt.Sprintf("%d steps", r.Steps)
		if !r.Found {
			outcome = "no path"
		}

		if r.OK() {
			fmt.Fprintf(w, "✅ %-20s %-10s bfs=%d astar=%d\n", r.Maze, outcome, r.BFS, r.AStar)
			continue
		}

		allOK = false
		fmt.Fprintf(w, "❌ %-20s %s\n", r.Maze, outcome)
		for _, p := range r.Problems {
			fmt.Fprintf(w, "   - %s\n", p)
		}
	}
	return allOK
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Maze solver server URL")
	parallel := flag.Int("parallel", 4, "Mazes verified concurrently")
	keep := flag.Bool("keep", false, "Keep the runs created while verifying")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Printf("Verifying mazes on %s", *serverURL)
	reports, err := verifyAll(ctx, NewClient(*serverURL), *parallel, *keep)
	if err != nil {
		log.Fatalf("Failed to verify mazes: %v", err)
	}

	if !printReports(os.Stdout, reports) {
		log.Printf("❌ Some mazes failed verification")
		os.Exit(1)
	}
	log.Printf("🎉 All %d mazes verified", len(reports))
}
