// Command maze-solver finds shortest paths through grid mazes.
//
// It supports three commands:
//  1. "solve" – solves one maze file with BFS or A* and prints the result
//  2. "serve" – runs the HTTP server exposing REST API, WebSocket replays, and an /mcp HTTP endpoint
//  3. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control the maze directory, host/port, debug logging, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/maze-solver/api"
	"github.com/wricardo/maze-solver/maze/config"
	"github.com/wricardo/maze-solver/maze/export"
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/runs"
	"github.com/wricardo/maze-solver/maze/search"
	"github.com/wricardo/maze-solver/maze/service"
	"github.com/wricardo/maze-solver/transport/mcp"
	"github.com/wricardo/maze-solver/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Solver"
)

// Exit codes of the solve command
const (
	exitInvalid = 1
	exitNoPath  = 2
)

// ErrNoPath is returned by solveFile when the goal cannot be reached
var ErrNoPath = errors.New("no solution")

// main loads .env, builds the command tree and runs it.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "maze-solver",
		Usage:   "find shortest paths through grid mazes",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			solveCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}
}

func mazeDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "maze-dir",
		Usage:   "Directory containing maze files",
		Value:   "mazes",
		Sources: cli.EnvVars("MAZE_DIR"),
	}
}

// solveOptions configures one run of the solve command
type solveOptions struct {
	Path        string
	Algorithm   search.Algorithm
	Legend      grid.Legend
	ImagePath   string
	Explored    bool
	GeoJSONPath string
	Quiet       bool
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "Solve a maze file and print the path",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "algorithm",
				Aliases: []string{"a"},
				Usage:   "Search algorithm: bfs or astar",
				Value:   string(search.BFS),
			},
			&cli.StringFlag{
				Name:  "legend",
				Usage: "Legend JSON file mapping characters to cell types",
			},
			&cli.BoolFlag{
				Name:  "classic",
				Usage: "Use the classic legend (# wall, space open, A start, B goal)",
			},
			&cli.StringFlag{
				Name:  "image",
				Usage: "Write a PNG rendering of the solution to this file",
			},
			&cli.BoolFlag{
				Name:  "explored",
				Usage: "Mark explored cells in the PNG rendering",
			},
			&cli.StringFlag{
				Name:  "geojson",
				Usage: "Write the path and trace as GeoJSON to this file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only print the counts",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return cli.Exit("usage: maze-solver solve <file>", exitInvalid)
			}

			algorithm, err := search.ParseAlgorithm(cmd.String("algorithm"))
			if err != nil {
				return cli.Exit(err.Error(), exitInvalid)
			}

			legend := grid.DefaultLegend()
			switch {
			case cmd.String("legend") != "":
				if legend, err = grid.LoadLegend(cmd.String("legend")); err != nil {
					return cli.Exit(err.Error(), exitInvalid)
				}
			case cmd.Bool("classic"):
				legend = grid.ClassicLegend()
			}

			opts := solveOptions{
				Path:        cmd.Args().First(),
				Algorithm:   algorithm,
				Legend:      legend,
				ImagePath:   cmd.String("image"),
				Explored:    cmd.Bool("explored"),
				GeoJSONPath: cmd.String("geojson"),
				Quiet:       cmd.Bool("quiet"),
			}
			return exitFor(solveFile(os.Stdout, opts))
		},
	}
}

// exitFor maps a solveFile outcome to the command's exit code
func exitFor(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNoPath):
		return cli.Exit("No solution.", exitNoPath)
	default:
		return cli.Exit(err.Error(), exitInvalid)
	}
}

// solveFile loads, solves and prints one maze. It returns ErrNoPath when
// the goal is unreachable; files are still written in that case.
func solveFile(w io.Writer, opts solveOptions) error {
	g, err := grid.Load(opts.Path, opts.Legend)
	if err != nil {
		return err
	}

	if !opts.Quiet {
		fmt.Fprintln(w, "Maze:")
		fmt.Fprint(w, export.Text(g, nil, export.DefaultOptions()))
		fmt.Fprintln(w, "Solving...")
	}

	start := time.Now()
	res, err := search.Solve(g, opts.Algorithm)
	if err != nil {
		return err
	}
	log.Printf("[SOLVE] file=%s algorithm=%s found=%v explored=%d took=%s",
		opts.Path, res.Algorithm, res.Found, len(res.Explored), time.Since(start))

	fmt.Fprintf(w, "States Explored: %d\n", len(res.Explored))

	if res.Found {
		if !opts.Quiet {
			fmt.Fprintln(w, "Solution:")
			fmt.Fprint(w, export.Text(g, &res, export.DefaultOptions()))
		}
		fmt.Fprintf(w, "Path length: %d\n", res.Steps())
	}

	if opts.ImagePath != "" {
		imageOpts := export.Options{ShowPath: true, ShowExplored: opts.Explored}
		if err := export.SavePNG(opts.ImagePath, g, &res, imageOpts); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
	}

	if opts.GeoJSONPath != "" {
		data, err := json.MarshalIndent(export.GeoJSON(g, res), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode geojson: %w", err)
		}
		if err := os.WriteFile(opts.GeoJSONPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write geojson: %w", err)
		}
	}

	if !res.Found {
		return ErrNoPath
	}
	return nil
}

// serverConfig holds the serve command's settings
type serverConfig struct {
	Host        string
	Port        int
	MazeDir     string
	RunTTL      time.Duration
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server with REST API, WebSocket replays, and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "HTTP server host",
				Value:   "localhost",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP server port",
				Value:   8080,
				Sources: cli.EnvVars("PORT"),
			},
			mazeDirFlag(),
			&cli.DurationFlag{
				Name:  "run-ttl",
				Usage: "Discard runs not accessed within this window",
				Value: 24 * time.Hour,
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := serverConfig{
				Host:        cmd.String("host"),
				Port:        int(cmd.Int("port")),
				MazeDir:     cmd.String("maze-dir"),
				RunTTL:      cmd.Duration("run-ttl"),
				Ngrok:       cmd.Bool("ngrok"),
				NgrokAuth:   cmd.String("ngrok-auth"),
				NgrokDomain: cmd.String("ngrok-domain"),
			}

			log.Printf("Starting %s v%s (mode: serve)", AppName, Version)

			solver, runManager, err := initializeServices(cfg.MazeDir)
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}

			ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			go runCleanupRoutine(ctx, runManager, cfg.RunTTL, time.Hour)

			return runHTTPServer(ctx, solver, cfg)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run an MCP stdio server with an internal HTTP server",
		Flags: []cli.Flag{
			mazeDirFlag(),
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "External API server to reuse when it is running",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("MAZE_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			solver, _, err := initializeServices(cmd.String("maze-dir"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			return runStdioMCPWithInternalServer(solver, cmd.String("api-url"))
		},
	}
}

// newHandler combines the API server and the /mcp endpoint
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel. It returns after ctx is cancelled.
func runHTTPServer(ctx context.Context, solver service.SolverService, cfg serverConfig) error {
	// Cancelled on any exit so the tunnel goroutine returns too
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	apiServer := api.NewServer(solver, hub)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newHandler(apiServer, mcpClient)

	// No WriteTimeout: WebSocket connections stay open for whole replays
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?run=<run_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cfg.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			startTunnel(ctx, handler, cfg)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err = <-serveErr:
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("HTTP server shutdown error: %v", shutdownErr)
	}

	cancel()
	wg.Wait()
	log.Println("Server stopped")
	return err
}

// startTunnel is replaced in tests
var startTunnel = runNgrokTunnel

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is cancelled
func runNgrokTunnel(ctx context.Context, handler http.Handler, cfg serverConfig) {
	if cfg.NgrokAuth == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Printf("Using custom ngrok domain: %s", cfg.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuth))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	// Closing the listener ends http.Serve
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?run=<run_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// initializeServices wires the maze library, run store and solver service.
func initializeServices(mazeDir string) (service.SolverService, *runs.Manager, error) {
	library, err := config.NewManager(mazeDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create maze library: %w", err)
	}

	runManager := runs.NewManager()
	return service.NewSolverService(library, runManager), runManager, nil
}

// runCleanupRoutine periodically removes runs that have not been accessed
// within maxAge. It returns when ctx is cancelled.
func runCleanupRoutine(ctx context.Context, manager *runs.Manager, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpired(maxAge); removed > 0 {
				log.Printf("Cleaned up %d expired runs", removed)
			}
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at externalURL; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(solver service.SolverService, externalURL string) error {
	baseURL := externalURL

	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		httpServer := &http.Server{
			Handler: api.NewServer(solver, hub),
		}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API: %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
