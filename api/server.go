package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/maze-solver/maze/export"
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/replay"
	"github.com/wricardo/maze-solver/maze/service"
	"github.com/wricardo/maze-solver/transport/websocket"
)

// defaultReplayInterval is used when a replay request omits interval_ms
const defaultReplayInterval = 50 * time.Millisecond

// Server represents the REST API server
type Server struct {
	service service.SolverService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(solver service.SolverService, hub *websocket.Hub) *Server {
	s := &Server{
		service: solver,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("", s.handleHealth).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Maze library
	api.HandleFunc("/mazes", s.handleListMazes).Methods("GET")
	api.HandleFunc("/mazes", s.handleSaveMaze).Methods("POST")
	api.HandleFunc("/mazes/{name}", s.handleGetMaze).Methods("GET")

	// Solving
	api.HandleFunc("/solve", s.handleSolve).Methods("POST")
	api.HandleFunc("/compare", s.handleCompare).Methods("POST")

	// Runs
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")
	api.HandleFunc("/runs/{id}/cells/{row:-?[0-9]+}/{col:-?[0-9]+}", s.handleDescribeCell).Methods("GET")
	api.HandleFunc("/runs/{id}/image.png", s.handleRunImage).Methods("GET")
	api.HandleFunc("/runs/{id}/geojson", s.handleRunGeoJSON).Methods("GET")
	api.HandleFunc("/runs/{id}/replay", s.handleReplay).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service sentinels to status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMazeNotFound), errors.Is(err, service.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidMaze),
		errors.Is(err, grid.ErrMalformedMaze):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Maze Handlers

func (s *Server) handleListMazes(w http.ResponseWriter, r *http.Request) {
	mazes, err := s.service.ListMazes(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if mazes == nil {
		mazes = []*service.MazeInfo{}
	}

	respondJSON(w, http.StatusOK, mazes)
}

func (s *Server) handleGetMaze(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	maze, err := s.service.GetMaze(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, maze)
}

func (s *Server) handleSaveMaze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string   `json:"name"`
		Text string   `json:"text,omitempty"`
		Rows []string `json:"rows,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Maze name is required")
		return
	}

	text := req.Text
	if text == "" && len(req.Rows) > 0 {
		text = strings.Join(req.Rows, "\n")
	}

	maze, err := s.service.SaveMaze(r.Context(), req.Name, text)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, maze)
}

// Solve Handlers

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req service.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	run, err := s.service.Solve(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, run)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req service.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comparison, err := s.service.Compare(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, comparison)
}

// Run Handlers

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created" (default), "accessed"
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of runs to return
	mazeName := query.Get("maze")  // only runs of this maze

	if sortBy == "" {
		sortBy = "created"
	}
	if order == "" {
		order = "desc"
	}

	if mazeName != "" {
		filtered := runs[:0]
		for _, run := range runs {
			if run.MazeName == mazeName {
				filtered = append(filtered, run)
			}
		}
		runs = filtered
	}
	total := len(runs)

	sort.SliceStable(runs, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "accessed" {
			ti, tj = runs[i].LastAccessedAt, runs[j].LastAccessedAt
		} else {
			ti, tj = runs[i].CreatedAt, runs[j].CreatedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(runs) {
			runs = runs[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"total": total,
		"runs":  runs,
		"sort":  sortBy,
		"order": order,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	run, err := s.service.GetRun(r.Context(), runID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	if err := s.service.DeleteRun(r.Context(), runID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Run %s deleted", runID),
	})
}

func (s *Server) handleDescribeCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	row, rowErr := strconv.Atoi(vars["row"])
	col, colErr := strconv.Atoi(vars["col"])
	if rowErr != nil || colErr != nil {
		respondError(w, http.StatusBadRequest, "row and col must be integers")
		return
	}

	cell, err := s.service.DescribeCell(r.Context(), vars["id"], row, col)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cell)
}

func (s *Server) handleRunImage(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.Run(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	opts := export.Options{
		ShowPath:     query.Get("path") != "false",
		ShowExplored: query.Get("explored") == "true",
	}

	w.Header().Set("Content-Type", "image/png")
	if err := export.PNG(w, run.Grid, &run.Result, opts); err != nil {
		log.Printf("Failed to render run %s: %v", run.ID, err)
	}
}

func (s *Server) handleRunGeoJSON(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.Run(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	data, err := export.GeoJSON(run.Grid, run.Result).MarshalJSON()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	var req struct {
		IntervalMS int `json:"interval_ms,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IntervalMS < 0 {
		respondError(w, http.StatusBadRequest, "interval_ms must not be negative")
		return
	}

	run, err := s.service.Run(r.Context(), runID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "replay streaming is not available")
		return
	}

	interval := defaultReplayInterval
	if req.IntervalMS > 0 {
		interval = max(time.Duration(req.IntervalMS)*time.Millisecond, websocket.MinReplayInterval)
	}

	player := replay.NewPlayer(run.Result)
	watchers := s.hub.ClientCount(run.ID)

	// The replay outlives this request; the hub cancels it on shutdown
	s.hub.Replay(context.Background(), run.ID, player, interval)

	log.Printf("[REPLAY] run=%s frames=%d interval=%s watchers=%d", run.ID, player.Total(), interval, watchers)

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"run_id":      run.ID,
		"frames":      player.Total(),
		"interval_ms": interval.Milliseconds(),
		"watchers":    watchers,
		"websocket":   "/ws?run=" + run.ID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run")
	if runID == "" {
		http.Error(w, "run parameter required", http.StatusBadRequest)
		return
	}

	run, err := s.service.Run(r.Context(), runID)
	if err != nil {
		http.Error(w, "Invalid run", http.StatusNotFound)
		return
	}

	if s.hub == nil {
		http.Error(w, "WebSocket not available", http.StatusServiceUnavailable)
		return
	}

	s.hub.ServeWS(w, r, run.ID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
