package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	headerHeight   = 80
	screenWidth    = 800
	screenHeight   = 720
	defaultBaseURL = "http://localhost:8080"
	maxCellSize    = 40
	listPageSize   = 25
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenReplay
)

var (
	backgroundColor = color.RGBA{20, 20, 30, 255}
	wallColor       = color.RGBA{40, 40, 40, 255}
	startColor      = color.RGBA{255, 0, 0, 255}
	goalColor       = color.RGBA{0, 171, 28, 255}
	pathColor       = color.RGBA{220, 235, 113, 255}
	exploredColor   = color.RGBA{212, 97, 85, 255}
	openColor       = color.RGBA{237, 240, 252, 255}
	frontierColor   = color.RGBA{100, 100, 255, 255}
)

// Coord is a (row, col) grid position
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Legend maps cell kinds to the symbols used in Rows
type Legend struct {
	Wall  string `json:"wall"`
	Open  string `json:"open"`
	Start string `json:"start"`
	Goal  string `json:"goal"`
}

// RunInfo is a solved run as returned by the server
type RunInfo struct {
	ID            string    `json:"id"`
	MazeName      string    `json:"maze,omitempty"`
	Algorithm     string    `json:"algorithm"`
	Found         bool      `json:"found"`
	Steps         int       `json:"steps"`
	ExploredCount int       `json:"explored_count"`
	Path          []Coord   `json:"path,omitempty"`
	Explored      []Coord   `json:"explored"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Start         Coord     `json:"start"`
	Goal          Coord     `json:"goal"`
	Rows          []string  `json:"rows"`
	Legend        Legend    `json:"legend"`
	CreatedAt     time.Time `json:"created_at"`
}

// Frame is one step of a replay
type Frame struct {
	Phase string `json:"phase"`
	Index int    `json:"index"`
	Cell  Coord  `json:"cell"`
	Step  int    `json:"step"`
	Total int    `json:"total"`
	Found bool   `json:"found"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	RunID string `json:"run_id"`
	Event string `json:"event"`
	Frame *Frame `json:"frame,omitempty"`
}

// ReplayView holds the replay state of the run on screen
type ReplayView struct {
	run       *RunInfo
	wsConn    *websocket.Conn
	explored  map[Coord]bool
	path      map[Coord]bool
	current   *Coord
	step      int
	total     int
	done      bool
	replaying bool
	lastEvent time.Time
}

func newReplayView(run *RunInfo) *ReplayView {
	return &ReplayView{
		run:      run,
		explored: make(map[Coord]bool),
		path:     make(map[Coord]bool),
	}
}

// reset clears the overlay before a new replay
func (v *ReplayView) reset() {
	v.explored = make(map[Coord]bool)
	v.path = make(map[Coord]bool)
	v.current = nil
	v.step = 0
	v.done = false
}

// showResult paints the full result without animation
func (v *ReplayView) showResult() {
	v.reset()
	for _, c := range v.run.Explored {
		v.explored[c] = true
	}
	for _, c := range v.run.Path {
		v.path[c] = true
	}
	v.step = len(v.run.Explored) + len(v.run.Path)
	v.total = v.step
	v.done = true
}

// apply records a replay frame
func (v *ReplayView) apply(frame Frame) {
	cell := frame.Cell
	switch frame.Phase {
	case "explore":
		if frame.Index == 0 {
			v.reset()
		}
		v.explored[cell] = true
		v.current = &cell
	case "path":
		v.path[cell] = true
		v.current = &cell
	case "done":
		v.current = nil
		v.done = true
		v.replaying = false
	}
	v.step = frame.Step
	v.total = frame.Total
	v.lastEvent = time.Now()
}

// WelcomeScreen manages the run selection screen state
type WelcomeScreen struct {
	runs      []RunInfo
	cursorPos int
	errorMsg  string
}

// Game represents the desktop replay client
type Game struct {
	baseURL       string
	httpClient    *http.Client
	view          *ReplayView
	stateMutex    sync.RWMutex
	currentScreen ScreenType
	welcomeScreen *WelcomeScreen
}

// NewGame creates the client, opening runID directly when given
func NewGame(baseURL, runID string) *Game {
	g := &Game{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		currentScreen: ScreenWelcome,
		welcomeScreen: &WelcomeScreen{},
	}

	if runID != "" {
		if err := g.openRun(runID); err != nil {
			log.Printf("Failed to open run %s: %v", runID, err)
			g.welcomeScreen.errorMsg = err.Error()
			g.loadWelcomeData()
		}
	} else {
		g.loadWelcomeData()
	}

	return g
}

// getJSON fetches path from the server and decodes the body into result
func (g *Game) getJSON(path string, result interface{}) error {
	resp, err := g.httpClient.Get(g.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return json.Unmarshal(body, result)
}

// loadWelcomeData fetches the most recent runs
func (g *Game) loadWelcomeData() {
	var result struct {
		Runs []RunInfo `json:"runs"`
	}
	if err := g.getJSON(fmt.Sprintf("/api/runs?limit=%d", listPageSize), &result); err != nil {
		g.welcomeScreen.errorMsg = fmt.Sprintf("Failed to load runs: %v", err)
		return
	}

	g.welcomeScreen.runs = result.Runs
	g.welcomeScreen.errorMsg = ""
	if g.welcomeScreen.cursorPos >= len(result.Runs) {
		g.welcomeScreen.cursorPos = max(len(result.Runs)-1, 0)
	}
}

// openRun fetches a run, shows its result and subscribes to its replays
func (g *Game) openRun(runID string) error {
	var run RunInfo
	if err := g.getJSON("/api/runs/"+url.PathEscape(runID), &run); err != nil {
		return err
	}

	g.closeView()

	view := newReplayView(&run)
	view.showResult()

	if err := g.connectWebSocket(view); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (replay disabled)", run.ID, err)
	} else {
		go g.listenWebSocket(view)
	}

	g.stateMutex.Lock()
	g.view = view
	g.stateMutex.Unlock()

	g.currentScreen = ScreenReplay
	log.Printf("Opened run %s (%s, %s)", run.ID, run.MazeName, run.Algorithm)
	return nil
}

func (g *Game) closeView() {
	g.stateMutex.Lock()
	defer g.stateMutex.Unlock()

	if g.view != nil && g.view.wsConn != nil {
		g.view.wsConn.Close()
	}
	g.view = nil
}

// websocketURL maps the HTTP base URL onto the /ws endpoint
func (g *Game) websocketURL(runID string) (string, error) {
	base, err := url.Parse(g.baseURL)
	if err != nil {
		return "", err
	}

	scheme := "ws"
	if base.Scheme == "https" {
		scheme = "wss"
	}

	wsURL := url.URL{Scheme: scheme, Host: base.Host, Path: "/ws"}
	q := wsURL.Query()
	q.Set("run", runID)
	wsURL.RawQuery = q.Encode()
	return wsURL.String(), nil
}

// connectWebSocket establishes WebSocket connection
func (g *Game) connectWebSocket(view *ReplayView) error {
	wsURL, err := g.websocketURL(view.run.ID)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}

	view.wsConn = conn
	log.Printf("WebSocket connected for run %s", view.run.ID)
	return nil
}

// listenWebSocket applies replay frames until the connection closes
func (g *Game) listenWebSocket(view *ReplayView) {
	conn := view.wsConn
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket closed for %s: %v", view.run.ID, err)
			return
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		g.stateMutex.Lock()
		switch {
		case wsMsg.Event == "replay_start":
			view.reset()
			view.replaying = true
		case wsMsg.Frame != nil:
			view.apply(*wsMsg.Frame)
		}
		g.stateMutex.Unlock()
	}
}

// startReplay asks the server to stream the current run
func (g *Game) startReplay(intervalMS int) error {
	g.stateMutex.RLock()
	view := g.view
	g.stateMutex.RUnlock()
	if view == nil {
		return fmt.Errorf("no run selected")
	}

	payload := fmt.Sprintf(`{"interval_ms":%d}`, intervalMS)
	resp, err := g.httpClient.Post(
		g.baseURL+"/api/runs/"+url.PathEscape(view.run.ID)+"/replay",
		"application/json",
		bytes.NewReader([]byte(payload)),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("replay failed (%d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenReplay:
		return g.updateReplayScreen()
	}
	return nil
}

// updateWelcomeScreen handles run selection input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	total := len(ws.runs)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && ws.cursorPos < total-1 {
		ws.cursorPos++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && ws.cursorPos > 0 {
		ws.cursorPos--
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && ws.cursorPos < total {
		if err := g.openRun(ws.runs[ws.cursorPos].ID); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to open run: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && g.view != nil {
		g.currentScreen = ScreenReplay
	}

	return nil
}

// updateReplayScreen handles replay controls
func (g *Game) updateReplayScreen() error {
	interval := 0
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		interval = 50
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		interval = 10
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		interval = 200
	}
	if interval > 0 {
		if err := g.startReplay(interval); err != nil {
			log.Printf("Error starting replay: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.stateMutex.Lock()
		if g.view != nil && !g.view.replaying {
			g.view.showResult()
		}
		g.stateMutex.Unlock()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
	}

	return nil
}

// Draw renders the current screen
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenReplay:
		g.drawReplayScreen(screen)
	}
}

// drawWelcomeScreen renders the run list
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen
	screen.Fill(backgroundColor)

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== MAZE SOLVER - RUN SELECT ===", 260, y)
	y += 20
	ebitenutil.DebugPrintAt(screen, "Server: "+g.baseURL, 20, y)
	y += 30

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, "ERROR: "+ws.errorMsg, 20, y)
		y += 30
	}

	if len(ws.runs) == 0 {
		ebitenutil.DebugPrintAt(screen, "No runs yet. Solve a maze through the API or MCP, then press F5.", 20, y)
		y += 30
	}

	for i, run := range ws.runs {
		cursor := "  "
		if i == ws.cursorPos {
			cursor = "> "
		}

		outcome := fmt.Sprintf("%d steps", run.Steps)
		if !run.Found {
			outcome = "no path"
		}
		maze := run.MazeName
		if maze == "" {
			maze = "(inline)"
		}

		line := fmt.Sprintf("%s%-10s %-16s %-6s %-9s explored %-5d %s",
			cursor, run.ID[:min(8, len(run.ID))], maze, run.Algorithm, outcome,
			run.ExploredCount, run.CreatedAt.Format("15:04:05"))
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 20
	}

	y = screenHeight - 100
	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 20, y)
	y += 20
	ebitenutil.DebugPrintAt(screen, "  UP/DOWN  - Move cursor", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  ENTER    - Open run", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  F5       - Refresh", 20, y)
	if g.view != nil {
		y += 15
		ebitenutil.DebugPrintAt(screen, "  ESC      - Back to replay", 20, y)
	}
}

// cellSizeFor fits a width x height grid below the header
func cellSizeFor(width, height int) int {
	if width <= 0 || height <= 0 {
		return maxCellSize
	}
	size := min(screenWidth/width, (screenHeight-headerHeight)/height)
	return max(min(size, maxCellSize), 1)
}

// drawReplayScreen renders the grid with the current overlay
func (g *Game) drawReplayScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	screen.Fill(backgroundColor)

	view := g.view
	if view == nil {
		ebitenutil.DebugPrint(screen, "No run selected. Press ESC to go to run select.")
		return
	}

	g.drawRunStats(screen, view)

	run := view.run
	size := cellSizeFor(run.Width, run.Height)
	gap := 0
	if size > 4 {
		gap = 1
	}

	for row, line := range run.Rows {
		col := 0
		for _, r := range line {
			c := Coord{Row: row, Col: col}
			fill := cellColor(run.Legend, string(r), view.path[c], view.explored[c])
			if view.current != nil && *view.current == c && !view.done {
				fill = frontierColor
			}
			ebitenutil.DrawRect(screen,
				float64(col*size),
				float64(row*size+headerHeight),
				float64(size-gap), float64(size-gap), fill)
			col++
		}
	}
}

// drawRunStats renders the header for the open run
func (g *Game) drawRunStats(screen *ebiten.Image, view *ReplayView) {
	run := view.run

	maze := run.MazeName
	if maze == "" {
		maze = "(inline)"
	}
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("Run %s | Maze: %s | %dx%d | %s", run.ID, maze, run.Width, run.Height, run.Algorithm), 10, 5)

	outcome := fmt.Sprintf("Path: %d steps", run.Steps)
	if !run.Found {
		outcome = "No solution"
	}
	status := "complete"
	if view.replaying {
		status = "replaying"
	}
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("%s | Explored: %d | Frame %d/%d (%s)", outcome, run.ExploredCount, view.step, view.total, status), 10, 25)

	ebitenutil.DebugPrintAt(screen,
		"R: replay  F: fast  S: slow  SPACE: skip to result  ESC: runs", 10, 50)
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// cellColor returns the fill for a cell symbol with the current overlay
func cellColor(legend Legend, symbol string, onPath, explored bool) color.Color {
	switch symbol {
	case legend.Wall:
		return wallColor
	case legend.Start:
		return startColor
	case legend.Goal:
		return goalColor
	}

	switch {
	case onPath:
		return pathColor
	case explored:
		return exploredColor
	default:
		return openColor
	}
}

func main() {
	baseURL := defaultBaseURL
	if env := os.Getenv("MAZE_API_URL"); env != "" {
		baseURL = env
	}

	runID := ""
	if len(os.Args) > 1 {
		runID = os.Args[1]
	}

	game := NewGame(baseURL, runID)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Maze Solver - Replay Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
