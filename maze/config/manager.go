package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/service"
)

const (
	mazeExt        = ".txt"
	legendFilename = "legend.json"
)

var (
	ErrMazeNotFound = service.ErrMazeNotFound
	ErrInvalidMaze  = service.ErrInvalidMaze
	ErrInvalidName  = errors.New("invalid maze name")
)

// Manager handles maze loading and caching
type Manager struct {
	mazeDir string
	legend  grid.Legend
	mazes   map[string]*grid.Grid
	mu      sync.RWMutex
}

// NewManager creates a new maze library rooted at mazeDir
func NewManager(mazeDir string) (*Manager, error) {
	if info, err := os.Stat(mazeDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("maze directory does not exist: %s", mazeDir)
	}

	m := &Manager{
		mazeDir: mazeDir,
		mazes:   make(map[string]*grid.Grid),
	}

	legend, err := m.readLegend()
	if err != nil {
		return nil, fmt.Errorf("failed to load legend: %w", err)
	}
	m.legend = legend

	return m, nil
}

// Dir returns the library directory
func (m *Manager) Dir() string { return m.mazeDir }

// Legend returns the legend mazes are parsed with
func (m *Manager) Legend() grid.Legend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.legend
}

// LoadMaze loads a maze by name; the .txt extension is optional
func (m *Manager) LoadMaze(name string) (*grid.Grid, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if g, exists := m.mazes[name]; exists {
		m.mu.RUnlock()
		return g, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if g, exists := m.mazes[name]; exists {
		return g, nil
	}

	data, err := os.ReadFile(m.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMazeNotFound, name)
		}
		return nil, fmt.Errorf("failed to read maze file: %w", err)
	}

	g, err := grid.Parse(string(data), m.legend)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMaze, name, err)
	}

	m.mazes[name] = g
	return g, nil
}

// ListMazes returns information about every valid maze in the directory.
// Files that fail to parse are skipped.
func (m *Manager) ListMazes() ([]*service.MazeInfo, error) {
	entries, err := os.ReadDir(m.mazeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read maze directory: %w", err)
	}

	var mazes []*service.MazeInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), mazeExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), mazeExt)
		g, err := m.LoadMaze(name)
		if err != nil {
			continue
		}
		mazes = append(mazes, service.NewMazeInfo(name, g))
	}

	return mazes, nil
}

// SaveMaze validates maze text and writes it to disk
func (m *Manager) SaveMaze(name, text string) (*grid.Grid, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g, err := grid.Parse(text, m.legend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMaze, err)
	}

	// Store the canonical rendering so aliases and CRLF do not survive
	if err := os.WriteFile(m.path(name), []byte(g.String()+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("failed to write maze file: %w", err)
	}

	m.mazes[name] = g
	return g, nil
}

// RefreshCache drops every cached maze and rereads the legend
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	legend, err := m.readLegend()
	if err != nil {
		return fmt.Errorf("failed to load legend: %w", err)
	}

	m.legend = legend
	m.mazes = make(map[string]*grid.Grid)
	return nil
}

// readLegend loads legend.json, falling back to the default legend
func (m *Manager) readLegend() (grid.Legend, error) {
	path := filepath.Join(m.mazeDir, legendFilename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return grid.DefaultLegend(), nil
	}
	return grid.LoadLegend(path)
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.mazeDir, name+mazeExt)
}

// cleanName strips the extension and rejects names that would escape the
// library directory
func cleanName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), mazeExt)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %w: %q", service.ErrInvalidRequest, ErrInvalidName, name)
	}
	return name, nil
}
