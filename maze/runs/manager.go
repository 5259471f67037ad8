package runs

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/maze-solver/maze/service"
)

var (
	ErrRunNotFound      = service.ErrRunNotFound
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrInvalidRun       = errors.New("invalid run")
)

// Manager handles run lifecycle
type Manager struct {
	runs map[string]*service.Run
	mu   sync.RWMutex
}

// NewManager creates an empty run store
func NewManager() *Manager {
	return &Manager{
		runs: make(map[string]*service.Run),
	}
}

// Create stores a copy of run, assigning an ID when the run has none.
// Stored runs are only handed out as snapshots, so callers never share
// fields the manager writes under its lock.
func (m *Manager) Create(run *service.Run) (*service.Run, error) {
	if run == nil || run.Grid == nil {
		return nil, ErrInvalidRun
	}

	stored := *run
	if stored.ID == "" {
		stored.ID = newRunID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(stored.ID)
	if _, exists := m.runs[key]; exists {
		return nil, ErrRunAlreadyExists
	}

	now := time.Now()
	stored.CreatedAt = now
	stored.LastAccessedAt = now
	m.runs[key] = &stored

	return snapshot(&stored), nil
}

func snapshot(run *service.Run) *service.Run {
	copied := *run
	return &copied
}

// Get retrieves a run by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[strings.ToLower(id)]
	if !exists {
		return nil, ErrRunNotFound
	}
	return snapshot(run), nil
}

// List returns all stored runs
func (m *Manager) List() []*service.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Run, 0, len(m.runs))
	for _, run := range m.runs {
		result = append(result, snapshot(run))
	}
	return result
}

// Delete removes a run
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.runs[key]; !exists {
		return ErrRunNotFound
	}
	delete(m.runs, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a run. Snapshots
// taken earlier keep their old time.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, exists := m.runs[strings.ToLower(id)]
	if !exists {
		return ErrRunNotFound
	}
	run.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpired removes runs that haven't been accessed in the given duration
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, run := range m.runs {
		if run.LastAccessedAt.Before(cutoff) {
			delete(m.runs, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of stored runs
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

// newRunID returns a time-ordered UUIDv7
func newRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}
