package store

import (
	"sort"
	"sync"
)

// Memory is an in-memory store for testing.
type Memory struct {
	mu       sync.RWMutex
	history  []string
	sessions map[string][]byte
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string][]byte),
	}
}

// AppendLine records an executed input line in the history.
func (m *Memory) AppendLine(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, line)
	return nil
}

// Lines returns up to limit history lines, oldest first.
func (m *Memory) Lines(limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lines := m.history
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out, nil
}

// SaveSession stores a transcript under name.
func (m *Memory) SaveSession(name string, transcript []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob := make([]byte, len(transcript))
	copy(blob, transcript)
	m.sessions[name] = blob
	return nil
}

// LoadSession retrieves a transcript by name.
func (m *Memory) LoadSession(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.sessions[name]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Sessions lists the saved session names, sorted.
func (m *Memory) Sessions() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
