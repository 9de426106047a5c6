package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store used in tests and by embedders that manage
// persistence themselves. Documents are kept serialized so callers never
// share state with the store.
type Memory struct {
	mu      sync.RWMutex
	servers map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{servers: make(map[string][]byte)}
}

// GetServer returns the named server document.
func (m *Memory) GetServer(ctx context.Context, name string) (*ServerConfig, error) {
	m.mu.RLock()
	data, ok := m.servers[name]
	m.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Server: name}
	}

	var cfg ServerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal server config: %w", err)
	}
	return &cfg, nil
}

// PutServer replaces the named server document.
func (m *Memory) PutServer(ctx context.Context, name string, cfg *ServerConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal server config: %w", err)
	}

	m.mu.Lock()
	m.servers[name] = data
	m.mu.Unlock()
	return nil
}

// SeedJSON installs a raw server document, bypassing the typed layer. Handy
// for tests exercising field passthrough.
func (m *Memory) SeedJSON(name string, data []byte) {
	m.mu.Lock()
	m.servers[name] = append([]byte(nil), data...)
	m.mu.Unlock()
}

// RawJSON returns the stored document bytes for inspection.
func (m *Memory) RawJSON(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.servers[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}
