package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/jwebster45206/haunted-mansion/pkg/state"
)

// MockStorage is an in-memory implementation of Storage for testing.
type MockStorage struct {
	mu        sync.RWMutex
	saves     map[string]*state.Save
	pingError error

	// Optional overrides
	SaveGameFunc func(ctx context.Context, id string, save *state.Save) error
	LoadGameFunc func(ctx context.Context, id string) (*state.Save, error)
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		saves: make(map[string]*state.Save),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGame(ctx context.Context, id string, save *state.Save) error {
	if m.SaveGameFunc != nil {
		return m.SaveGameFunc(ctx, id, save)
	}
	if save == nil {
		return errors.New("save cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[id] = save
	return nil
}

func (m *MockStorage) LoadGame(ctx context.Context, id string) (*state.Save, error) {
	if m.LoadGameFunc != nil {
		return m.LoadGameFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[id], nil
}

func (m *MockStorage) DeleteGame(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

// SaveCount reports how many saves the mock holds, for test assertions.
func (m *MockStorage) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.saves)
}
