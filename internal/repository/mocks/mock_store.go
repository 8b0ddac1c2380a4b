// Package mocks provides a repository.Store for service tests with error
// injection and call counting on top of the in-memory store.
package mocks

import (
	"context"
	"sync"

	"reminer-backend/internal/domain"
	"reminer-backend/internal/repository"
	"reminer-backend/internal/repository/memory"
)

// MockStore wraps memory.Store.
type MockStore struct {
	inner *memory.Store

	mu sync.Mutex
	// For testing error scenarios. An entry with times > 0 fires that many
	// times and is then cleared; times == 0 fires forever.
	shouldFailOn map[string]*failure
	calls        map[string]int
}

type failure struct {
	err   error
	times int
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		inner:        memory.NewStore(),
		shouldFailOn: make(map[string]*failure),
		calls:        make(map[string]int),
	}
}

var _ repository.Store = (*MockStore)(nil)

// SetError makes every call to method return err.
func (m *MockStore) SetError(method string, err error) {
	m.SetErrorTimes(method, err, 0)
}

// SetErrorTimes makes the next n calls to method return err.
func (m *MockStore) SetErrorTimes(method string, err error, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = &failure{err: err, times: n}
}

// ClearErrors removes all configured errors.
func (m *MockStore) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]*failure)
}

// Calls returns how many times method was invoked.
func (m *MockStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Seed stores a record directly, bypassing error injection.
func (m *MockStore) Seed(rec *domain.UserRecord) error {
	return m.inner.Save(context.Background(), rec)
}

func (m *MockStore) checkError(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	f, ok := m.shouldFailOn[method]
	if !ok {
		return nil
	}
	if f.times > 0 {
		f.times--
		if f.times == 0 {
			delete(m.shouldFailOn, method)
		}
	}
	return f.err
}

func (m *MockStore) Load(ctx context.Context, userID string) (*domain.UserRecord, error) {
	if err := m.checkError("Load"); err != nil {
		return nil, err
	}
	return m.inner.Load(ctx, userID)
}

func (m *MockStore) Save(ctx context.Context, record *domain.UserRecord) error {
	if err := m.checkError("Save"); err != nil {
		return err
	}
	return m.inner.Save(ctx, record)
}

func (m *MockStore) AppendChild(ctx context.Context, userID string, path repository.Path, item any, expectedVersion int64) error {
	if err := m.checkError("AppendChild"); err != nil {
		return err
	}
	return m.inner.AppendChild(ctx, userID, path, item, expectedVersion)
}

func (m *MockStore) ReplaceAt(ctx context.Context, userID string, path repository.Path, index int, item any, expectedVersion int64) error {
	if err := m.checkError("ReplaceAt"); err != nil {
		return err
	}
	return m.inner.ReplaceAt(ctx, userID, path, index, item, expectedVersion)
}

func (m *MockStore) ReplaceList(ctx context.Context, userID string, path repository.Path, items any, expectedVersion int64) error {
	if err := m.checkError("ReplaceList"); err != nil {
		return err
	}
	return m.inner.ReplaceList(ctx, userID, path, items, expectedVersion)
}
