package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

// MockStorage is an in-memory Storage for tests.
type MockStorage struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*snapshot.GameSnapshot

	SaveSnapshotFunc func(ctx context.Context, id uuid.UUID, gs *snapshot.GameSnapshot) error
	LoadSnapshotFunc func(ctx context.Context, id uuid.UUID) (*snapshot.GameSnapshot, error)
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		snapshots: make(map[uuid.UUID]*snapshot.GameSnapshot),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, gs *snapshot.GameSnapshot) error {
	if m.SaveSnapshotFunc != nil {
		return m.SaveSnapshotFunc(ctx, id, gs)
	}
	cp, err := gs.DeepCopy()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[id] = cp
	return nil
}

func (m *MockStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*snapshot.GameSnapshot, error) {
	if m.LoadSnapshotFunc != nil {
		return m.LoadSnapshotFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	gs, ok := m.snapshots[id]
	if !ok {
		return nil, nil
	}
	return gs.DeepCopy()
}

func (m *MockStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	return nil
}

func (m *MockStorage) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.snapshots))
	for id := range m.snapshots {
		ids = append(ids, id)
	}
	return ids, nil
}
