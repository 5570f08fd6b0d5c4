package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

// Storage persists session snapshots between agent turns. The host
// owns the lifecycle: a snapshot exists until the session's memory is
// explicitly cleared.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Snapshot operations
	SaveSnapshot(ctx context.Context, id uuid.UUID, gs *snapshot.GameSnapshot) error
	LoadSnapshot(ctx context.Context, id uuid.UUID) (*snapshot.GameSnapshot, error)
	DeleteSnapshot(ctx context.Context, id uuid.UUID) error
	ListSessions(ctx context.Context) ([]uuid.UUID, error)
}
