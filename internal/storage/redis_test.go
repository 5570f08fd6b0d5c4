package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRedisStorage(mr.Addr(), logger), mr
}

func TestRedisStorage_SaveAndLoadSnapshot(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	gs := snapshot.NewGameSnapshot()
	gs.ActionToken = "1700000000000"
	gs.Room = 4
	gs.Player = snapshot.Vitals{Health: 64, MaxHealth: 100, Shield: 8, MaxShield: 20}
	gs.AppendTranscript("assistant", "Attacking with rock.")

	if err := store.SaveSnapshot(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Failed to load snapshot: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil snapshot")
	}
	if loaded.ID != gs.ID {
		t.Errorf("Expected ID %v, got %v", gs.ID, loaded.ID)
	}
	if loaded.Room != 4 || loaded.ActionToken != "1700000000000" {
		t.Errorf("Expected room 4 token kept, got %d/%q", loaded.Room, loaded.ActionToken)
	}
	if loaded.Player.Health != 64 {
		t.Errorf("Expected player health 64, got %d", loaded.Player.Health)
	}
	if len(loaded.Transcript) != 1 {
		t.Errorf("Expected 1 transcript entry, got %d", len(loaded.Transcript))
	}
}

func TestRedisStorage_LoadNonExistent(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	loaded, err := store.LoadSnapshot(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing snapshot, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil snapshot for unknown session")
	}
}

func TestRedisStorage_DeleteSnapshot(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	gs := snapshot.NewGameSnapshot()
	if err := store.SaveSnapshot(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	if err := store.DeleteSnapshot(ctx, gs.ID); err != nil {
		t.Fatalf("Failed to delete snapshot: %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Failed to load snapshot: %v", err)
	}
	if loaded != nil {
		t.Error("Expected snapshot gone after delete")
	}
}

func TestRedisStorage_ListSessions(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	first := snapshot.NewGameSnapshot()
	second := snapshot.NewGameSnapshot()
	for _, gs := range []*snapshot.GameSnapshot{first, second} {
		if err := store.SaveSnapshot(ctx, gs.ID, gs); err != nil {
			t.Fatalf("Failed to save snapshot: %v", err)
		}
	}

	ids, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(ids))
	}
}
