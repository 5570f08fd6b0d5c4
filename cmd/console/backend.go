package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gigaverse-tools/dungeon-agent/internal/agent"
	"github.com/gigaverse-tools/dungeon-agent/internal/storage"
	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
	"github.com/gigaverse-tools/dungeon-agent/pkg/gigaverse"
	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

const turnTimeout = 2 * time.Minute

// Backend bridges the UI to the agent runtime for one session. Agent
// turns go through the runner; manual moves bypass the LLM and hit
// the action layer directly.
type Backend struct {
	runner    *agent.Runner
	actions   *agent.Actions
	loader    *agent.Loader
	store     storage.Storage
	sessionID uuid.UUID
}

func NewBackend(runner *agent.Runner, actions *agent.Actions, loader *agent.Loader, store storage.Storage, sessionID uuid.UUID) *Backend {
	return &Backend{
		runner:    runner,
		actions:   actions,
		loader:    loader,
		store:     store,
		sessionID: sessionID,
	}
}

func (b *Backend) SessionID() uuid.UUID {
	return b.sessionID
}

// StepAgent runs one autonomous agent turn.
func (b *Backend) StepAgent(message string) (*chat.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()
	return b.runner.ProcessTurn(ctx, chat.ChatRequest{
		SessionID: b.sessionID,
		Message:   message,
	})
}

// Snapshot returns the current session snapshot, or a fresh one when
// the session has not persisted anything yet.
func (b *Backend) Snapshot() (*snapshot.GameSnapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gs, err := b.store.LoadSnapshot(ctx, b.sessionID)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		gs = snapshot.NewGameSnapshot()
		gs.ID = b.sessionID
	}
	return gs, nil
}

// PlayManual executes a single move without consulting the LLM.
func (b *Backend) PlayManual(move gigaverse.Move) (*chat.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	gs, err := b.Snapshot()
	if err != nil {
		return nil, err
	}
	b.loader.Refresh(ctx, gs)

	res := b.actions.Attack(ctx, gs, move, 0)
	gs.AppendTranscript(chat.ChatRoleSystem, res.Message)
	if err := b.store.SaveSnapshot(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return &chat.ChatResponse{
		SessionID:  gs.ID,
		Message:    res.Message,
		Transcript: gs.Transcript,
	}, nil
}

// StartRun begins a new dungeon run without consulting the LLM.
func (b *Backend) StartRun(dungeonID int) (*chat.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	gs, err := b.Snapshot()
	if err != nil {
		return nil, err
	}
	b.loader.Refresh(ctx, gs)

	res := b.actions.StartNewRun(ctx, gs, dungeonID)
	gs.AppendTranscript(chat.ChatRoleSystem, res.Message)
	if err := b.store.SaveSnapshot(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return &chat.ChatResponse{
		SessionID:  gs.ID,
		Message:    res.Message,
		Transcript: gs.Transcript,
	}, nil
}
