package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gigaverse-tools/dungeon-agent/internal/services"
	"github.com/gigaverse-tools/dungeon-agent/internal/storage"
	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
	"github.com/gigaverse-tools/dungeon-agent/pkg/gigaverse"
	"github.com/gigaverse-tools/dungeon-agent/pkg/prompts"
	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

const PromptHistoryLimit = 10

const (
	ActionAttack      = "attack"
	ActionStartNewRun = "start_run"
)

// Decision is the structured action the LLM returns for one turn.
type Decision struct {
	Action    string `json:"action"`
	Move      string `json:"move,omitempty"`
	DungeonID int    `json:"dungeonId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Runner drives one agent turn end to end: load the session
// snapshot, refresh it from the game API, ask the LLM for a decision,
// execute it, and persist the updated snapshot.
type Runner struct {
	storage    storage.Storage
	llmService services.LLMService
	actions    *Actions
	loader     *Loader
	logger     *slog.Logger
}

// NewRunner creates a new turn runner.
func NewRunner(
	storage storage.Storage,
	llmService services.LLMService,
	actions *Actions,
	loader *Loader,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		storage:    storage,
		llmService: llmService,
		actions:    actions,
		loader:     loader,
		logger:     logger,
	}
}

// ProcessTurn runs one full agent turn for the session in req. A
// missing session starts fresh with an empty snapshot.
func (r *Runner) ProcessTurn(ctx context.Context, req chat.ChatRequest) (*chat.ChatResponse, error) {
	gs, err := r.storage.LoadSnapshot(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if gs == nil {
		gs = snapshot.NewGameSnapshot()
		gs.ID = req.SessionID
		r.logger.Info("Starting new session", "session_id", gs.ID.String())
	}

	r.loader.Refresh(ctx, gs)

	messages, err := prompts.New().
		WithSnapshot(gs).
		WithTranscript(gs.Transcript).
		WithUserMessage(req.Message).
		WithHistoryLimit(PromptHistoryLimit).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build chat messages: %w", err)
	}

	llmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	r.logger.Debug("Requesting decision from LLM", "session_id", gs.ID.String(), "messages", len(messages))
	raw, err := r.llmService.Decide(llmCtx, messages)
	if err != nil {
		return nil, fmt.Errorf("LLM decision failed: %w", err)
	}

	decision, err := ParseDecision(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM decision: %w", err)
	}

	result := r.dispatch(ctx, gs, decision)

	if req.Message != "" {
		gs.AppendTranscript(chat.ChatRoleUser, req.Message)
	}
	if decision.Reason != "" {
		gs.AppendTranscript(chat.ChatRoleAgent, decision.Reason)
	}
	gs.AppendTranscript(chat.ChatRoleSystem, result.Message)

	if err := r.storage.SaveSnapshot(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return &chat.ChatResponse{
		SessionID:  gs.ID,
		Message:    result.Message,
		Transcript: gs.Transcript,
	}, nil
}

func (r *Runner) dispatch(ctx context.Context, gs *snapshot.GameSnapshot, d Decision) Result {
	switch d.Action {
	case ActionAttack:
		return r.actions.Attack(ctx, gs, gigaverse.Move(d.Move), 0)
	case ActionStartNewRun:
		dungeonID := d.DungeonID
		if dungeonID == 0 {
			dungeonID = 1
		}
		return r.actions.StartNewRun(ctx, gs, dungeonID)
	default:
		r.logger.Warn("Unknown action from LLM", "session_id", gs.ID.String(), "action", d.Action)
		return Result{
			Success: false,
			Error:   fmt.Sprintf("unknown action: %s", d.Action),
			Message: fmt.Sprintf("The action %q is not available. Use %s or %s.", d.Action, ActionAttack, ActionStartNewRun),
		}
	}
}

// ParseDecision extracts a Decision from the raw LLM reply. Models
// sometimes wrap JSON in markdown fences even when asked not to, so
// those are stripped first.
func ParseDecision(raw string) (Decision, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	var d Decision
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return Decision{}, fmt.Errorf("invalid decision JSON: %w", err)
	}
	if d.Action == "" {
		return Decision{}, fmt.Errorf("decision is missing an action")
	}
	return d, nil
}
