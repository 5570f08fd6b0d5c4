package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gigaverse-tools/dungeon-agent/pkg/gigaverse"
	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

const (
	msgAttackFailed = "Failed to perform attack action"
	msgRunFailed    = "Failed to start a new dungeon run"

	// postAttackDelay lets the game's client-side animation catch up
	// with server state before the agent takes its next look. It is a
	// fixed pacing delay, not a retry or backoff.
	postAttackDelay = 4 * time.Second
)

// Result is the structured outcome every action resolves to. Actions
// never panic past their own boundary; failures are carried in Error
// and surfaced to the agent transcript through Message.
type Result struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
}

// Actions executes the two mutating dungeon operations against the
// game API and reconciles their responses into the session snapshot.
type Actions struct {
	client gigaverse.GameClient
	logger *slog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewActions creates the action executor for one game client.
func NewActions(client gigaverse.GameClient, logger *slog.Logger) *Actions {
	return &Actions{
		client: client,
		logger: logger,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Attack plays a combat move (rock/paper/scissor) or selects a loot
// option (loot_one/loot_two/loot_three) in the live run. dungeonID is
// 0 for the live dungeon endpoint.
func (a *Actions) Attack(ctx context.Context, gs *snapshot.GameSnapshot, move gigaverse.Move, dungeonID int) Result {
	if err := move.Validate(); err != nil {
		return Result{Success: false, Error: err.Error(), Message: msgAttackFailed}
	}

	token := gigaverse.NextToken(gs.ActionToken, a.now())
	payload := gigaverse.NewMovePayload(move, token, dungeonID)

	resp, err := a.client.PlayMove(ctx, payload)
	if err != nil {
		gs.ActionToken = ""
		a.logger.Error("Attack request failed", "session_id", gs.ID.String(), "move", move, "error", err)
		return Result{Success: false, Error: err.Error(), Message: msgAttackFailed}
	}
	if !resp.Success {
		gs.ActionToken = ""
		a.logger.Warn("Attack rejected by server", "session_id", gs.ID.String(), "move", move, "reason", resp.Message)
		return Result{Success: false, Error: resp.Message, Message: msgAttackFailed}
	}

	snapshot.Reconcile(gs, resp.Data, a.logger)
	if tok := resp.Token(); tok != "" {
		gs.ActionToken = tok
	}

	summary := a.summarizeAttack(gs, move)
	a.logger.Debug("Attack resolved", "session_id", gs.ID.String(), "move", move, "result", gs.LastBattleResult)

	a.sleep(postAttackDelay)
	return Result{Success: true, Result: resp.Data, Message: summary}
}

// StartNewRun begins a fresh dungeon run. The network payload always
// carries dungeonId 1 no matter what the caller asked for, while the
// snapshot records the caller-supplied id. That divergence is
// long-standing observable behavior; keep it (see DESIGN.md).
func (a *Actions) StartNewRun(ctx context.Context, gs *snapshot.GameSnapshot, dungeonID int) Result {
	token := gigaverse.NextToken(gs.ActionToken, a.now())
	payload := gigaverse.NewRunPayload(token, 1)

	resp, err := a.client.StartRun(ctx, payload)
	if err != nil {
		gs.ActionToken = ""
		a.logger.Error("Run start request failed", "session_id", gs.ID.String(), "error", err)
		return Result{Success: false, Error: err.Error(), Message: msgRunFailed}
	}
	if !resp.Success {
		gs.ActionToken = ""
		a.logger.Warn("Run start rejected by server", "session_id", gs.ID.String(), "reason", resp.Message)
		return Result{Success: false, Error: resp.Message, Message: msgRunFailed}
	}

	gs.ClearRunState(dungeonID)
	snapshot.Reconcile(gs, resp.Data, a.logger)
	if tok := resp.Token(); tok != "" {
		gs.ActionToken = tok
	}

	a.logger.Info("Started new dungeon run", "session_id", gs.ID.String(), "dungeon", gs.Dungeon)
	return Result{
		Success: true,
		Result:  resp.Data,
		Message: fmt.Sprintf("Started a new dungeon run in dungeon %d. Entering room 1.", gs.Dungeon),
	}
}

var moveCaser = cases.Title(language.English)

func moveLabel(move gigaverse.Move) string {
	return moveCaser.String(strings.ReplaceAll(string(move), "_", " "))
}

// summarizeAttack produces the transcript line the LLM sees after a
// successful action, built from the freshly reconciled snapshot.
func (a *Actions) summarizeAttack(gs *snapshot.GameSnapshot, move gigaverse.Move) string {
	if move.IsLoot() {
		return fmt.Sprintf("Selected %s. Entering room %d.", moveLabel(move), gs.Room)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Played %s.", moveLabel(move))
	if gs.LastBattleResult != "" {
		fmt.Fprintf(&sb, " Round result: %s (enemy played %s).", gs.LastBattleResult, gs.LastEnemyMove)
	}
	fmt.Fprintf(&sb, " You have %d/%d HP and %d/%d shield; the enemy has %d/%d HP and %d/%d shield.",
		gs.Player.Health, gs.Player.MaxHealth, gs.Player.Shield, gs.Player.MaxShield,
		gs.Enemy.Health, gs.Enemy.MaxHealth, gs.Enemy.Shield, gs.Enemy.MaxShield)
	if gs.LootPhase {
		fmt.Fprintf(&sb, " The enemy is defeated: choose one of %d loot options.", gs.LootCount)
	}
	if gs.IsDead() {
		sb.WriteString(" You have died. Start a new run to continue.")
	}
	return sb.String()
}
