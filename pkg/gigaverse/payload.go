package gigaverse

import (
	"fmt"

	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

// Move is one of the six dungeon actions a session can play.
type Move string

const (
	MoveRock    Move = "rock"
	MovePaper   Move = "paper"
	MoveScissor Move = "scissor"

	MoveLootOne   Move = "loot_one"
	MoveLootTwo   Move = "loot_two"
	MoveLootThree Move = "loot_three"

	moveStartRun Move = "start_run"
)

// IsLoot reports whether the move selects a loot option rather than
// playing a combat round.
func (m Move) IsLoot() bool {
	return m == MoveLootOne || m == MoveLootTwo || m == MoveLootThree
}

// Validate rejects anything outside the six playable moves.
func (m Move) Validate() error {
	switch m {
	case MoveRock, MovePaper, MoveScissor, MoveLootOne, MoveLootTwo, MoveLootThree:
		return nil
	default:
		return fmt.Errorf("invalid move %q", m)
	}
}

// ActionPayload is the request body for the dungeon action endpoint.
// Consumables, ItemID and Index are reserved by the server for features
// this client does not use; they are always sent empty/zeroed.
type ActionPayload struct {
	Action      Move     `json:"action"`
	ActionToken string   `json:"actionToken"`
	DungeonID   int      `json:"dungeonId"`
	Consumables []string `json:"consumables"`
	ItemID      int      `json:"itemId"`
	Index       int      `json:"index"`
}

// NewMovePayload builds the payload for a combat or loot move.
func NewMovePayload(move Move, actionToken string, dungeonID int) ActionPayload {
	return ActionPayload{
		Action:      move,
		ActionToken: actionToken,
		DungeonID:   dungeonID,
		Consumables: make([]string, 0),
	}
}

// NewRunPayload builds the payload that starts a fresh dungeon run.
func NewRunPayload(actionToken string, dungeonID int) ActionPayload {
	return ActionPayload{
		Action:      moveStartRun,
		ActionToken: actionToken,
		DungeonID:   dungeonID,
		Consumables: make([]string, 0),
	}
}

// APIResponse is the envelope every dungeon endpoint returns.
type APIResponse struct {
	Success     bool                      `json:"success"`
	Data        *snapshot.RawGameResponse `json:"data,omitempty"`
	ActionToken *snapshot.FlexToken       `json:"actionToken,omitempty"`
	Message     string                    `json:"message,omitempty"`
}

// Token returns the envelope-level action token, or "" when absent.
func (r *APIResponse) Token() string {
	if r == nil || r.ActionToken == nil {
		return ""
	}
	return r.ActionToken.String()
}

// EnergyState is the server's fixed-point energy accounting for one
// wallet: stored units plus the unix-seconds timestamp of the last
// claim, from which current energy is derived client-side.
type EnergyState struct {
	StoredUnits   float64 `json:"energyValue"`
	LastClaimUnix int64   `json:"lastClaimTime"`
}
