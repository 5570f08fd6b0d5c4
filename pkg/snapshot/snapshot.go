package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
)

// Battle outcomes for the most recently resolved combat round.
const (
	BattleResultWin  = "win"
	BattleResultLose = "lose"
	BattleResultDraw = "draw"
)

// Vitals is a health/shield block for one combatant.
// Current values never exceed their maximums when both are known.
type Vitals struct {
	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`
	Shield    int `json:"shield"`
	MaxShield int `json:"max_shield"`
}

// GearSlot is one of the three weapon slots (rock, paper, scissor).
// Charges is the number of remaining uses this battle.
type GearSlot struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Charges int `json:"charges"`
}

// GameSnapshot is the canonical in-memory record of one dungeon session.
// It is created zero-valued when a session is opened, mutated on every
// loader tick and action call, and destroyed only when the session's
// persisted memory is explicitly cleared.
//
// Fields are kept as proper numeric/bool types; string coercion for
// prompt-template interpolation happens only in TemplateVars.
type GameSnapshot struct {
	ID uuid.UUID `json:"id"` // Unique ID per session

	// ActionToken is the opaque server-issued nonce echoed on the next
	// move. Empty string means no active token. It is only ever set from
	// a server response or cleared; never fabricated client-side.
	ActionToken string `json:"action_token"`

	// Energy is the current usable energy, regenerating continuously.
	Energy float64 `json:"energy"`

	Dungeon int `json:"dungeon"`
	Room    int `json:"room"`
	EnemyID int `json:"enemy_id"`

	Player  Vitals   `json:"player"`
	Rock    GearSlot `json:"rock"`
	Paper   GearSlot `json:"paper"`
	Scissor GearSlot `json:"scissor"`

	// Enemy vitals are zeroed when no enemy is present, e.g. after
	// starting a fresh run before the first encounter.
	Enemy Vitals `json:"enemy"`

	// LootPhase is true between battles, when the session must choose
	// loot rather than attack.
	LootPhase bool `json:"loot_phase"`

	// LootOptions holds raw loot-choice payloads passed through
	// unchanged for the agent to reason about.
	LootOptions []json.RawMessage `json:"loot_options,omitempty"`
	LootCount   int               `json:"loot_count"`

	LastBattleResult string `json:"last_battle_result,omitempty"` // "win", "lose", "draw" or ""
	LastEnemyMove    string `json:"last_enemy_move,omitempty"`

	// Transcript is the session's conversation history with the agent.
	Transcript []chat.ChatMessage `json:"transcript,omitempty"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewGameSnapshot creates an all-zero snapshot for a freshly opened session.
func NewGameSnapshot() *GameSnapshot {
	return &GameSnapshot{
		ID:          uuid.New(),
		LootOptions: make([]json.RawMessage, 0),
		Transcript:  make([]chat.ChatMessage, 0),
	}
}

// AppendTranscript adds a message to the session transcript.
func (gs *GameSnapshot) AppendTranscript(role, content string) {
	gs.Transcript = append(gs.Transcript, chat.ChatMessage{Role: role, Content: content})
}

// InCombat reports whether the session has a live enemy to fight.
func (gs *GameSnapshot) InCombat() bool {
	return !gs.LootPhase && gs.Enemy.Health > 0
}

// IsDead reports whether the player's health has reached zero mid-run.
func (gs *GameSnapshot) IsDead() bool {
	return gs.Room > 0 && gs.Player.Health == 0
}

// Validate checks the current<=max invariants on both vitals blocks.
func (gs *GameSnapshot) Validate() error {
	if err := validateVitals("player", gs.Player); err != nil {
		return err
	}
	return validateVitals("enemy", gs.Enemy)
}

func validateVitals(who string, v Vitals) error {
	if v.Health > v.MaxHealth {
		return fmt.Errorf("%s health %d exceeds max %d", who, v.Health, v.MaxHealth)
	}
	if v.Shield > v.MaxShield {
		return fmt.Errorf("%s shield %d exceeds max %d", who, v.Shield, v.MaxShield)
	}
	return nil
}

// ClearRunState resets everything tied to the current run, keeping the
// action token and energy. Used when a new run is started: room 1, no
// loot, no battle history, enemy zeroed.
func (gs *GameSnapshot) ClearRunState(dungeonID int) {
	gs.Dungeon = dungeonID
	gs.Room = 1
	gs.EnemyID = 0
	gs.Enemy = Vitals{}
	gs.LootPhase = false
	gs.LootOptions = make([]json.RawMessage, 0)
	gs.LootCount = 0
	gs.LastBattleResult = ""
	gs.LastEnemyMove = ""
}

// DeepCopy returns an independent copy of the snapshot.
func (gs *GameSnapshot) DeepCopy() (*GameSnapshot, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	var out GameSnapshot
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &out, nil
}

// TemplateVars renders the snapshot as the flat string map consumed by
// {{fieldName}} placeholders in prompt templates. This is the only place
// where numeric and boolean state is coerced to strings.
func (gs *GameSnapshot) TemplateVars() map[string]string {
	lootJSON := "[]"
	if len(gs.LootOptions) > 0 {
		if data, err := json.Marshal(gs.LootOptions); err == nil {
			lootJSON = string(data)
		}
	}
	return map[string]string{
		"actionToken":      gs.ActionToken,
		"energy":           strconv.FormatFloat(gs.Energy, 'f', -1, 64),
		"currentDungeon":   strconv.Itoa(gs.Dungeon),
		"currentRoom":      strconv.Itoa(gs.Room),
		"currentEnemy":     strconv.Itoa(gs.EnemyID),
		"currentLoot":      strconv.Itoa(gs.LootCount),
		"currentHP":        strconv.Itoa(gs.Player.Health),
		"playerHealth":     strconv.Itoa(gs.Player.Health),
		"playerMaxHealth":  strconv.Itoa(gs.Player.MaxHealth),
		"playerShield":     strconv.Itoa(gs.Player.Shield),
		"playerMaxShield":  strconv.Itoa(gs.Player.MaxShield),
		"rockAttack":       strconv.Itoa(gs.Rock.Attack),
		"rockDefense":      strconv.Itoa(gs.Rock.Defense),
		"rockCharges":      strconv.Itoa(gs.Rock.Charges),
		"paperAttack":      strconv.Itoa(gs.Paper.Attack),
		"paperDefense":     strconv.Itoa(gs.Paper.Defense),
		"paperCharges":     strconv.Itoa(gs.Paper.Charges),
		"scissorAttack":    strconv.Itoa(gs.Scissor.Attack),
		"scissorDefense":   strconv.Itoa(gs.Scissor.Defense),
		"scissorCharges":   strconv.Itoa(gs.Scissor.Charges),
		"enemyHealth":      strconv.Itoa(gs.Enemy.Health),
		"enemyMaxHealth":   strconv.Itoa(gs.Enemy.MaxHealth),
		"enemyShield":      strconv.Itoa(gs.Enemy.Shield),
		"enemyMaxShield":   strconv.Itoa(gs.Enemy.MaxShield),
		"lootPhase":        strconv.FormatBool(gs.LootPhase),
		"lootOptions":      lootJSON,
		"lastBattleResult": gs.LastBattleResult,
		"lastEnemyMove":    gs.LastEnemyMove,
	}
}
