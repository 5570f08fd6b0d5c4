package snapshot

import (
	"encoding/json"
	"strconv"
)

// ResponseKind classifies a raw game API payload by shape. The game API
// returns different field subsets depending on phase: a pure status
// fetch, a post-attack result, and a post-run-start result each populate
// a different subset. Classifying up front makes the presence-gated
// merge rules in the reconciler exhaustive instead of duck-typed.
type ResponseKind int

const (
	// ResponseError is a payload with no usable player data, e.g. the
	// body of an error response.
	ResponseError ResponseKind = iota
	// ResponseRunStart carries only the self player block; no enemy has
	// been encountered yet.
	ResponseRunStart
	// ResponseStatus carries self and enemy blocks but no resolved move.
	ResponseStatus
	// ResponseCombat carries self and enemy blocks plus the enemy's last
	// move, i.e. a resolved combat round.
	ResponseCombat
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseRunStart:
		return "run_start"
	case ResponseStatus:
		return "status"
	case ResponseCombat:
		return "combat"
	default:
		return "error"
	}
}

// StatPair is a current/max pair as the game server reports it.
type StatPair struct {
	Current    int `json:"current"`
	CurrentMax int `json:"currentMax"`
}

// GearBlock is one weapon slot as the game server reports it.
type GearBlock struct {
	CurrentATK     int `json:"currentATK"`
	CurrentDEF     int `json:"currentDEF"`
	CurrentCharges int `json:"currentCharges"`
}

// PlayerBlock is one combatant in a run response. players[0] is always
// the session's own character; players[1], when present, is the enemy.
type PlayerBlock struct {
	Health        StatPair  `json:"health"`
	Shield        StatPair  `json:"shield"`
	Rock          GearBlock `json:"rock"`
	Paper         GearBlock `json:"paper"`
	Scissor       GearBlock `json:"scissor"`
	ThisPlayerWin *bool     `json:"thisPlayerWin,omitempty"`
	LastMove      string    `json:"lastMove,omitempty"`
}

// RunBlock is the battle portion of a game response.
type RunBlock struct {
	Players     []PlayerBlock     `json:"players"`
	LootPhase   *bool             `json:"lootPhase,omitempty"`
	LootOptions []json.RawMessage `json:"lootOptions,omitempty"`
}

// EntityBlock carries the dungeon position identifiers.
type EntityBlock struct {
	RoomNum   int `json:"ROOM_NUM_CID"`
	DungeonID int `json:"DUNGEON_ID_CID"`
	EnemyCID  int `json:"ENEMY_CID"`
}

// RawGameResponse is the decoded body of a game API response. All parts
// are optional; the reconciler only touches snapshot fields whose source
// block is present.
type RawGameResponse struct {
	Run         *RunBlock    `json:"run,omitempty"`
	Entity      *EntityBlock `json:"entity,omitempty"`
	ActionToken *FlexToken   `json:"actionToken,omitempty"`
}

// Classify tags the response by the field subset it populates.
func (r *RawGameResponse) Classify() ResponseKind {
	if r == nil || r.Run == nil || len(r.Run.Players) < 1 {
		return ResponseError
	}
	if len(r.Run.Players) < 2 {
		return ResponseRunStart
	}
	if r.Run.Players[1].LastMove != "" {
		return ResponseCombat
	}
	return ResponseStatus
}

// FlexToken decodes an action token that the server sends as either a
// JSON string or a JSON number.
type FlexToken string

func (t *FlexToken) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = FlexToken(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = FlexToken(n.String())
	return nil
}

func (t FlexToken) String() string {
	return string(t)
}

// TokenString normalizes any string/number token value to its string
// form, for envelope-level tokens delivered outside the response body.
func TokenString(v interface{}) string {
	switch tok := v.(type) {
	case nil:
		return ""
	case string:
		return tok
	case json.Number:
		return tok.String()
	case float64:
		return strconv.FormatInt(int64(tok), 10)
	case int64:
		return strconv.FormatInt(tok, 10)
	case int:
		return strconv.Itoa(tok)
	case FlexToken:
		return string(tok)
	default:
		return ""
	}
}
