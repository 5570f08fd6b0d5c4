package gigaverse

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/jwebster45206/d20"

	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

// SimClient is an in-memory GameClient for offline play and tests. It
// reproduces the live API's response shapes (run-start, status, combat,
// loot) so the reconciler sees the same payload classes either way.
// Combatants are d20 actors; enemy move selection comes from a seeded
// RNG so sessions replay deterministically.
type SimClient struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time

	player *simActor
	enemy  *simActor

	dungeon   int
	room      int
	enemyID   int
	lootPhase bool
	loot      []json.RawMessage
	token     string
	runActive bool
}

// Ensure SimClient implements GameClient interface
var _ GameClient = (*SimClient)(nil)

type simActor struct {
	actor     *d20.Actor
	shield    int
	maxShield int
	gear      map[Move]snapshot.GearBlock
	defeated  bool
	lastMove  Move
	wonRound  bool
}

// NewSimClient creates a simulated dungeon with a deterministic RNG.
func NewSimClient(seed int64) (*SimClient, error) {
	player, err := newSimActor("adventurer", 100, 20, 12)
	if err != nil {
		return nil, err
	}
	return &SimClient{
		rng:    rand.New(rand.NewSource(seed)),
		now:    time.Now,
		player: player,
	}, nil
}

const maxCharges = 3

func newSimActor(id string, hp, shield, atk int) (*simActor, error) {
	actor, err := d20.NewActor(id).
		WithHP(hp).
		WithAC(10).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}
	return &simActor{
		actor:     actor,
		shield:    shield,
		maxShield: shield,
		gear: map[Move]snapshot.GearBlock{
			MoveRock:    {CurrentATK: atk, CurrentDEF: 2, CurrentCharges: maxCharges},
			MovePaper:   {CurrentATK: atk - 1, CurrentDEF: 3, CurrentCharges: maxCharges},
			MoveScissor: {CurrentATK: atk + 1, CurrentDEF: 1, CurrentCharges: maxCharges},
		},
	}, nil
}

func (a *simActor) hp() int {
	if a.defeated {
		return 0
	}
	return a.actor.HP()
}

// takeDamage burns shield first, then health. The d20 actor does not
// represent zero HP, so defeat is tracked alongside it.
func (a *simActor) takeDamage(n int) {
	if n <= 0 {
		return
	}
	if a.shield > 0 {
		absorbed := min(a.shield, n)
		a.shield -= absorbed
		n -= absorbed
	}
	if n <= 0 {
		return
	}
	hp := a.hp() - n
	if hp <= 0 {
		a.defeated = true
		return
	}
	_ = a.actor.SetHP(hp)
}

func (a *simActor) regenCharges(used Move) {
	for _, m := range []Move{MoveRock, MovePaper, MoveScissor} {
		if m == used {
			continue
		}
		slot := a.gear[m]
		if slot.CurrentCharges < maxCharges {
			slot.CurrentCharges++
			a.gear[m] = slot
		}
	}
}

func (a *simActor) block() snapshot.PlayerBlock {
	pb := snapshot.PlayerBlock{
		Health:  snapshot.StatPair{Current: a.hp(), CurrentMax: a.actor.MaxHP()},
		Shield:  snapshot.StatPair{Current: a.shield, CurrentMax: a.maxShield},
		Rock:    a.gear[MoveRock],
		Paper:   a.gear[MovePaper],
		Scissor: a.gear[MoveScissor],
	}
	if a.lastMove != "" {
		pb.LastMove = string(a.lastMove)
		won := a.wonRound
		pb.ThisPlayerWin = &won
	}
	return pb
}

func (c *SimClient) GetEnergy(ctx context.Context, address string) (*EnergyState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &EnergyState{
		StoredUnits:   2 * energyUnitScale,
		LastClaimUnix: c.now().Unix(),
	}, nil
}

func (c *SimClient) FetchDungeonState(ctx context.Context) (*APIResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.runActive {
		return &APIResponse{Success: true}, nil
	}
	return c.response(false), nil
}

func (c *SimClient) StartRun(ctx context.Context, payload ActionPayload) (*APIResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	player, err := newSimActor("adventurer", 100, 20, 12)
	if err != nil {
		return nil, err
	}
	c.player = player
	c.dungeon = payload.DungeonID
	c.room = 1
	c.enemy = nil
	c.enemyID = 0
	c.lootPhase = false
	c.loot = nil
	c.runActive = true
	c.issueToken()

	// Run-start responses carry only the self block; the first enemy
	// appears on the next status fetch.
	resp := c.response(true)
	if err := c.spawnEnemy(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *SimClient) PlayMove(ctx context.Context, payload ActionPayload) (*APIResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := payload.Action.Validate(); err != nil {
		return &APIResponse{Success: false, Message: err.Error()}, nil
	}
	if !c.runActive {
		return &APIResponse{Success: false, Message: "no active run"}, nil
	}
	if c.token != "" && payload.ActionToken != "" && payload.ActionToken != c.token {
		return &APIResponse{Success: false, Message: "stale action token"}, nil
	}

	if payload.Action.IsLoot() {
		return c.playLoot(payload.Action)
	}
	return c.playCombat(payload.Action)
}

func (c *SimClient) playCombat(move Move) (*APIResponse, error) {
	if c.lootPhase {
		return &APIResponse{Success: false, Message: "loot selection required"}, nil
	}
	if c.enemy == nil {
		return &APIResponse{Success: false, Message: "no enemy in room"}, nil
	}
	slot := c.player.gear[move]
	if slot.CurrentCharges <= 0 {
		return &APIResponse{Success: false, Message: "no charges remaining for " + string(move)}, nil
	}

	enemyMove := c.pickEnemyMove()
	c.player.lastMove = move
	c.enemy.lastMove = enemyMove
	c.player.wonRound = beats(move, enemyMove)
	c.enemy.wonRound = beats(enemyMove, move)

	slot.CurrentCharges--
	c.player.gear[move] = slot

	playerGear := c.player.gear[move]
	enemyGear := c.enemy.gear[enemyMove]
	switch {
	case c.player.wonRound:
		c.enemy.takeDamage(max(1, playerGear.CurrentATK-enemyGear.CurrentDEF))
	case c.enemy.wonRound:
		c.player.takeDamage(max(1, enemyGear.CurrentATK-playerGear.CurrentDEF))
	default:
		// Draw: both land chip damage through defense.
		c.enemy.takeDamage(1)
		c.player.takeDamage(1)
	}

	// Unused slots regain a charge each round, capped at full.
	c.player.regenCharges(move)
	c.enemy.regenCharges(enemyMove)

	if c.enemy.defeated {
		c.lootPhase = true
		c.loot = c.rollLoot()
	}
	if c.player.defeated {
		c.runActive = false
	}

	c.issueToken()
	return c.response(false), nil
}

func (c *SimClient) playLoot(move Move) (*APIResponse, error) {
	if !c.lootPhase {
		return &APIResponse{Success: false, Message: "not in loot phase"}, nil
	}
	index := map[Move]int{MoveLootOne: 0, MoveLootTwo: 1, MoveLootThree: 2}[move]
	if index >= len(c.loot) {
		return &APIResponse{Success: false, Message: "loot option not offered"}, nil
	}

	c.lootPhase = false
	c.loot = nil
	c.room++
	c.player.lastMove = ""
	c.enemy = nil
	if err := c.spawnEnemy(); err != nil {
		return nil, err
	}

	c.issueToken()
	return c.response(false), nil
}

// response builds the live-API-shaped payload for the current state.
// runStart limits the players array to the self block.
func (c *SimClient) response(runStart bool) *APIResponse {
	players := []snapshot.PlayerBlock{c.player.block()}
	if !runStart && c.enemy != nil {
		players = append(players, c.enemy.block())
	}

	lootPhase := c.lootPhase
	run := &snapshot.RunBlock{
		Players:   players,
		LootPhase: &lootPhase,
	}
	if len(c.loot) > 0 {
		run.LootOptions = c.loot
	}

	tok := snapshot.FlexToken(c.token)
	return &APIResponse{
		Success: true,
		Data: &snapshot.RawGameResponse{
			Run: run,
			Entity: &snapshot.EntityBlock{
				RoomNum:   c.room,
				DungeonID: c.dungeon,
				EnemyCID:  c.enemyID,
			},
		},
		ActionToken: &tok,
	}
}

func (c *SimClient) spawnEnemy() error {
	enemy, err := newSimActor("enemy-"+strconv.Itoa(c.room), 12+4*c.room, 2*c.room, 3+c.room)
	if err != nil {
		return err
	}
	c.enemy = enemy
	c.enemyID = 100 + c.room
	return nil
}

func (c *SimClient) pickEnemyMove() Move {
	moves := []Move{MoveRock, MovePaper, MoveScissor}
	return moves[c.rng.Intn(len(moves))]
}

func (c *SimClient) rollLoot() []json.RawMessage {
	boons := []string{"sharpen", "fortify", "recharge", "mend", "ward"}
	out := make([]json.RawMessage, 0, 3)
	for i := 0; i < 3; i++ {
		boon := boons[c.rng.Intn(len(boons))]
		option := fmt.Sprintf(`{"boonTypeString":%q,"selectedVal1":%d,"selectedVal2":%d}`,
			boon, 1+c.rng.Intn(4), c.rng.Intn(3))
		out = append(out, json.RawMessage(option))
	}
	return out
}

func (c *SimClient) issueToken() {
	c.token = strconv.FormatInt(c.now().UnixMilli(), 10)
}

// beats reports whether a defeats b at rock-paper-scissors.
func beats(a, b Move) bool {
	switch a {
	case MoveRock:
		return b == MoveScissor
	case MovePaper:
		return b == MoveRock
	case MoveScissor:
		return b == MovePaper
	default:
		return false
	}
}
