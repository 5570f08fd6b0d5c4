package snapshot

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Reconciler folds one raw game API response into a session snapshot.
// The merge is field-presence gated: each block of the snapshot (player
// stats, enemy stats, loot, dungeon position, action token) is replaced
// atomically when its source block is present in the response, and left
// untouched otherwise. Partial responses therefore never mix fresh and
// stale values inside one block.
//
// Callers must not pass failure payloads here; a response whose own
// success flag is false is handled at the action-handler boundary.
type Reconciler struct {
	snap   *GameSnapshot
	raw    *RawGameResponse
	logger *slog.Logger
}

// NewReconciler creates a reconciler for one snapshot/response pair.
func NewReconciler(snap *GameSnapshot, raw *RawGameResponse, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		snap:   snap,
		raw:    raw,
		logger: logger,
	}
}

// Reconcile is the convenience form used by loaders and handlers.
func Reconcile(snap *GameSnapshot, raw *RawGameResponse, logger *slog.Logger) ResponseKind {
	return NewReconciler(snap, raw, logger).Apply()
}

// Apply merges the response into the snapshot in place and returns the
// shape the response was classified as.
func (r *Reconciler) Apply() ResponseKind {
	kind := r.raw.Classify()

	switch kind {
	case ResponseError:
		// No usable player data. Battle, loot and position fields stay
		// as-is; only a token delivered with the payload is adopted.
		if r.logger != nil {
			r.logger.Debug("Response has no player data, skipping merge",
				"session_id", r.snap.ID.String())
		}
	case ResponseRunStart:
		r.applyPlayer(r.raw.Run.Players[0])
	case ResponseStatus, ResponseCombat:
		r.applyPlayer(r.raw.Run.Players[0])
		r.applyEnemy(r.raw.Run.Players[0], r.raw.Run.Players[1])
	}

	if kind != ResponseError {
		r.applyLoot(r.raw.Run)
		if r.raw.Entity != nil {
			r.applyEntity(r.raw.Entity)
		}
	}
	if r.raw != nil && r.raw.ActionToken != nil {
		r.snap.ActionToken = r.raw.ActionToken.String()
	}

	r.snap.UpdatedAt = time.Now()
	return kind
}

// applyPlayer replaces the whole player block. Health, shield and all
// three gear slots come from the same response, never mixed with values
// from an earlier one.
func (r *Reconciler) applyPlayer(self PlayerBlock) {
	r.snap.Player = Vitals{
		Health:    self.Health.Current,
		MaxHealth: self.Health.CurrentMax,
		Shield:    self.Shield.Current,
		MaxShield: self.Shield.CurrentMax,
	}
	r.snap.Rock = gearFromBlock(self.Rock)
	r.snap.Paper = gearFromBlock(self.Paper)
	r.snap.Scissor = gearFromBlock(self.Scissor)
}

// applyEnemy replaces the enemy vitals block and, when the round is
// resolved, records the enemy's move and derives the battle result.
func (r *Reconciler) applyEnemy(self, enemy PlayerBlock) {
	r.snap.Enemy = Vitals{
		Health:    enemy.Health.Current,
		MaxHealth: enemy.Health.CurrentMax,
		Shield:    enemy.Shield.Current,
		MaxShield: enemy.Shield.CurrentMax,
	}

	if enemy.LastMove == "" {
		return
	}
	r.snap.LastEnemyMove = enemy.LastMove

	switch {
	case self.ThisPlayerWin != nil && *self.ThisPlayerWin:
		r.snap.LastBattleResult = BattleResultWin
	case enemy.ThisPlayerWin != nil && *enemy.ThisPlayerWin:
		r.snap.LastBattleResult = BattleResultLose
	default:
		r.snap.LastBattleResult = BattleResultDraw
	}
}

// applyLoot sets the loot phase and, when options are delivered, copies
// them verbatim. Absence of lootOptions means "phase unchanged", not
// "no loot", so previous options are kept. A phase flipped back to
// false invalidates any stored options.
func (r *Reconciler) applyLoot(run *RunBlock) {
	phase := run.LootPhase != nil && *run.LootPhase
	r.snap.LootPhase = phase

	if len(run.LootOptions) > 0 {
		r.snap.LootOptions = run.LootOptions
		r.snap.LootCount = len(run.LootOptions)
	}
	if !phase {
		r.snap.LootOptions = make([]json.RawMessage, 0)
		r.snap.LootCount = 0
	}
}

// applyEntity replaces the dungeon position identifiers as one block.
func (r *Reconciler) applyEntity(entity *EntityBlock) {
	r.snap.Room = entity.RoomNum
	r.snap.Dungeon = entity.DungeonID
	r.snap.EnemyID = entity.EnemyCID
}

func gearFromBlock(g GearBlock) GearSlot {
	return GearSlot{
		Attack:  g.CurrentATK,
		Defense: g.CurrentDEF,
		Charges: g.CurrentCharges,
	}
}
