package snapshot

import (
	"encoding/json"
	"testing"
)

func TestGameSnapshot_TemplateVars(t *testing.T) {
	gs := NewGameSnapshot()
	gs.Energy = 1.25
	gs.Dungeon = 1
	gs.Room = 3
	gs.EnemyID = 77
	gs.Player = Vitals{Health: 64, MaxHealth: 100, Shield: 8, MaxShield: 20}
	gs.Rock = GearSlot{Attack: 4, Defense: 2, Charges: 3}
	gs.LootPhase = true
	gs.LootOptions = []json.RawMessage{json.RawMessage(`{"boon":"axe"}`)}
	gs.LootCount = 1
	gs.LastBattleResult = BattleResultWin
	gs.LastEnemyMove = "paper"

	vars := gs.TemplateVars()

	expected := map[string]string{
		"energy":           "1.25",
		"currentDungeon":   "1",
		"currentRoom":      "3",
		"currentEnemy":     "77",
		"currentLoot":      "1",
		"currentHP":        "64",
		"playerHealth":     "64",
		"playerMaxHealth":  "100",
		"playerShield":     "8",
		"playerMaxShield":  "20",
		"rockAttack":       "4",
		"rockDefense":      "2",
		"rockCharges":      "3",
		"enemyHealth":      "0",
		"lootPhase":        "true",
		"lootOptions":      `[{"boon":"axe"}]`,
		"lastBattleResult": "win",
		"lastEnemyMove":    "paper",
	}
	for key, want := range expected {
		if got := vars[key]; got != want {
			t.Errorf("Expected %s=%q, got %q", key, want, got)
		}
	}
}

func TestGameSnapshot_ClearRunState(t *testing.T) {
	gs := NewGameSnapshot()
	gs.ActionToken = "1700000000000"
	gs.Energy = 2.5
	gs.Room = 9
	gs.Enemy = Vitals{Health: 30, MaxHealth: 60, Shield: 5, MaxShield: 10}
	gs.EnemyID = 12
	gs.LootPhase = true
	gs.LootOptions = []json.RawMessage{json.RawMessage(`{}`)}
	gs.LootCount = 1
	gs.LastBattleResult = BattleResultLose
	gs.LastEnemyMove = "rock"

	gs.ClearRunState(7)

	if gs.Dungeon != 7 || gs.Room != 1 {
		t.Errorf("Expected dungeon 7 room 1, got %d/%d", gs.Dungeon, gs.Room)
	}
	if gs.Enemy != (Vitals{}) || gs.EnemyID != 0 {
		t.Errorf("Expected enemy zeroed, got %+v id=%d", gs.Enemy, gs.EnemyID)
	}
	if gs.LootPhase || len(gs.LootOptions) != 0 || gs.LootCount != 0 {
		t.Error("Expected loot state cleared")
	}
	if gs.LastBattleResult != "" || gs.LastEnemyMove != "" {
		t.Error("Expected battle history cleared")
	}

	// Token and energy survive a run reset
	if gs.ActionToken != "1700000000000" {
		t.Errorf("Expected token kept, got %q", gs.ActionToken)
	}
	if gs.Energy != 2.5 {
		t.Errorf("Expected energy kept, got %f", gs.Energy)
	}
}

func TestGameSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name        string
		player      Vitals
		enemy       Vitals
		expectError bool
	}{
		{name: "zero snapshot", expectError: false},
		{
			name:   "consistent",
			player: Vitals{Health: 50, MaxHealth: 100, Shield: 5, MaxShield: 20},
			enemy:  Vitals{Health: 60, MaxHealth: 60},
		},
		{
			name:        "player health over max",
			player:      Vitals{Health: 101, MaxHealth: 100},
			expectError: true,
		},
		{
			name:        "enemy shield over max",
			enemy:       Vitals{Shield: 11, MaxShield: 10},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := NewGameSnapshot()
			gs.Player = tt.player
			gs.Enemy = tt.enemy
			err := gs.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestGameSnapshot_DeepCopy(t *testing.T) {
	gs := NewGameSnapshot()
	gs.Player = Vitals{Health: 50, MaxHealth: 100}
	gs.LootOptions = []json.RawMessage{json.RawMessage(`{"boon":"axe"}`)}

	cp, err := gs.DeepCopy()
	if err != nil {
		t.Fatalf("Failed to copy snapshot: %v", err)
	}

	cp.Player.Health = 1
	cp.LootOptions[0] = json.RawMessage(`{}`)

	if gs.Player.Health != 50 {
		t.Errorf("Expected original unchanged, got health %d", gs.Player.Health)
	}
	if string(gs.LootOptions[0]) != `{"boon":"axe"}` {
		t.Errorf("Expected original loot unchanged, got %s", gs.LootOptions[0])
	}
}

func TestGameSnapshot_Phases(t *testing.T) {
	gs := NewGameSnapshot()
	if gs.InCombat() || gs.IsDead() {
		t.Error("Expected fresh snapshot to be neither in combat nor dead")
	}

	gs.Room = 2
	gs.Enemy = Vitals{Health: 10, MaxHealth: 60}
	gs.Player = Vitals{Health: 40, MaxHealth: 100}
	if !gs.InCombat() {
		t.Error("Expected in combat with live enemy")
	}

	gs.LootPhase = true
	if gs.InCombat() {
		t.Error("Expected loot phase to suspend combat")
	}

	gs.LootPhase = false
	gs.Player.Health = 0
	if !gs.IsDead() {
		t.Error("Expected dead at zero health mid-run")
	}
}
