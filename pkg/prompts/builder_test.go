package prompts

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

func TestInterpolate(t *testing.T) {
	vars := map[string]string{"currentRoom": "3", "lootPhase": "false"}
	got := Interpolate("Room {{currentRoom}}, loot {{lootPhase}}, {{unknown}}", vars)
	want := "Room 3, loot false, {{unknown}}"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestBuilder_RequiresSnapshot(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Error("Expected error without snapshot")
	}
}

func TestBuilder_CombatPrompt(t *testing.T) {
	gs := snapshot.NewGameSnapshot()
	gs.Room = 2
	gs.Player = snapshot.Vitals{Health: 64, MaxHealth: 100, Shield: 8, MaxShield: 20}
	gs.Enemy = snapshot.Vitals{Health: 30, MaxHealth: 60}
	gs.Rock = snapshot.GearSlot{Attack: 4, Defense: 2, Charges: 3}

	messages, err := New().WithSnapshot(gs).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("Expected system prompt + instruction, got %d messages", len(messages))
	}
	system := messages[0]
	if system.Role != chat.ChatRoleSystem {
		t.Errorf("Expected system role, got %s", system.Role)
	}
	for _, expected := range []string{"Your HP: 64/100", "Enemy HP: 30/60", "Rock: ATK 4 / DEF 2 / Charges 3"} {
		if !strings.Contains(system.Content, expected) {
			t.Errorf("Expected system prompt to contain %q, got:\n%s", expected, system.Content)
		}
	}
	if !strings.Contains(messages[1].Content, `"move":"rock|paper|scissor"`) {
		t.Errorf("Expected combat instruction, got:\n%s", messages[1].Content)
	}
}

func TestBuilder_PhaseInstructions(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(gs *snapshot.GameSnapshot)
		expected string
	}{
		{
			name:     "no run yet",
			mutate:   func(gs *snapshot.GameSnapshot) {},
			expected: "No dungeon run is active",
		},
		{
			name: "loot phase",
			mutate: func(gs *snapshot.GameSnapshot) {
				gs.Room = 3
				gs.LootPhase = true
				gs.LootOptions = []json.RawMessage{json.RawMessage(`{"boon":"axe"}`)}
				gs.LootCount = 1
			},
			expected: `[{"boon":"axe"}]`,
		},
		{
			name: "dead",
			mutate: func(gs *snapshot.GameSnapshot) {
				gs.Room = 4
				gs.Player = snapshot.Vitals{Health: 0, MaxHealth: 100}
			},
			expected: "Your character is dead",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := snapshot.NewGameSnapshot()
			tt.mutate(gs)
			messages, err := New().WithSnapshot(gs).Build()
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			last := messages[len(messages)-1]
			if !strings.Contains(last.Content, tt.expected) {
				t.Errorf("Expected instruction containing %q, got:\n%s", tt.expected, last.Content)
			}
		})
	}
}

func TestBuilder_HistoryWindow(t *testing.T) {
	gs := snapshot.NewGameSnapshot()
	gs.Room = 1

	transcript := make([]chat.ChatMessage, 0, 15)
	for i := 0; i < 15; i++ {
		transcript = append(transcript, chat.ChatMessage{
			Role:    chat.ChatRoleAgent,
			Content: strings.Repeat("x", i+1),
		})
	}

	messages, err := New().
		WithSnapshot(gs).
		WithTranscript(transcript).
		WithHistoryLimit(5).
		WithUserMessage("push on to room ten").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// system + 5 history + user + instruction
	if len(messages) != 8 {
		t.Fatalf("Expected 8 messages, got %d", len(messages))
	}
	if messages[1].Content != strings.Repeat("x", 11) {
		t.Errorf("Expected window to start at message 11, got %q", messages[1].Content)
	}
	if messages[6].Role != chat.ChatRoleUser || messages[6].Content != "push on to room ten" {
		t.Errorf("Expected user message before instruction, got %+v", messages[6])
	}
}
