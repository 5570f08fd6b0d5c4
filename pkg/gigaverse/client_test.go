package gigaverse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClient_GetEnergy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/offchain/player/energy/0xabc" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Expected bearer auth, got %q", got)
		}
		_, _ = w.Write([]byte(`{"energyValue":500000000,"lastClaimTime":1700000000}`))
	}))
	defer server.Close()

	client := NewHTTPClient(SessionOptions{BaseURL: server.URL, AuthToken: "test-token"})
	state, err := client.GetEnergy(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("GetEnergy failed: %v", err)
	}
	if state.StoredUnits != 500000000 || state.LastClaimUnix != 1700000000 {
		t.Errorf("Unexpected energy state: %+v", state)
	}
}

func TestHTTPClient_PlayMove(t *testing.T) {
	var received ActionPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/game/dungeon/action" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true,"actionToken":1700000000123,"data":{"run":{"players":[{"health":{"current":90,"currentMax":100}}]}}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(SessionOptions{BaseURL: server.URL, AuthToken: "t"})
	resp, err := client.PlayMove(context.Background(), NewMovePayload(MoveRock, "1000", 0))
	if err != nil {
		t.Fatalf("PlayMove failed: %v", err)
	}

	if received.Action != MoveRock || received.DungeonID != 0 || received.ActionToken != "1000" {
		t.Errorf("Unexpected payload sent: %+v", received)
	}
	if received.Consumables == nil || len(received.Consumables) != 0 {
		t.Errorf("Expected empty consumables list, got %v", received.Consumables)
	}
	if received.ItemID != 0 || received.Index != 0 {
		t.Errorf("Expected zeroed item/index, got %d/%d", received.ItemID, received.Index)
	}

	if !resp.Success {
		t.Error("Expected success response")
	}
	if resp.Token() != "1700000000123" {
		t.Errorf("Expected numeric token normalized to string, got %q", resp.Token())
	}
	if resp.Data == nil || resp.Data.Run == nil || len(resp.Data.Run.Players) != 1 {
		t.Errorf("Expected run data decoded, got %+v", resp.Data)
	}
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewHTTPClient(SessionOptions{BaseURL: server.URL})
	if _, err := client.FetchDungeonState(context.Background()); err == nil {
		t.Error("Expected error for non-200 status")
	}
}

func TestMove_Validate(t *testing.T) {
	valid := []Move{MoveRock, MovePaper, MoveScissor, MoveLootOne, MoveLootTwo, MoveLootThree}
	for _, m := range valid {
		if err := m.Validate(); err != nil {
			t.Errorf("Expected %q valid, got %v", m, err)
		}
	}
	for _, m := range []Move{"", "lizard", "loot_four", moveStartRun} {
		if err := m.Validate(); err == nil {
			t.Errorf("Expected %q invalid", m)
		}
	}
}
