package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/gigaverse-tools/dungeon-agent/pkg/gigaverse"
	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

// Loader refreshes a session snapshot from the live game API before a
// turn: energy from the player endpoint, then the full dungeon state.
// Fetch failures are logged and leave the snapshot untouched so the
// agent can keep reasoning over its last known state.
type Loader struct {
	client gigaverse.GameClient
	wallet string
	logger *slog.Logger

	now func() time.Time
}

// NewLoader creates a loader for one wallet's sessions.
func NewLoader(client gigaverse.GameClient, wallet string, logger *slog.Logger) *Loader {
	return &Loader{
		client: client,
		wallet: wallet,
		logger: logger,
		now:    time.Now,
	}
}

// Refresh pulls current energy and dungeon state into gs. The stored
// action token is re-checked against the staleness window so the
// prompt never shows a token the next request would refuse to send.
func (l *Loader) Refresh(ctx context.Context, gs *snapshot.GameSnapshot) {
	if l.wallet != "" {
		energy, err := l.client.GetEnergy(ctx, l.wallet)
		if err != nil {
			l.logger.Warn("Energy fetch failed", "session_id", gs.ID.String(), "error", err)
		} else {
			gs.Energy = gigaverse.ComputeEnergy(energy.StoredUnits, energy.LastClaimUnix, l.now())
		}
	}

	resp, err := l.client.FetchDungeonState(ctx)
	if err != nil {
		l.logger.Warn("Dungeon state fetch failed", "session_id", gs.ID.String(), "error", err)
		return
	}
	if !resp.Success || resp.Data == nil {
		l.logger.Debug("Dungeon state unavailable", "session_id", gs.ID.String(), "reason", resp.Message)
		return
	}

	kind := snapshot.Reconcile(gs, resp.Data, l.logger)
	if tok := resp.Token(); tok != "" {
		gs.ActionToken = tok
	}
	gs.ActionToken = gigaverse.NextToken(gs.ActionToken, l.now())

	l.logger.Debug("Snapshot refreshed",
		"session_id", gs.ID.String(),
		"response_kind", kind.String(),
		"room", gs.Room,
		"energy", gs.Energy)
}
