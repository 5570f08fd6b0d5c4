package gigaverse

import "time"

const (
	// energyRegenPerSecond matches the server's fixed-point accounting:
	// roughly 0.0028 display energy per second of real time.
	energyRegenPerSecond = 2_777_777

	// energyUnitScale converts stored fixed-point units to the
	// human-readable float.
	energyUnitScale = 1_000_000_000
)

// ComputeEnergy converts a stored energy credit and its last-claim
// timestamp into current usable energy at the given instant. Pure
// function of its inputs.
//
// A last-claim timestamp in the future (client/server clock skew)
// yields negative elapsed time and is passed through arithmetically,
// temporarily depressing the result; it self-corrects as the clock
// catches up.
func ComputeEnergy(storedUnits float64, lastClaimUnix int64, now time.Time) float64 {
	elapsedSeconds := float64(now.UnixMilli())/1000 - float64(lastClaimUnix)
	return (storedUnits + energyRegenPerSecond*elapsedSeconds) / energyUnitScale
}
