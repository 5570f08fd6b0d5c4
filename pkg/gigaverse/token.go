package gigaverse

import (
	"strconv"
	"time"
)

// TokenStaleAfter is how long a stored action token stays usable. The
// server treats a call without a token as session-initiating, so a
// token older than this window is dropped rather than echoed.
const TokenStaleAfter = 3 * time.Minute

// NextToken decides which action token to attach to an outgoing
// request. Empty stays empty; a token whose embedded millisecond
// timestamp is older than the staleness window is dropped; anything
// else passes through unchanged.
//
// Tokens that do not parse as a millisecond timestamp are passed
// through as-is and left for the server to judge.
func NextToken(stored string, now time.Time) string {
	if stored == "" {
		return ""
	}
	issuedMillis, err := strconv.ParseInt(stored, 10, 64)
	if err != nil {
		return stored
	}
	if now.UnixMilli()-issuedMillis > TokenStaleAfter.Milliseconds() {
		return ""
	}
	return stored
}
