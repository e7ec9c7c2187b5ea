package auth

import "time"

// IsExpired reports whether a token with the given expiry instant is stale.
// expiresAtMillis is milliseconds since epoch; 0 means the token carries no
// expiry claim and counts as already expired. driftSeconds compensates for a
// client clock that runs ahead of the server's and is added to "now" before
// the comparison.
func IsExpired(expiresAtMillis, driftSeconds int64) bool {
	return isExpiredAt(time.Now(), expiresAtMillis, driftSeconds)
}

func isExpiredAt(now time.Time, expiresAtMillis, driftSeconds int64) bool {
	if expiresAtMillis == 0 {
		// No expiry claim: stale regardless of drift.
		return true
	}
	return now.UnixMilli()+driftSeconds*1000 >= expiresAtMillis
}
