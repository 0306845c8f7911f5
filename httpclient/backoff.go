package httpclient

import "time"

// backoffDuration returns the delay before the next attempt:
// factor * 2^attempt, with attempt zero-indexed.
func backoffDuration(factor time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return factor * time.Duration(uint(1)<<uint(attempt))
}
