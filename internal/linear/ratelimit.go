package linear

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// sleepFraction divides the time remaining until a budget resets. The gate
// sleeps that fraction and re-checks instead of sleeping the whole window,
// so an early reset is never overslept by much.
const sleepFraction = 10

// rateLimiter tracks Linear's two independent budgets: raw request count and
// computed query complexity. Both are refreshed from response headers after
// every call. A budget whose reset time has passed counts as replenished
// until the next response says otherwise.
type rateLimiter struct {
	requestsRemaining int
	requestsReset     time.Time
	hasRequests       bool

	complexityRemaining int
	complexityReset     time.Time
	hasComplexity       bool

	now   func() time.Time
	sleep func(time.Duration)
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// wait blocks until both budgets allow another call.
func (rl *rateLimiter) wait() {
	for {
		now := rl.now()

		var pause time.Duration
		if rl.hasRequests && rl.requestsRemaining <= 0 && now.Before(rl.requestsReset) {
			pause = rl.requestsReset.Sub(now) / sleepFraction
		}
		if rl.hasComplexity && rl.complexityRemaining <= 0 && now.Before(rl.complexityReset) {
			if d := rl.complexityReset.Sub(now) / sleepFraction; d > pause {
				pause = d
			}
		}

		if pause <= 0 {
			return
		}

		slog.Debug("Rate limit budget exhausted, sleeping", "pause", pause)
		rl.sleep(pause)
	}
}

// update refreshes both budgets from a response's rate limit headers.
// Responses without the headers leave the current state alone.
func (rl *rateLimiter) update(headers http.Header) {
	if remaining, reset, ok := parseBudget(headers, "X-RateLimit-Requests-Remaining", "X-RateLimit-Requests-Reset"); ok {
		rl.requestsRemaining, rl.requestsReset, rl.hasRequests = remaining, reset, true
	}
	if remaining, reset, ok := parseBudget(headers, "X-RateLimit-Complexity-Remaining", "X-RateLimit-Complexity-Reset"); ok {
		rl.complexityRemaining, rl.complexityReset, rl.hasComplexity = remaining, reset, true
	}
}

// parseBudget reads one remaining/reset header pair. Reset times are UTC
// epoch milliseconds; a missing or malformed reset leaves the zero time,
// which never blocks.
func parseBudget(headers http.Header, remainingKey, resetKey string) (int, time.Time, bool) {
	remaining, err := strconv.Atoi(headers.Get(remainingKey))
	if err != nil {
		return 0, time.Time{}, false
	}

	millis, err := strconv.ParseInt(headers.Get(resetKey), 10, 64)
	if err != nil {
		return remaining, time.Time{}, true
	}

	return remaining, time.UnixMilli(millis), true
}
