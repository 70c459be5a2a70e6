package linear

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClock drives the limiter from a fake timeline and records every sleep.
type stubClock struct {
	current time.Time
	sleeps  []time.Duration
}

func (s *stubClock) now() time.Time {
	return s.current
}

func (s *stubClock) sleep(d time.Duration) {
	s.sleeps = append(s.sleeps, d)
	s.current = s.current.Add(d)
}

func newStubbedLimiter() (*rateLimiter, *stubClock) {
	clock := &stubClock{current: time.UnixMilli(1_000_000)}
	rl := newRateLimiter()
	rl.now = clock.now
	rl.sleep = clock.sleep
	return rl, clock
}

func headersFor(requestsRemaining int, requestsReset time.Time) http.Header {
	h := http.Header{}
	h.Set("X-RateLimit-Requests-Remaining", strconv.Itoa(requestsRemaining))
	h.Set("X-RateLimit-Requests-Reset", strconv.FormatInt(requestsReset.UnixMilli(), 10))
	return h
}

func TestRateLimiterPassesWithBudget(t *testing.T) {
	rl, clock := newStubbedLimiter()
	rl.update(headersFor(50, clock.current.Add(time.Minute)))

	rl.wait()

	assert.Empty(t, clock.sleeps, "a positive budget should never sleep")
}

func TestRateLimiterSleepsFractionThenRechecks(t *testing.T) {
	rl, clock := newStubbedLimiter()
	reset := clock.current.Add(10 * time.Second)
	rl.update(headersFor(0, reset))

	rl.wait()

	// First sleep is one tenth of the full window; each re-check sleeps a
	// tenth of what remains, so the gate opens at the reset instant.
	require.NotEmpty(t, clock.sleeps)
	assert.Equal(t, time.Second, clock.sleeps[0])
	assert.WithinDuration(t, reset, clock.current, time.Microsecond)
	for i := 1; i < len(clock.sleeps); i++ {
		assert.LessOrEqual(t, clock.sleeps[i], clock.sleeps[i-1], "each re-check sleeps a shrinking fraction")
	}
}

func TestRateLimiterComplexityBudgetBlocks(t *testing.T) {
	rl, clock := newStubbedLimiter()
	h := http.Header{}
	h.Set("X-RateLimit-Requests-Remaining", "100")
	h.Set("X-RateLimit-Requests-Reset", strconv.FormatInt(clock.current.Add(time.Minute).UnixMilli(), 10))
	h.Set("X-RateLimit-Complexity-Remaining", "0")
	h.Set("X-RateLimit-Complexity-Reset", strconv.FormatInt(clock.current.Add(5*time.Second).UnixMilli(), 10))
	rl.update(h)

	rl.wait()

	require.NotEmpty(t, clock.sleeps, "exhausted complexity budget should block even with requests left")
	assert.Equal(t, 500*time.Millisecond, clock.sleeps[0])
}

func TestRateLimiterExpiredResetCountsAsReplenished(t *testing.T) {
	rl, clock := newStubbedLimiter()
	rl.update(headersFor(0, clock.current.Add(-time.Second)))

	rl.wait()

	assert.Empty(t, clock.sleeps, "a reset in the past should not block")
}

func TestRateLimiterIgnoresMissingHeaders(t *testing.T) {
	rl, clock := newStubbedLimiter()
	rl.update(headersFor(0, clock.current.Add(time.Minute)))

	// A response without rate limit headers must not clobber known state.
	rl.update(http.Header{})
	assert.True(t, rl.hasRequests)
	assert.Equal(t, 0, rl.requestsRemaining)
}
