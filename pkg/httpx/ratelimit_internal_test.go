package httpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBucketSetEvictsIdleKeys(t *testing.T) {
	set := newBucketSet(RateLimitConfig{RequestsPerWindow: 1, Window: time.Second, Burst: 1})
	start := set.lastSweep

	set.get("idle", start)
	set.get("busy", start)
	require.Equal(t, 2, set.len())

	set.get("busy", start.Add(idleEviction-time.Second))
	set.get("busy", start.Add(idleEviction+time.Second))

	require.Equal(t, 1, set.len())
}

func TestRateLimitConfigUnlimited(t *testing.T) {
	require.True(t, RateLimitConfig{}.limit() > 1e300)
}
