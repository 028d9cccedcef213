package strategy

import (
	"testing"

	"main/internal/model/enum"

	"github.com/stretchr/testify/assert"
)

const minuteMS int64 = 60 * 1000

func TestMomentumNeedsTwoSnapshots(t *testing.T) {
	tr := NewTracker()

	assert.Zero(t, tr.Momentum(enum.AssetBTC, 3*minuteMS, 0))

	tr.Observe(enum.AssetBTC, 10_000, 1000)
	assert.Zero(t, tr.Momentum(enum.AssetBTC, 3*minuteMS, 1000))
}

func TestMomentumFractionalChange(t *testing.T) {
	tr := NewTracker()
	tr.Observe(enum.AssetBTC, 10_000, 0)
	tr.Observe(enum.AssetBTC, 10_100, minuteMS)

	// (10100 - 10000) / 10000
	assert.InDelta(t, 0.01, tr.Momentum(enum.AssetBTC, 3*minuteMS, minuteMS), 1e-12)
}

func TestMomentumNegative(t *testing.T) {
	tr := NewTracker()
	tr.Observe(enum.AssetETH, 20_000, 0)
	tr.Observe(enum.AssetETH, 19_800, minuteMS)

	assert.InDelta(t, -0.01, tr.Momentum(enum.AssetETH, 3*minuteMS, minuteMS), 1e-12)
}

func TestMomentumWindowExcludesOlderSnapshots(t *testing.T) {
	tr := NewTracker()
	tr.Observe(enum.AssetBTC, 10_000, 0)
	tr.Observe(enum.AssetBTC, 10_500, 5*minuteMS)
	tr.Observe(enum.AssetBTC, 10_605, 7*minuteMS)

	// 3-minute window at t=7min only sees the snapshots at 5 and 7 minutes.
	fast := tr.Momentum(enum.AssetBTC, 3*minuteMS, 7*minuteMS)
	assert.InDelta(t, 0.01, fast, 1e-12)

	// 10-minute window reaches back to the origin snapshot.
	slow := tr.Momentum(enum.AssetBTC, 10*minuteMS, 7*minuteMS)
	assert.InDelta(t, 0.0605, slow, 1e-12)
}

func TestMomentumZeroWhenWindowUnderfilled(t *testing.T) {
	tr := NewTracker()
	tr.Observe(enum.AssetBTC, 10_000, 0)
	tr.Observe(enum.AssetBTC, 11_000, minuteMS)

	// Only the latest snapshot falls inside a half-minute window; there is
	// no older reference point, so no signal.
	assert.Zero(t, tr.Momentum(enum.AssetBTC, minuteMS/2, minuteMS))
}

func TestMomentumZeroOldestPrice(t *testing.T) {
	tr := NewTracker()
	tr.Observe(enum.AssetBTC, 0, 0)
	tr.Observe(enum.AssetBTC, 10_000, minuteMS)

	assert.Zero(t, tr.Momentum(enum.AssetBTC, 3*minuteMS, minuteMS))
}

func TestObserveEvictsBeyondRetention(t *testing.T) {
	tr := NewTracker()
	tr.Observe(enum.AssetSOL, 100, 0)
	tr.Observe(enum.AssetSOL, 110, 5*minuteMS)
	tr.Observe(enum.AssetSOL, 120, 16*minuteMS) // evicts the t=0 snapshot

	assert.Equal(t, 11*minuteMS, tr.Span(enum.AssetSOL))
}

func TestTrackerIsolatesAssets(t *testing.T) {
	tr := NewTracker()
	tr.Observe(enum.AssetBTC, 10_000, 0)
	tr.Observe(enum.AssetBTC, 10_100, minuteMS)

	assert.Zero(t, tr.Momentum(enum.AssetETH, 3*minuteMS, minuteMS))
	assert.NotZero(t, tr.Momentum(enum.AssetBTC, 3*minuteMS, minuteMS))
}
