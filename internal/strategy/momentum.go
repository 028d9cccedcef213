package strategy

import (
	"main/internal/model"
	"main/internal/model/enum"
)

// RetentionMS is the hard ceiling on price history, independent of any
// analysis window.
const RetentionMS int64 = 15 * 60 * 1000

// Tracker maintains a per-asset rolling price history and computes momentum
// over trailing windows. Histories are indexed by the asset enum so the
// steady state allocates nothing.
type Tracker struct {
	histories [enum.AssetCount]history
}

type history struct {
	snaps []model.PriceSnapshot
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe appends a snapshot for the asset and evicts everything older than
// the retention window relative to the new timestamp. Timestamps are assumed
// monotonically non-decreasing per asset.
func (t *Tracker) Observe(asset enum.Asset, priceCents, tsMS int64) {
	if !asset.IsAvailable() {
		return
	}
	h := &t.histories[asset]
	h.snaps = append(h.snaps, model.PriceSnapshot{PriceCents: priceCents, TsMS: tsMS})

	cutoff := tsMS - RetentionMS
	evict := 0
	for evict < len(h.snaps) && h.snaps[evict].TsMS < cutoff {
		evict++
	}
	if evict > 0 {
		h.snaps = h.snaps[:copy(h.snaps, h.snaps[evict:])]
	}
}

// Momentum is the fractional price change from the oldest snapshot inside the
// trailing window to the most recent snapshot. It returns 0 when there is no
// signal yet: fewer than two snapshots in the window, or a zero oldest price.
func (t *Tracker) Momentum(asset enum.Asset, windowMS, nowMS int64) float64 {
	if !asset.IsAvailable() {
		return 0
	}
	snaps := t.histories[asset].snaps
	if len(snaps) < 2 {
		return 0
	}

	cutoff := nowMS - windowMS
	first := -1
	for i := range snaps {
		if snaps[i].TsMS >= cutoff {
			first = i
			break
		}
	}
	if first < 0 || first == len(snaps)-1 {
		return 0
	}

	oldest := snaps[first]
	current := snaps[len(snaps)-1]
	if oldest.PriceCents == 0 {
		return 0
	}
	return float64(current.PriceCents-oldest.PriceCents) / float64(oldest.PriceCents)
}

// Span reports the covered history span in milliseconds for diagnostics.
func (t *Tracker) Span(asset enum.Asset) int64 {
	if !asset.IsAvailable() {
		return 0
	}
	snaps := t.histories[asset].snaps
	if len(snaps) < 2 {
		return 0
	}
	return snaps[len(snaps)-1].TsMS - snaps[0].TsMS
}
