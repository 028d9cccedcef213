package risk

import "sync/atomic"

// Tier is a named risk-appetite level derived from session P&L. It is never
// stored: classification is a pure function of the accumulator, so tier and
// P&L cannot drift apart under concurrent reads.
type Tier uint8

const (
	TierConservative Tier = iota
	TierModerate
	TierAggressive
)

// Tier transition thresholds in minor units (cents).
const (
	profitThresholdCents = 1000
	lossThresholdCents   = -1000
)

func (t Tier) Name() string {
	switch t {
	case TierConservative:
		return "CONSERVATIVE"
	case TierAggressive:
		return "AGGRESSIVE"
	default:
		return "MODERATE"
	}
}

// TradeSizeDollars is the per-trade size for the tier.
func (t Tier) TradeSizeDollars() int64 {
	switch t {
	case TierConservative:
		return 2
	case TierAggressive:
		return 10
	default:
		return 5
	}
}

// MaxPositionsPerAsset is the open-position ceiling per asset for the tier.
func (t Tier) MaxPositionsPerAsset() int {
	switch t {
	case TierConservative:
		return 2
	case TierAggressive:
		return 4
	default:
		return 3
	}
}

// ExposureFraction is the share of the starting balance the engine may have
// committed at once.
func (t Tier) ExposureFraction() float64 {
	switch t {
	case TierConservative:
		return 0.25
	case TierAggressive:
		return 0.75
	default:
		return 0.50
	}
}

// Manager tracks session P&L in an atomic accumulator and classifies it into
// a tier on demand. Safe for concurrent readers with a single writer calling
// RecordFill from the execution stage.
type Manager struct {
	sessionPnLCents atomic.Int64
	startingUSD     float64
}

// NewManager creates a manager with the configured starting balance. The
// session P&L starts at zero and lives for the process lifetime.
func NewManager(startingBalanceUSD float64) *Manager {
	return &Manager{startingUSD: startingBalanceUSD}
}

// RecordFill atomically adds the realized P&L delta and returns the tier
// implied by the new total.
func (m *Manager) RecordFill(pnlUSD float64) Tier {
	total := m.sessionPnLCents.Add(int64(pnlUSD * 100))
	return classify(total)
}

// CurrentTier classifies the accumulator without mutating it.
func (m *Manager) CurrentTier() Tier {
	return classify(m.sessionPnLCents.Load())
}

// SessionPnL is the session P&L in dollars, for observability only.
func (m *Manager) SessionPnL() float64 {
	return float64(m.sessionPnLCents.Load()) / 100
}

// MaxExposure is the exposure ceiling in dollars for the current tier.
func (m *Manager) MaxExposure() float64 {
	return m.startingUSD * m.CurrentTier().ExposureFraction()
}

// MaxPositionsPerAsset reports the current tier's per-asset position ceiling.
// The strategy stage uses this to gate entries.
func (m *Manager) MaxPositionsPerAsset() int {
	return m.CurrentTier().MaxPositionsPerAsset()
}

// TradeSizeDollars reports the current tier's trade size.
func (m *Manager) TradeSizeDollars() int64 {
	return m.CurrentTier().TradeSizeDollars()
}

func classify(cents int64) Tier {
	switch {
	case cents >= profitThresholdCents:
		return TierAggressive
	case cents <= lossThresholdCents:
		return TierConservative
	default:
		return TierModerate
	}
}
