package execution

// Filters is the late-stage economic gate applied before committing capital.
// It is independent of the strategy's own entry logic and catches stale or
// unfavorable signals at the order book.
type Filters struct {
	MaxEntryPrice float64
	MinUpside     float64
	MaxSpread     float64
}

// DefaultFilters returns the shipped filter policy.
func DefaultFilters() Filters {
	return Filters{
		MaxEntryPrice: 0.65,
		MinUpside:     0.30,
		MaxSpread:     0.10,
	}
}

// Filter rejection reasons, also used as activity-log and metric labels.
const (
	ReasonPriceTooHigh  = "price_too_high"
	ReasonUpsideTooLow  = "upside_too_low"
	ReasonSpreadTooWide = "spread_too_wide"
)

// Upside is the fractional gain if a share bought at price resolves to $1.
// A price of 0.40 has (1 - 0.40) / 0.40 = 150% upside.
func Upside(price float64) float64 {
	if price <= 0 || price >= 1 {
		return 0
	}
	return (1 - price) / price
}

// Spread is the relative bid-ask spread. An empty bid side counts as a 100%
// spread.
func Spread(bid, ask float64) float64 {
	if bid <= 0 {
		return 1
	}
	return (ask - bid) / bid
}

// Evaluate applies the value filters to an entry quote. On rejection it
// returns the reason label and ok=false.
func (f Filters) Evaluate(entryPrice, bid, ask float64) (upside, spread float64, reason string, ok bool) {
	if entryPrice > f.MaxEntryPrice {
		return 0, 0, ReasonPriceTooHigh, false
	}
	upside = Upside(entryPrice)
	if upside < f.MinUpside {
		return upside, 0, ReasonUpsideTooLow, false
	}
	spread = Spread(bid, ask)
	if spread > f.MaxSpread {
		return upside, spread, ReasonSpreadTooWide, false
	}
	return upside, spread, "", true
}
