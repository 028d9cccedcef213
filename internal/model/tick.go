package model

import "main/internal/model/enum"

// Tick is a single market update produced by ingestion. Prices are
// fixed-point cents (exchange price * 100) to keep the hot path free of
// floating point parsing.
type Tick struct {
	Asset      enum.Asset
	PriceCents int64
	TsMS       int64
}

// PriceSnapshot is one entry of a per-asset rolling price history.
type PriceSnapshot struct {
	PriceCents int64
	TsMS       int64
}
