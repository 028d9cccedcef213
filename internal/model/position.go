package model

import "main/internal/model/enum"

// Position is an open speculative position tracked by the strategy. It is
// owned exclusively by the strategy stage and never shared.
type Position struct {
	Asset           enum.Asset
	Duration        enum.DurationClass
	Side            enum.Side
	EntryMomentum   float64
	EntryTsMS       int64
	EntryPriceCents int64
	SizeDollars     int64
}

// AgeMS is the position age relative to the given clock.
func (p Position) AgeMS(nowMS int64) int64 {
	return nowMS - p.EntryTsMS
}
