package model

import (
	"time"

	"main/internal/model/enum"
)

// Market is one tradable prediction market held in the market cache.
// TokenIDs and Outcomes are index-aligned; both have at least two entries for
// any market published by the updater.
type Market struct {
	Asset       enum.Asset
	Duration    enum.DurationClass
	ConditionID string
	QuestionID  string
	Question    string
	Slug        string
	TokenIDs    []string
	Outcomes    []string
	EndDate     time.Time
}

// Quote is a two-sided best price for one outcome token.
type Quote struct {
	Bid float64
	Ask float64
}

// Mid returns the quote midpoint.
func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}
