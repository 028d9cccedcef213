package model

import (
	"testing"

	"main/internal/model/enum"

	"github.com/stretchr/testify/assert"
)

func TestTicker(t *testing.T) {
	entry := TradeInstruction{Asset: enum.AssetBTC, Duration: enum.Duration60Min}
	assert.Equal(t, "BTC-60-MIN", entry.Ticker())

	exit := TradeInstruction{Asset: enum.AssetETH, Duration: enum.Duration15Min, Exit: true}
	assert.Equal(t, "ETH-15-MIN-EXIT", exit.Ticker())
}

func TestAppendPriceHint(t *testing.T) {
	testCases := []struct {
		cents    int64
		expected string
	}{
		{9_700_050, "97000.50"},
		{242, "2.42"},
		{5, "0.05"},
		{0, "0.00"},
		{-150, "-1.50"},
	}

	for _, tc := range testCases {
		ti := TradeInstruction{PriceHintCents: tc.cents}
		assert.Equal(t, tc.expected, string(ti.AppendPriceHint(nil)))
	}
}

func TestPositionAge(t *testing.T) {
	p := Position{EntryTsMS: 1000}
	assert.Equal(t, int64(500), p.AgeMS(1500))
}

func TestQuoteMid(t *testing.T) {
	q := Quote{Bid: 0.48, Ask: 0.52}
	assert.InDelta(t, 0.50, q.Mid(), 1e-9)
}
