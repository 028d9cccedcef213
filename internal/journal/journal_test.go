package journal

import (
	"testing"
	"time"

	"main/internal/execution"
	"main/internal/model/enum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilJournalIsNoOp(t *testing.T) {
	var j *Journal

	assert.NoError(t, j.Migrate())
	j.LogActivity(execution.Activity{})
	j.StrategyTick(1, enum.AssetBTC, 100, 0, 0, 0)
	j.Run(t.Context()) // returns immediately
}

func TestNewWithoutDB(t *testing.T) {
	assert.Nil(t, New(nil, "bot", nil))
}

func TestLogActivityMapsFields(t *testing.T) {
	j := &Journal{queue: make(chan any, 4)}

	pnl := 1.25
	j.LogActivity(execution.Activity{
		Ticker:    "BTC-60-MIN-EXIT",
		Asset:     enum.AssetBTC,
		Side:      enum.SideDown,
		Exit:      true,
		Outcome:   "Up",
		Price:     0.60,
		Size:      6,
		Status:    "dry_run",
		OrderID:   "dry-run",
		PnL:       &pnl,
		LatencyMS: 3,
	})

	rec := <-j.queue
	row, ok := rec.(*TradeLog)
	require.True(t, ok)
	assert.Equal(t, "BTC-60-MIN-EXIT", row.MarketTicker)
	assert.Equal(t, "BTC", row.Asset)
	assert.Equal(t, "DOWN", row.Side)
	assert.Equal(t, "EXIT", row.Action)
	assert.Equal(t, "Up", row.Outcome)
	require.NotNil(t, row.PnL)
	assert.InDelta(t, 1.25, *row.PnL, 1e-9)
	assert.WithinDuration(t, time.Now().UTC(), row.Timestamp, time.Minute)
}

func TestStrategyTickMapsFields(t *testing.T) {
	j := &Journal{queue: make(chan any, 4)}

	j.StrategyTick(200, enum.AssetETH, 340_000, 0.001, -0.0004, 2)

	rec := <-j.queue
	row, ok := rec.(*StrategyLog)
	require.True(t, ok)
	assert.Equal(t, int64(200), row.TickCount)
	assert.Equal(t, "ETH", row.Asset)
	assert.Equal(t, int64(340_000), row.PriceCents)
	assert.InDelta(t, 0.001, row.Momentum60, 1e-12)
	assert.InDelta(t, -0.0004, row.Momentum15, 1e-12)
	assert.Equal(t, 2, row.OpenPositions)
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	j := &Journal{queue: make(chan any, 1)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			j.StrategyTick(uint64(i), enum.AssetBTC, 100, 0, 0, 0)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
	assert.Len(t, j.queue, 1)
}
