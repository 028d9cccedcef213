package strategy

import (
	"testing"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/model/enum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRisk struct {
	maxPos int
	size   int64
}

func (f fixedRisk) MaxPositionsPerAsset() int { return f.maxPos }
func (f fixedRisk) TradeSizeDollars() int64   { return f.size }

func newTestEngine(t *testing.T, risk fixedRisk, outCap int) (*Engine, *bus.Producer[model.TradeInstruction], *bus.Consumer[model.TradeInstruction]) {
	t.Helper()
	_, tickOut := bus.NewRing[model.Tick](4)
	instrIn, instrOut := bus.NewRing[model.TradeInstruction](outCap)
	return NewEngine(DefaultConfig(), tickOut, instrIn, risk, nil, nil), instrIn, instrOut
}

func drain(c *bus.Consumer[model.TradeInstruction]) []model.TradeInstruction {
	var out []model.TradeInstruction
	for {
		instr, err := c.Pop()
		if err != nil {
			return out
		}
		out = append(out, instr)
	}
}

func TestEntryOnMomentum(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 3, size: 5}, 8)

	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_000, TsMS: 0})
	assert.Empty(t, drain(out))

	// +0.1% move clears both entry thresholds
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_010, TsMS: 60_000})

	instrs := drain(out)
	require.Len(t, instrs, 2)

	assert.Equal(t, enum.Duration60Min, instrs[0].Duration)
	assert.Equal(t, enum.Duration15Min, instrs[1].Duration)
	for _, instr := range instrs {
		assert.False(t, instr.Exit)
		assert.Equal(t, enum.SideUp, instr.Side)
		assert.Equal(t, int64(5), instr.SizeDollars)
		assert.Equal(t, int64(10_010), instr.PriceHintCents)
	}
	assert.Equal(t, 2, e.Book().Count(enum.AssetBTC))
}

func TestEntrySideFollowsMomentumSign(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 3, size: 5}, 8)

	e.OnTick(model.Tick{Asset: enum.AssetETH, PriceCents: 20_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: enum.AssetETH, PriceCents: 19_980, TsMS: 60_000})

	instrs := drain(out)
	require.Len(t, instrs, 2)
	for _, instr := range instrs {
		assert.Equal(t, enum.SideDown, instr.Side)
	}
}

func TestNoEntryBelowThreshold(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 3, size: 5}, 8)

	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 1_000_000, TsMS: 0})
	// +0.01% is below both thresholds
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 1_000_100, TsMS: 60_000})

	assert.Empty(t, drain(out))
	assert.Zero(t, e.Book().Len())
}

func TestCooldownBlocksReentry(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 10, size: 5}, 16)

	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_010, TsMS: 60_000})
	require.Len(t, drain(out), 2)

	// strong signal 1s later is suppressed by the per-asset cooldown
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_030, TsMS: 61_000})
	assert.Empty(t, drain(out))

	// past the cooldown the signal is acted on again
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_060, TsMS: 66_000})
	assert.Len(t, drain(out), 2)
}

func TestCooldownIsPerAsset(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 10, size: 5}, 16)

	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_010, TsMS: 60_000})
	require.Len(t, drain(out), 2)

	// another asset is not affected by BTC's cooldown
	e.OnTick(model.Tick{Asset: enum.AssetSOL, PriceCents: 20_000, TsMS: 60_500})
	e.OnTick(model.Tick{Asset: enum.AssetSOL, PriceCents: 20_020, TsMS: 61_000})
	assert.Len(t, drain(out), 2)
}

func TestMaxPositionsRecheckedBetweenClasses(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 1, size: 5}, 8)

	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_010, TsMS: 60_000})

	// the hourly entry fills the only slot; the 15-minute check sees it
	instrs := drain(out)
	require.Len(t, instrs, 1)
	assert.Equal(t, enum.Duration60Min, instrs[0].Duration)
	assert.Equal(t, 1, e.Book().Count(enum.AssetBTC))
}

func TestFullInstructionRingDropsEntry(t *testing.T) {
	e, producer, out := newTestEngine(t, fixedRisk{maxPos: 3, size: 5}, 2)

	require.NoError(t, producer.Push(model.TradeInstruction{}))
	require.NoError(t, producer.Push(model.TradeInstruction{}))

	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_010, TsMS: 60_000})

	// the signal was dropped, so no position may exist
	assert.Zero(t, e.Book().Len())
	assert.Len(t, drain(out), 2)
}

func TestStopLossExitInDangerZone(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 3, size: 5}, 8)

	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_020, TsMS: 60_000})
	require.Len(t, drain(out), 2)
	require.Equal(t, 2, e.Book().Count(enum.AssetBTC))

	// 740s of age puts the 15-minute position inside its final 3 minutes;
	// flat momentum there is a full reversal of the +0.2% entry momentum.
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_020, TsMS: 800_000})

	instrs := drain(out)
	require.Len(t, instrs, 1)
	exit := instrs[0]
	assert.True(t, exit.Exit)
	assert.Equal(t, enum.Duration15Min, exit.Duration)
	assert.Equal(t, enum.SideDown, exit.Side) // flipped from the held UP side
	assert.Equal(t, int64(5), exit.SizeDollars)

	// the hourly position is nowhere near its danger zone and survives
	assert.Equal(t, 1, e.Book().Count(enum.AssetBTC))
}

func TestDangerZoneBoundary(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 3, size: 5}, 8)

	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_020, TsMS: 60_000})
	drain(out)

	// one millisecond before the 15-minute danger zone opens: no exit
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_020, TsMS: 779_999})
	assert.Empty(t, drain(out))
	assert.Equal(t, 2, e.Book().Count(enum.AssetBTC))

	// exactly at the boundary the zone is active
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_020, TsMS: 780_000})
	instrs := drain(out)
	require.Len(t, instrs, 1)
	assert.True(t, instrs[0].Exit)
}

func TestFullRingKeepsPositionOnExit(t *testing.T) {
	e, producer, out := newTestEngine(t, fixedRisk{maxPos: 3, size: 5}, 4)

	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_020, TsMS: 60_000})
	drain(out)
	require.Equal(t, 2, e.Book().Count(enum.AssetBTC))

	for producer.Push(model.TradeInstruction{}) == nil {
	}

	// the stop-loss fires but the instruction cannot be delivered; the
	// position must stay open for a later retry
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_020, TsMS: 800_000})
	assert.Equal(t, 2, e.Book().Count(enum.AssetBTC))
}

func TestDownPositionReversalIsFlipped(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 3, size: 5}, 8)

	// enter DOWN on falling momentum
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 10_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 9_980, TsMS: 60_000})
	require.Len(t, drain(out), 2)

	// flat momentum in the danger zone means the down move reversed
	e.OnTick(model.Tick{Asset: enum.AssetBTC, PriceCents: 9_980, TsMS: 800_000})

	instrs := drain(out)
	require.Len(t, instrs, 1)
	assert.True(t, instrs[0].Exit)
	assert.Equal(t, enum.SideUp, instrs[0].Side) // flipped from the held DOWN side
}

func TestIgnoresUnknownAsset(t *testing.T) {
	e, _, out := newTestEngine(t, fixedRisk{maxPos: 3, size: 5}, 8)

	e.OnTick(model.Tick{Asset: 0, PriceCents: 10_000, TsMS: 0})
	e.OnTick(model.Tick{Asset: 0, PriceCents: 10_100, TsMS: 60_000})

	assert.Empty(t, drain(out))
	assert.Zero(t, e.Book().Len())
}
