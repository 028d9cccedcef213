package strategy

import (
	"context"
	"math"
	"runtime"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/state"
)

// Config holds the strategy policy parameters. Entry thresholds ship with the
// repository's low TESTING defaults; production values are a config concern,
// not a code constant.
type Config struct {
	EntryThreshold60 float64
	EntryThreshold15 float64
	StopLoss60       float64
	StopLoss15       float64
	CooldownMS       int64
	DiagnosticsEvery uint64
}

// DefaultConfig returns the shipped policy defaults.
func DefaultConfig() Config {
	return Config{
		EntryThreshold60: 0.0005,
		EntryThreshold15: 0.0003,
		StopLoss60:       0.003,
		StopLoss15:       0.002,
		CooldownMS:       5000,
		DiagnosticsEvery: 100,
	}
}

// RiskProfile supplies tier-driven sizing to the entry logic. risk.Manager
// implements it; tests substitute fixed values.
type RiskProfile interface {
	MaxPositionsPerAsset() int
	TradeSizeDollars() int64
}

// Diagnostics receives the periodic per-asset strategy snapshot. Implementors
// must not block.
type Diagnostics interface {
	StrategyTick(tick uint64, asset enum.Asset, priceCents int64, momentum60, momentum15 float64, openPositions int)
}

// Engine is the decision loop: it consumes ticks, maintains momentum
// histories and the position book, evaluates stop-loss exits and new entries,
// and emits trade instructions. All state is partitioned by asset.
type Engine struct {
	cfg     Config
	in      *bus.Consumer[model.Tick]
	out     *bus.Producer[model.TradeInstruction]
	tracker *Tracker
	book    *state.Book
	risk    RiskProfile
	diag    Diagnostics
	metrics *obs.Metrics

	lastEntryMS [enum.AssetCount]int64
	tickCounts  [enum.AssetCount]uint64
}

// NewEngine creates a strategy engine owning its tracker and position book.
// diag and metrics may be nil.
func NewEngine(cfg Config, in *bus.Consumer[model.Tick], out *bus.Producer[model.TradeInstruction], risk RiskProfile, diag Diagnostics, metrics *obs.Metrics) *Engine {
	return &Engine{
		cfg:     cfg,
		in:      in,
		out:     out,
		tracker: NewTracker(),
		book:    state.NewBook(),
		risk:    risk,
		diag:    diag,
		metrics: metrics,
	}
}

// Book exposes the position ledger for inspection.
func (e *Engine) Book() *state.Book {
	return e.book
}

// Tracker exposes the momentum tracker for inspection.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// spinsBeforeYield bounds the busy-poll burst before the loop yields the
// scheduler and re-checks cancellation.
const spinsBeforeYield = 1024

// Run polls the tick ring until the context is cancelled. The loop favors a
// tight busy-poll (the stage is latency-critical) and yields cooperatively
// only after a burst of empty polls.
func (e *Engine) Run(ctx context.Context) {
	logs.Info("strategy engine started")
	spins := 0
	for {
		tick, err := e.in.Pop()
		if err != nil {
			spins++
			if spins >= spinsBeforeYield {
				spins = 0
				select {
				case <-ctx.Done():
					logs.Info("strategy engine stopped")
					return
				default:
				}
				runtime.Gosched()
			}
			continue
		}
		spins = 0
		e.safeTick(tick)
	}
}

// safeTick shields the loop from a poison tick: one bad update must not
// terminate the stage.
func (e *Engine) safeTick(tick model.Tick) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("strategy tick panic, asset: %s, recovered: %+v", tick.Asset.Name(), r)
		}
	}()
	e.OnTick(tick)
}

// OnTick runs the fixed per-tick sequence: history update, momentum,
// diagnostics, stop-loss exits, rate limit, 60-minute entry, 15-minute entry.
// The 15-minute evaluation re-reads the position count because the 60-minute
// entry may have just filled a slot.
func (e *Engine) OnTick(tick model.Tick) {
	asset := tick.Asset
	if !asset.IsAvailable() {
		return
	}
	e.metrics.IncTickProcessed()

	e.tracker.Observe(asset, tick.PriceCents, tick.TsMS)
	m60 := e.tracker.Momentum(asset, enum.Duration60Min.MomentumWindow().Milliseconds(), tick.TsMS)
	m15 := e.tracker.Momentum(asset, enum.Duration15Min.MomentumWindow().Milliseconds(), tick.TsMS)

	e.tickCounts[asset]++
	if e.cfg.DiagnosticsEvery > 0 && e.tickCounts[asset]%e.cfg.DiagnosticsEvery == 0 {
		if e.diag != nil {
			e.diag.StrategyTick(e.tickCounts[asset], asset, tick.PriceCents, m60, m15, e.book.Len())
		}
		logs.Debugf("strategy tick %d, asset: %s, price: %d, m60: %.6f, m15: %.6f, open: %d, history: %ds",
			e.tickCounts[asset], asset.Name(), tick.PriceCents, m60, m15, e.book.Len(), e.tracker.Span(asset)/1000)
	}

	e.evaluateExits(asset, tick, m60, m15)
	e.metrics.SetOpenPositions(e.book.Len())

	if last := e.lastEntryMS[asset]; last != 0 && tick.TsMS-last < e.cfg.CooldownMS {
		return
	}

	entered := false
	if e.tryEntry(asset, enum.Duration60Min, m60, tick) {
		entered = true
	}
	if e.tryEntry(asset, enum.Duration15Min, m15, tick) {
		entered = true
	}
	if entered {
		e.lastEntryMS[asset] = tick.TsMS
		e.metrics.SetOpenPositions(e.book.Len())
	}
}

// evaluateExits walks this asset's open positions and emits stop-loss exits
// for those inside their danger zone whose momentum reversed past the class
// threshold. A full downstream ring leaves the position open; it stays in the
// danger zone and is retried on a later tick.
func (e *Engine) evaluateExits(asset enum.Asset, tick model.Tick, m60, m15 float64) {
	var closed []state.PositionID
	e.book.Each(asset, func(id state.PositionID, p model.Position) {
		var current, threshold float64
		switch p.Duration {
		case enum.Duration60Min:
			current, threshold = m60, e.cfg.StopLoss60
		case enum.Duration15Min:
			current, threshold = m15, e.cfg.StopLoss15
		default:
			return
		}

		lifetime := p.Duration.Lifetime().Milliseconds()
		danger := p.Duration.DangerZone().Milliseconds()
		if lifetime-p.AgeMS(tick.TsMS) > danger {
			return
		}

		reversal := p.EntryMomentum - current
		if p.Side == enum.SideDown {
			reversal = current - p.EntryMomentum
		}
		if reversal < threshold {
			return
		}

		instr := model.TradeInstruction{
			Asset:          asset,
			Duration:       p.Duration,
			Exit:           true,
			Side:           p.Side.Flip(),
			PriceHintCents: tick.PriceCents,
			SizeDollars:    p.SizeDollars,
		}
		if err := e.out.Push(instr); err != nil {
			logs.Warnf("instruction ring full, exit dropped, asset: %s, class: %s", asset.Name(), p.Duration.Name())
			e.metrics.IncRingDrop("instructions")
			return
		}
		e.metrics.IncInstruction(true)
		logs.Infof("stop-loss exit, %s at $%s, reversal: %.6f", instr.Ticker(), instr.AppendPriceHint(nil), reversal)
		closed = append(closed, id)
	})
	for _, id := range closed {
		e.book.Remove(id)
	}
}

// tryEntry evaluates one duration class for a fresh entry. A full downstream
// ring drops the signal and no position is created.
func (e *Engine) tryEntry(asset enum.Asset, class enum.DurationClass, momentum float64, tick model.Tick) bool {
	if e.book.Count(asset) >= e.risk.MaxPositionsPerAsset() {
		return false
	}

	threshold := e.cfg.EntryThreshold60
	if class == enum.Duration15Min {
		threshold = e.cfg.EntryThreshold15
	}
	if math.Abs(momentum) < threshold {
		return false
	}

	side := enum.SideUp
	if momentum < 0 {
		side = enum.SideDown
	}
	size := e.risk.TradeSizeDollars()

	instr := model.TradeInstruction{
		Asset:          asset,
		Duration:       class,
		Side:           side,
		PriceHintCents: tick.PriceCents,
		SizeDollars:    size,
	}
	if err := e.out.Push(instr); err != nil {
		logs.Warnf("instruction ring full, entry dropped, asset: %s, class: %s", asset.Name(), class.Name())
		e.metrics.IncRingDrop("instructions")
		return false
	}
	e.metrics.IncInstruction(false)
	logs.Infof("entry signal, %s %s at $%s, momentum: %.6f", instr.Ticker(), side.Name(), instr.AppendPriceHint(nil), momentum)

	e.book.Add(model.Position{
		Asset:           asset,
		Duration:        class,
		Side:            side,
		EntryMomentum:   momentum,
		EntryTsMS:       tick.TsMS,
		EntryPriceCents: tick.PriceCents,
		SizeDollars:     size,
	})
	return true
}
