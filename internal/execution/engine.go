package execution

import (
	"context"
	"runtime"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/risk"
)

// Additional rejection reasons produced before the filter stage.
const (
	ReasonNoMarket = "no_market"
	ReasonNoToken  = "no_token"
	ReasonNoQuote  = "no_quote"
	ReasonExposure = "exposure_ceiling"
)

// Activity outcome statuses reported to the sink.
const (
	StatusSubmitted = "submitted"
	StatusDryRun    = "dry_run"
	StatusFiltered  = "filtered"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

// MarketSource resolves an instruction against the live tradable-market
// cache.
type MarketSource interface {
	Lookup(asset enum.Asset, class enum.DurationClass) (model.Market, bool)
}

// BookFetcher returns a live two-sided quote for an outcome token. No data is
// a hard reject at the filter stage.
type BookFetcher interface {
	BestQuote(ctx context.Context, tokenID string) (model.Quote, error)
}

// Submitter places a signed order. It is called at most once per instruction;
// the core never retries a failed submission.
type Submitter interface {
	PlaceOrder(ctx context.Context, tokenID string, buy bool, sizeUSD, price float64) (orderID string, err error)
}

// Activity is one execution outcome, carrying enough fields to reconstruct
// the decision.
type Activity struct {
	Ticker    string
	Asset     enum.Asset
	Side      enum.Side
	Exit      bool
	Outcome   string
	Price     float64
	Size      float64
	Status    string
	Reason    string
	OrderID   string
	PnL       *float64
	LatencyMS int64
}

// ActivitySink receives execution outcomes. Implementations must never block
// the execution stage.
type ActivitySink interface {
	LogActivity(a Activity)
}

// Engine consumes trade instructions and turns them into submitted orders. A
// nil Submitter selects log-only mode: fills are simulated at the quoted
// price so the paper harness still exercises risk feedback.
type Engine struct {
	in        *bus.Consumer[model.TradeInstruction]
	risk      *risk.Manager
	markets   MarketSource
	books     BookFetcher
	submitter Submitter
	sink      ActivitySink
	metrics   *obs.Metrics
	filters   Filters

	lots         map[lotKey]lot
	committedUSD float64
}

// lotKey identifies the tracked entry cost of one open exposure.
type lotKey struct {
	asset enum.Asset
	class enum.DurationClass
	side  enum.Side
}

type lot struct {
	shares  float64
	costUSD float64
}

// NewEngine creates an execution engine. submitter, sink and metrics may be
// nil.
func NewEngine(in *bus.Consumer[model.TradeInstruction], riskMgr *risk.Manager, markets MarketSource, books BookFetcher, submitter Submitter, sink ActivitySink, metrics *obs.Metrics, filters Filters) *Engine {
	return &Engine{
		in:        in,
		risk:      riskMgr,
		markets:   markets,
		books:     books,
		submitter: submitter,
		sink:      sink,
		metrics:   metrics,
		filters:   filters,
		lots:      make(map[lotKey]lot),
	}
}

// Run polls the instruction ring until the context is cancelled. The stage
// performs network I/O and tolerates jitter, so empty polls yield
// cooperatively instead of busy-spinning.
func (e *Engine) Run(ctx context.Context) {
	if e.submitter == nil {
		logs.Warn("no order submitter configured, running in log-only mode")
	}
	logs.Info("execution engine started")

	idle := 0
	for {
		instr, err := e.in.Pop()
		if err != nil {
			select {
			case <-ctx.Done():
				logs.Info("execution engine stopped")
				return
			default:
			}
			idle++
			if idle >= 256 {
				idle = 0
				time.Sleep(time.Millisecond)
				continue
			}
			runtime.Gosched()
			continue
		}
		idle = 0
		e.safeHandle(ctx, instr)
	}
}

func (e *Engine) safeHandle(ctx context.Context, instr model.TradeInstruction) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("execution panic, instruction: %s, recovered: %+v", instr.Ticker(), r)
		}
	}()
	e.Handle(ctx, instr)
}

// Handle processes one instruction end to end. Every failure path drops the
// instruction without requeueing: trade intents go stale quickly and must not
// be reprocessed.
func (e *Engine) Handle(ctx context.Context, instr model.TradeInstruction) {
	start := time.Now()

	mkt, ok := e.markets.Lookup(instr.Asset, instr.Duration)
	if !ok {
		e.reject(instr, StatusRejected, ReasonNoMarket, 0, start)
		return
	}

	// Exit instructions carry the flipped side; flip back to unwind the token
	// actually held.
	resolveSide := instr.Side
	if instr.Exit {
		resolveSide = instr.Side.Flip()
	}
	tokenID, outcome, ok := ResolveToken(mkt, resolveSide)
	if !ok {
		e.reject(instr, StatusRejected, ReasonNoToken, 0, start)
		return
	}

	quote, err := e.books.BestQuote(ctx, tokenID)
	if err != nil {
		logs.Warnf("quote unavailable, instruction dropped, token: %s, err: %+v", tokenID, err)
		e.reject(instr, StatusRejected, ReasonNoQuote, 0, start)
		return
	}

	if instr.Exit {
		e.handleExit(ctx, instr, tokenID, outcome, resolveSide, quote, start)
		return
	}
	e.handleEntry(ctx, instr, tokenID, outcome, quote, start)
}

func (e *Engine) handleEntry(ctx context.Context, instr model.TradeInstruction, tokenID, outcome string, quote model.Quote, start time.Time) {
	price := quote.Ask

	upside, spread, reason, ok := e.filters.Evaluate(price, quote.Bid, quote.Ask)
	if !ok {
		logs.Infof("entry filtered, %s %s at %.3f, reason: %s", instr.Ticker(), instr.Side.Name(), price, reason)
		e.reject(instr, StatusFiltered, reason, price, start)
		return
	}

	size := float64(e.risk.TradeSizeDollars())
	if e.committedUSD+size > e.risk.MaxExposure() {
		e.reject(instr, StatusRejected, ReasonExposure, price, start)
		return
	}

	orderID, submitErr := e.submit(ctx, tokenID, true, size, price)
	if submitErr != nil {
		logs.Warnf("order submission failed, %s %s, err: %+v", instr.Ticker(), instr.Side.Name(), submitErr)
		e.metrics.IncOrderFailed()
		e.log(instr, outcome, price, size, StatusFailed, submitErr.Error(), "", nil, start)
		return
	}
	e.metrics.IncOrderSubmitted()

	key := lotKey{asset: instr.Asset, class: instr.Duration, side: instr.Side}
	held := e.lots[key]
	held.shares += size / price
	held.costUSD += size
	e.lots[key] = held
	e.committedUSD += size

	tier := e.risk.CurrentTier()
	logs.Infof("order submitted, %s %s, price: %.3f, size: $%.0f, upside: %.2f, spread: %.3f, tier: %s",
		instr.Ticker(), instr.Side.Name(), price, size, upside, spread, tier.Name())
	e.log(instr, outcome, price, size, e.status(), "", orderID, nil, start)
}

func (e *Engine) handleExit(ctx context.Context, instr model.TradeInstruction, tokenID, outcome string, heldSide enum.Side, quote model.Quote, start time.Time) {
	price := quote.Bid
	if price <= 0 {
		e.reject(instr, StatusRejected, ReasonNoQuote, price, start)
		return
	}

	key := lotKey{asset: instr.Asset, class: instr.Duration, side: heldSide}
	held, tracked := e.lots[key]
	shares := held.shares
	if !tracked || shares <= 0 {
		// No tracked entry (e.g. restart); fall back to the instruction size.
		shares = float64(instr.SizeDollars) / price
	}

	orderID, submitErr := e.submit(ctx, tokenID, false, shares*price, price)
	if submitErr != nil {
		logs.Warnf("exit submission failed, %s, err: %+v", instr.Ticker(), submitErr)
		e.metrics.IncOrderFailed()
		e.log(instr, outcome, price, shares*price, StatusFailed, submitErr.Error(), "", nil, start)
		return
	}
	e.metrics.IncOrderSubmitted()

	var pnl *float64
	if tracked {
		realized := shares*price - held.costUSD
		tier := e.risk.RecordFill(realized)
		e.metrics.SetSessionPnL(e.risk.SessionPnL())
		e.committedUSD -= held.costUSD
		if e.committedUSD < 0 {
			e.committedUSD = 0
		}
		delete(e.lots, key)
		pnl = &realized
		logs.Infof("exit submitted, %s, price: %.3f, pnl: $%.2f, session: $%.2f, tier: %s",
			instr.Ticker(), price, realized, e.risk.SessionPnL(), tier.Name())
	} else {
		logs.Infof("exit submitted, %s, price: %.3f, untracked lot", instr.Ticker(), price)
	}
	e.log(instr, outcome, price, shares*price, e.status(), "", orderID, pnl, start)
}

// submit delegates to the submitter, or simulates a fill at the quoted price
// in log-only mode.
func (e *Engine) submit(ctx context.Context, tokenID string, buy bool, sizeUSD, price float64) (string, error) {
	if e.submitter == nil {
		return "dry-run", nil
	}
	return e.submitter.PlaceOrder(ctx, tokenID, buy, sizeUSD, price)
}

func (e *Engine) status() string {
	if e.submitter == nil {
		return StatusDryRun
	}
	return StatusSubmitted
}

func (e *Engine) reject(instr model.TradeInstruction, status, reason string, price float64, start time.Time) {
	e.metrics.IncRejection(reason)
	e.log(instr, "", price, float64(instr.SizeDollars), status, reason, "", nil, start)
}

func (e *Engine) log(instr model.TradeInstruction, outcome string, price, size float64, status, reason, orderID string, pnl *float64, start time.Time) {
	e.metrics.ObserveDecisionLatency(time.Since(start).Seconds())
	if e.sink == nil {
		return
	}
	e.sink.LogActivity(Activity{
		Ticker:    instr.Ticker(),
		Asset:     instr.Asset,
		Side:      instr.Side,
		Exit:      instr.Exit,
		Outcome:   outcome,
		Price:     price,
		Size:      size,
		Status:    status,
		Reason:    reason,
		OrderID:   orderID,
		PnL:       pnl,
		LatencyMS: time.Since(start).Milliseconds(),
	})
}

// CommittedExposure reports the dollars currently committed to open entries.
func (e *Engine) CommittedExposure() float64 {
	return e.committedUSD
}
