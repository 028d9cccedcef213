package ingest

import (
	"context"
	"math"
	"strconv"

	"main/internal/bus"
	"main/internal/ingest/binance"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// DefaultSymbols maps the exchange spot symbols to the assets the
// strategy trades on.
var DefaultSymbols = map[string]enum.Asset{
	"BTCUSDT": enum.AssetBTC,
	"ETHUSDT": enum.AssetETH,
	"SOLUSDT": enum.AssetSOL,
	"XRPUSDT": enum.AssetXRP,
}

// Source bridges the trade feed onto the tick ring. Conversion and push
// happen on the feed goroutine; a full ring drops the tick rather than
// blocking the feed.
type Source struct {
	feed    *binance.TradePub
	out     *bus.Producer[model.Tick]
	symbols map[string]enum.Asset
	metrics *obs.Metrics
}

func NewSource(feed *binance.TradePub, out *bus.Producer[model.Tick], symbols map[string]enum.Asset, metrics *obs.Metrics) *Source {
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}

	return &Source{
		feed:    feed,
		out:     out,
		symbols: symbols,
		metrics: metrics,
	}
}

// Start subscribes every configured symbol and begins forwarding ticks.
func (s *Source) Start(ctx context.Context) error {
	if err := s.feed.StartWebsocket(ctx); err != nil {
		return errors.Wrap(err, "start trade feed")
	}

	for symbol := range s.symbols {
		if err := s.feed.SubscribeTrades(ctx, symbol); err != nil {
			return errors.Wrap(err, "subscribe trades").With("symbol", symbol)
		}
	}

	s.feed.ObserveTrades(ctx, s.handle)

	return nil
}

func (s *Source) handle(t binance.Trade) {
	asset, ok := s.symbols[t.Symbol]
	if !ok {
		return
	}

	cents, ok := priceCents(t.Price)
	if !ok {
		logs.Warnf("drop trade with bad price, symbol: %s, price: %s", t.Symbol, t.Price)
		return
	}

	tick := model.Tick{
		Asset:      asset,
		PriceCents: cents,
		TsMS:       t.TradeTime,
	}

	if err := s.out.Push(tick); err != nil {
		s.metrics.IncRingDrop("ticks")
		logs.Warnf("tick ring full, drop tick, asset: %s", asset.Name())
		return
	}

	s.metrics.IncTickIngested(asset)
}

func priceCents(price string) (int64, bool) {
	f, err := strconv.ParseFloat(price, 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}

	return int64(math.Round(f * 100)), true
}
