// Paper runs the full decision pipeline against a synthetic venue. No
// network calls, no database, deterministic for a given seed.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/internal/bus"
	"main/internal/execution"
	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/risk"
	"main/internal/sim"
	"main/internal/strategy"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yanun0323/logs"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("paper: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config (optional)")
	seed := flag.Int64("seed", 1, "PRNG seed for the synthetic feed and venue")
	duration := flag.Duration("duration", time.Minute, "how long to run")
	tickInterval := flag.Duration("tick-interval", 5*time.Millisecond, "delay between synthetic ticks")
	stepPc := flag.Float64("step-pc", 0.02, "per-tick price step stddev in percent")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	metrics := obs.NewMetrics(prometheus.NewRegistry())
	riskMgr := risk.NewManager(loaded.StartingBalanceUSD)

	tickProducer, tickConsumer := bus.NewRing[model.Tick](loaded.TickRingCap)
	instrProducer, instrConsumer := bus.NewRing[model.TradeInstruction](loaded.InstructionRingCap)

	venue := sim.NewVenue(*seed)
	cache := market.NewCache()
	updater := market.NewUpdater(cache, venue, enum.Assets(), loaded.MarketRefresh)
	go updater.Run(ctx)

	executor := execution.NewEngine(instrConsumer, riskMgr, cache, venue, nil, nil, metrics, loaded.Filters)
	go executor.Run(ctx)

	engine := strategy.NewEngine(loaded.Strategy, tickConsumer, instrProducer, riskMgr, nil, metrics)
	go engine.Run(ctx)

	gen := sim.NewGenerator(*seed, enum.Assets(), *stepPc)
	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	ticks, drops := 0, 0
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case now := <-ticker.C:
			ticks++
			if err := tickProducer.Push(gen.Next(now)); err != nil {
				drops++
			}
		}
	}

	// let the pipeline drain the last instructions
	time.Sleep(50 * time.Millisecond)

	logs.Infof("paper run finished, ticks: %d, drops: %d", ticks, drops)
	logs.Infof("session pnl: %.2f, tier: %s, open positions: %d, committed: %.2f",
		riskMgr.SessionPnL(), riskMgr.CurrentTier().Name(), engine.Book().Len(), executor.CommittedExposure())

	return nil
}
