package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"main/internal/bus"
	"main/internal/clob"
	"main/internal/execution"
	"main/internal/gamma"
	"main/internal/ingest"
	"main/internal/ingest/binance"
	"main/internal/journal"
	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/order/polymarket"
	"main/internal/risk"
	"main/internal/strategy"
	"main/pkg/conn"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/logs"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("engine: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config (optional)")
	envPath := flag.String("env", "", "path to dotenv file (optional)")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		return err
	}
	env := ops.LoadEnv(*envPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if loaded.PyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: loaded.BotName,
			ServerAddress:   loaded.PyroscopeAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		defer func() { _ = profiler.Stop() }()
	}

	registry := prometheus.NewRegistry()
	metrics := obs.NewMetrics(registry)
	go serveMetrics(loaded.MetricsAddr, registry)

	riskMgr := risk.NewManager(loaded.StartingBalanceUSD)

	var pg *conn.Client
	if env.DatabaseURL != "" {
		pg, err = conn.New(conn.Option{ConnString: env.DatabaseURL})
		if err != nil {
			return err
		}
		defer pg.Close()
	}

	jnl := journal.New(pg.DB(), loaded.BotName, riskMgr.SessionPnL)
	if err := jnl.Migrate(); err != nil {
		return err
	}
	go jnl.Run(ctx)

	tickProducer, tickConsumer := bus.NewRing[model.Tick](loaded.TickRingCap)
	instrProducer, instrConsumer := bus.NewRing[model.TradeInstruction](loaded.InstructionRingCap)

	cache := market.NewCache()
	gammaClient := gamma.NewClient(loaded.GammaBaseURL, 10*time.Second)
	updater := market.NewUpdater(cache, gammaClient, enum.Assets(), loaded.MarketRefresh)
	go updater.Run(ctx)

	books := clob.NewBooks(loaded.ClobBaseURL, 5*time.Second, loaded.QuoteTTL)

	var submitter execution.Submitter
	switch {
	case loaded.DryRun:
		logs.Info("dry run enabled, orders are logged only")
	case !env.LiveTradingReady():
		logs.Warn("live trading credentials incomplete, falling back to dry run")
	default:
		signer, err := polymarket.NewSigner(env.PolymarketPrivateKey, 0)
		if err != nil {
			return err
		}
		delegator, err := polymarket.NewDelegator(loaded.ClobBaseURL, nil, signer, polymarket.Creds{
			APIKey:     env.ClobAPIKey,
			Secret:     env.ClobSecret,
			Passphrase: env.ClobPassphrase,
		})
		if err != nil {
			return err
		}
		submitter = delegator
		logs.Info("live trading enabled")
	}

	executor := execution.NewEngine(instrConsumer, riskMgr, cache, books, submitter, jnl, metrics, loaded.Filters)
	go executor.Run(ctx)

	engine := strategy.NewEngine(loaded.Strategy, tickConsumer, instrProducer, riskMgr, jnl, metrics)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		engine.Run(ctx)
	}()

	feed := binance.NewTradePub(ctx)
	defer feed.Close()
	source := ingest.NewSource(feed, tickProducer, nil, metrics)
	if err := source.Start(ctx); err != nil {
		return err
	}

	logs.Infof("engine started, bot: %s, assets: %d, dry run: %t", loaded.BotName, len(enum.Assets()), submitter == nil)

	<-ctx.Done()
	logs.Info("shutting down")

	return nil
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	if err := http.ListenAndServe(addr, mux); err != nil {
		logs.Warnf("metrics listener stopped, err: %+v", err)
	}
}
