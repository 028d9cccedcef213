package ops

import (
	"os"
	"time"

	"main/internal/execution"
	"main/internal/strategy"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// FileConfig mirrors the JSON config layout. Every field is optional;
// omitted fields fall back to the shipped defaults.
type FileConfig struct {
	BotName  string         `json:"botName"`
	Strategy StrategyConfig `json:"strategy"`
	Risk     RiskConfig     `json:"risk"`
	Filters  FiltersConfig  `json:"filters"`
	Markets  MarketsConfig  `json:"markets"`
	Rings    RingsConfig    `json:"rings"`
	Obs      ObsConfig      `json:"obs"`
	DryRun   *bool          `json:"dryRun"`
}

// StrategyConfig overrides the decision thresholds.
type StrategyConfig struct {
	EntryThreshold60 *float64 `json:"entryThreshold60"`
	EntryThreshold15 *float64 `json:"entryThreshold15"`
	StopLoss60       *float64 `json:"stopLoss60"`
	StopLoss15       *float64 `json:"stopLoss15"`
	CooldownMS       *int64   `json:"cooldownMs"`
	DiagnosticsEvery *uint64  `json:"diagnosticsEvery"`
}

// RiskConfig sets the session bankroll the tier exposure caps scale from.
type RiskConfig struct {
	StartingBalanceUSD *float64 `json:"startingBalanceUsd"`
}

// FiltersConfig overrides the entry value filters.
type FiltersConfig struct {
	MaxEntryPrice *float64 `json:"maxEntryPrice"`
	MinUpside     *float64 `json:"minUpside"`
	MaxSpread     *float64 `json:"maxSpread"`
}

// MarketsConfig points at the market discovery and quote endpoints.
type MarketsConfig struct {
	GammaBaseURL    string `json:"gammaBaseUrl"`
	ClobBaseURL     string `json:"clobBaseUrl"`
	RefreshSeconds  int    `json:"refreshSeconds"`
	QuoteTTLSeconds int    `json:"quoteTtlSeconds"`
}

// RingsConfig sizes the two lock-free rings.
type RingsConfig struct {
	TickCapacity        int `json:"tickCapacity"`
	InstructionCapacity int `json:"instructionCapacity"`
}

// ObsConfig configures the metrics listener and optional profiling.
type ObsConfig struct {
	MetricsAddr   string `json:"metricsAddr"`
	PyroscopeAddr string `json:"pyroscopeAddr"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	BotName            string
	Strategy           strategy.Config
	StartingBalanceUSD float64
	Filters            execution.Filters
	GammaBaseURL       string
	ClobBaseURL        string
	MarketRefresh      time.Duration
	QuoteTTL           time.Duration
	TickRingCap        int
	InstructionRingCap int
	MetricsAddr        string
	PyroscopeAddr      string
	DryRun             bool
}

// Defaults returns the configuration used when no file is given.
func Defaults() Loaded {
	return Loaded{
		BotName:            "polymarket-momentum",
		Strategy:           strategy.DefaultConfig(),
		StartingBalanceUSD: 100,
		Filters:            execution.DefaultFilters(),
		GammaBaseURL:       "https://gamma-api.polymarket.com",
		ClobBaseURL:        "https://clob.polymarket.com",
		MarketRefresh:      60 * time.Second,
		QuoteTTL:           5 * time.Second,
		TickRingCap:        1024,
		InstructionRingCap: 256,
		MetricsAddr:        ":9090",
		DryRun:             true,
	}
}

// Load reads a JSON config file and resolves it against the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Loaded, error) {
	loaded := Defaults()
	if path == "" {
		return loaded, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config file")
	}

	var cfg FileConfig
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config file")
	}

	return resolve(loaded, cfg)
}

func resolve(loaded Loaded, cfg FileConfig) (Loaded, error) {
	if cfg.BotName != "" {
		loaded.BotName = cfg.BotName
	}

	applyFloat(&loaded.Strategy.EntryThreshold60, cfg.Strategy.EntryThreshold60)
	applyFloat(&loaded.Strategy.EntryThreshold15, cfg.Strategy.EntryThreshold15)
	applyFloat(&loaded.Strategy.StopLoss60, cfg.Strategy.StopLoss60)
	applyFloat(&loaded.Strategy.StopLoss15, cfg.Strategy.StopLoss15)
	if cfg.Strategy.CooldownMS != nil {
		loaded.Strategy.CooldownMS = *cfg.Strategy.CooldownMS
	}
	if cfg.Strategy.DiagnosticsEvery != nil {
		loaded.Strategy.DiagnosticsEvery = *cfg.Strategy.DiagnosticsEvery
	}

	applyFloat(&loaded.StartingBalanceUSD, cfg.Risk.StartingBalanceUSD)
	applyFloat(&loaded.Filters.MaxEntryPrice, cfg.Filters.MaxEntryPrice)
	applyFloat(&loaded.Filters.MinUpside, cfg.Filters.MinUpside)
	applyFloat(&loaded.Filters.MaxSpread, cfg.Filters.MaxSpread)

	if cfg.Markets.GammaBaseURL != "" {
		loaded.GammaBaseURL = cfg.Markets.GammaBaseURL
	}
	if cfg.Markets.ClobBaseURL != "" {
		loaded.ClobBaseURL = cfg.Markets.ClobBaseURL
	}
	if cfg.Markets.RefreshSeconds > 0 {
		loaded.MarketRefresh = time.Duration(cfg.Markets.RefreshSeconds) * time.Second
	}
	if cfg.Markets.QuoteTTLSeconds > 0 {
		loaded.QuoteTTL = time.Duration(cfg.Markets.QuoteTTLSeconds) * time.Second
	}

	if cfg.Rings.TickCapacity > 0 {
		loaded.TickRingCap = cfg.Rings.TickCapacity
	}
	if cfg.Rings.InstructionCapacity > 0 {
		loaded.InstructionRingCap = cfg.Rings.InstructionCapacity
	}

	if cfg.Obs.MetricsAddr != "" {
		loaded.MetricsAddr = cfg.Obs.MetricsAddr
	}
	if cfg.Obs.PyroscopeAddr != "" {
		loaded.PyroscopeAddr = cfg.Obs.PyroscopeAddr
	}

	if cfg.DryRun != nil {
		loaded.DryRun = *cfg.DryRun
	}

	return loaded, validate(loaded)
}

func validate(loaded Loaded) error {
	if loaded.Strategy.EntryThreshold60 <= 0 || loaded.Strategy.EntryThreshold15 <= 0 {
		return errors.New("entry thresholds must be > 0")
	}
	if loaded.Strategy.StopLoss60 <= 0 || loaded.Strategy.StopLoss15 <= 0 {
		return errors.New("stop loss thresholds must be > 0")
	}
	if loaded.StartingBalanceUSD <= 0 {
		return errors.New("starting balance must be > 0")
	}
	if loaded.Filters.MaxEntryPrice <= 0 || loaded.Filters.MaxEntryPrice >= 1 {
		return errors.New("max entry price must be in (0, 1)")
	}
	return nil
}

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// Env carries the secrets loaded from the process environment.
type Env struct {
	PolymarketPrivateKey string
	ClobAPIKey           string
	ClobSecret           string
	ClobPassphrase       string
	DatabaseURL          string
}

// LoadEnv reads a dotenv file when path is non-empty, then resolves the
// environment. A missing dotenv file only warns; the process environment
// alone may carry everything.
func LoadEnv(path string) Env {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			logs.Warnf("load dotenv file, path: %s, err: %+v", path, err)
		}
	}

	return Env{
		PolymarketPrivateKey: os.Getenv("POLYMARKET_PRIVATE_KEY"),
		ClobAPIKey:           os.Getenv("CLOB_API_KEY"),
		ClobSecret:           os.Getenv("CLOB_SECRET"),
		ClobPassphrase:       os.Getenv("CLOB_PASSPHRASE"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
	}
}

// LiveTradingReady reports whether every credential live order placement
// needs is present.
func (e Env) LiveTradingReady() bool {
	return e.PolymarketPrivateKey != "" && e.ClobAPIKey != "" && e.ClobSecret != "" && e.ClobPassphrase != ""
}
