// Package sim provides a deterministic synthetic feed and venue for
// paper runs, exercising the full pipeline without touching any
// external service.
package sim

import (
	"math"
	"math/rand"
	"time"

	"main/internal/model"
	"main/internal/model/enum"
)

// Generator walks each asset's spot price with a seeded PRNG and emits
// ticks round-robin across the assets. The same seed replays the same
// price path.
type Generator struct {
	rng    *rand.Rand
	assets []enum.Asset
	prices []float64
	stepPc float64
	index  int
}

var defaultBasePrices = map[enum.Asset]float64{
	enum.AssetBTC: 97000,
	enum.AssetETH: 3400,
	enum.AssetSOL: 210,
	enum.AssetXRP: 2.4,
}

// NewGenerator creates a generator over assets. stepPc is the per-tick
// standard deviation in percent of the current price.
func NewGenerator(seed int64, assets []enum.Asset, stepPc float64) *Generator {
	if len(assets) == 0 {
		assets = enum.Assets()
	}
	if stepPc <= 0 {
		stepPc = 0.02
	}

	prices := make([]float64, len(assets))
	for i, asset := range assets {
		prices[i] = defaultBasePrices[asset]
		if prices[i] == 0 {
			prices[i] = 100
		}
	}

	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		assets: assets,
		prices: prices,
		stepPc: stepPc,
	}
}

// Next emits the next tick in sequence.
func (g *Generator) Next(now time.Time) model.Tick {
	i := g.index
	g.index = (g.index + 1) % len(g.assets)

	step := g.rng.NormFloat64() * g.stepPc / 100
	g.prices[i] *= 1 + step
	if g.prices[i] < 0.01 {
		g.prices[i] = 0.01
	}

	return model.Tick{
		Asset:      g.assets[i],
		PriceCents: int64(math.Round(g.prices[i] * 100)),
		TsMS:       now.UnixMilli(),
	}
}
