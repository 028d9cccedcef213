package sim

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
)

// Venue is a fake prediction market venue. It serves synthetic markets
// for every asset and duration class and quotes every token around a
// mid that drifts with a seeded PRNG.
type Venue struct {
	rng *rand.Rand
	mid float64
}

func NewVenue(seed int64) *Venue {
	return &Venue{
		rng: rand.New(rand.NewSource(seed)),
		mid: 0.50,
	}
}

// ActiveMarkets implements market.Source with one 15-minute and one
// hourly market per asset, end dates measured from now.
func (v *Venue) ActiveMarkets(_ context.Context, assets []enum.Asset) (market.Snapshot, error) {
	now := time.Now().UTC()
	snap := make(market.Snapshot, len(assets))

	for _, asset := range assets {
		for _, class := range []enum.DurationClass{enum.Duration15Min, enum.Duration60Min} {
			slug := fmt.Sprintf("sim-%s-%s", strings.ToLower(asset.Name()), strings.ToLower(class.Name()))
			snap[asset] = append(snap[asset], model.Market{
				Asset:       asset,
				Duration:    class,
				ConditionID: slug,
				Question:    fmt.Sprintf("%s up or down, %s", asset.Name(), strings.ToLower(class.Name())),
				Slug:        slug,
				TokenIDs:    []string{tokenID(asset, class, enum.SideUp), tokenID(asset, class, enum.SideDown)},
				Outcomes:    []string{"Up", "Down"},
				EndDate:     now.Add(class.Lifetime()),
			})
		}
	}

	return snap, nil
}

// BestQuote implements execution.BookFetcher with a two-cent spread
// around a drifting mid clamped inside (0.05, 0.95).
func (v *Venue) BestQuote(_ context.Context, _ string) (model.Quote, error) {
	v.mid += (v.rng.Float64() - 0.5) * 0.02
	if v.mid < 0.05 {
		v.mid = 0.05
	}
	if v.mid > 0.95 {
		v.mid = 0.95
	}

	return model.Quote{
		Bid: v.mid - 0.01,
		Ask: v.mid + 0.01,
	}, nil
}

func tokenID(asset enum.Asset, class enum.DurationClass, side enum.Side) string {
	return fmt.Sprintf("sim-token-%s-%s-%s", strings.ToLower(asset.Name()), strings.ToLower(class.Name()), strings.ToLower(side.Name()))
}
