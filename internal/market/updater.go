package market

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/model/enum"
)

// Source discovers the currently tradable markets for a set of assets. The
// gamma client implements it.
type Source interface {
	ActiveMarkets(ctx context.Context, assets []enum.Asset) (Snapshot, error)
}

// Updater refreshes a Cache wholesale on a fixed interval. Markets published
// by the source are already filtered to active, unexpired instruments with at
// least two resolvable outcome tokens.
type Updater struct {
	cache    *Cache
	source   Source
	assets   []enum.Asset
	interval time.Duration
}

// NewUpdater creates an updater. Intervals under a second are clamped to the
// 300s default.
func NewUpdater(cache *Cache, source Source, assets []enum.Asset, interval time.Duration) *Updater {
	if interval < time.Second {
		interval = 300 * time.Second
	}
	return &Updater{cache: cache, source: source, assets: assets, interval: interval}
}

// Run refreshes once immediately, then on every interval tick until the
// context is cancelled. A failed refresh keeps the previous snapshot.
func (u *Updater) Run(ctx context.Context) {
	u.refresh(ctx)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.refresh(ctx)
		}
	}
}

func (u *Updater) refresh(ctx context.Context) {
	snap, err := u.source.ActiveMarkets(ctx, u.assets)
	if err != nil {
		logs.Warnf("market cache refresh failed, keeping previous snapshot, err: %+v", err)
		return
	}
	u.cache.Replace(snap)
	logs.Infof("market cache refreshed, markets: %d", u.cache.Size())
}
