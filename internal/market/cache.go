package market

import (
	"sync/atomic"

	"main/internal/model"
	"main/internal/model/enum"
)

// Snapshot maps assets to their currently tradable markets. A snapshot is
// immutable once published; readers must not mutate it.
type Snapshot map[enum.Asset][]model.Market

// Cache holds the latest market snapshot. The updater replaces the whole map
// atomically, so readers always observe either the old or the new snapshot,
// never a mix.
type Cache struct {
	snap atomic.Pointer[Snapshot]
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	empty := Snapshot{}
	c.snap.Store(&empty)
	return c
}

// Replace publishes a new snapshot wholesale.
func (c *Cache) Replace(s Snapshot) {
	if s == nil {
		s = Snapshot{}
	}
	c.snap.Store(&s)
}

// Snapshot returns the current snapshot.
func (c *Cache) Snapshot() Snapshot {
	return *c.snap.Load()
}

// Lookup resolves a tradable market for the asset and duration class. The
// fallback order is explicit: exact class first, then the daily category when
// the exact class is absent.
func (c *Cache) Lookup(asset enum.Asset, class enum.DurationClass) (model.Market, bool) {
	snap := c.Snapshot()
	markets := snap[asset]
	for _, m := range markets {
		if m.Duration == class {
			return m, true
		}
	}
	for _, m := range markets {
		if m.Duration == enum.DurationDaily {
			return m, true
		}
	}
	return model.Market{}, false
}

// Size reports the number of cached markets across all assets.
func (c *Cache) Size() int {
	n := 0
	for _, markets := range c.Snapshot() {
		n += len(markets)
	}
	return n
}
