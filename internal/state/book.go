package state

import (
	"main/internal/model"
	"main/internal/model/enum"
)

// PositionID identifies an open position inside a Book.
type PositionID uint64

// Book is the in-memory ledger of open speculative positions. It is owned by
// the strategy stage and requires no locking. Counts are partitioned by asset
// so ticks for one asset never perturb another's limits.
type Book struct {
	nextID PositionID
	open   map[PositionID]model.Position
	counts [enum.AssetCount]int
}

// NewBook creates an empty ledger.
func NewBook() *Book {
	return &Book{open: make(map[PositionID]model.Position, 16)}
}

// Add appends a position and returns its id.
func (b *Book) Add(p model.Position) PositionID {
	b.nextID++
	b.open[b.nextID] = p
	if int(p.Asset) < len(b.counts) {
		b.counts[p.Asset]++
	}
	return b.nextID
}

// Remove deletes a position by id. Unknown ids are ignored.
func (b *Book) Remove(id PositionID) {
	p, ok := b.open[id]
	if !ok {
		return
	}
	delete(b.open, id)
	if int(p.Asset) < len(b.counts) {
		b.counts[p.Asset]--
	}
}

// Count reports the number of open positions for one asset.
func (b *Book) Count(asset enum.Asset) int {
	if int(asset) >= len(b.counts) {
		return 0
	}
	return b.counts[asset]
}

// Len reports the total number of open positions.
func (b *Book) Len() int {
	return len(b.open)
}

// Each visits every open position for one asset. The callback must not
// mutate the book; collect ids and call Remove afterwards.
func (b *Book) Each(asset enum.Asset, fn func(id PositionID, p model.Position)) {
	for id, p := range b.open {
		if p.Asset == asset {
			fn(id, p)
		}
	}
}
