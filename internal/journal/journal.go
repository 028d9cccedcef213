// Package journal persists trade and strategy activity to PostgreSQL
// without ever blocking the trading path. Writes go through a bounded
// channel drained by a single goroutine; a full channel drops the record.
package journal

import (
	"context"
	"time"

	"main/internal/execution"
	"main/internal/model/enum"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	_defaultQueueSize         = 1024
	_defaultHeartbeatInterval = 10 * time.Second
)

// Journal writes trade logs, strategy snapshots and heartbeats. A nil
// Journal is valid and discards everything, so callers never branch on
// whether persistence is configured.
type Journal struct {
	db         *gorm.DB
	botName    string
	sessionPnL func() float64
	queue      chan any
	hbInterval time.Duration
}

// New creates a Journal over db. sessionPnL supplies the value stamped on
// each heartbeat; a nil func stamps zero. A nil db returns a nil Journal.
func New(db *gorm.DB, botName string, sessionPnL func() float64) *Journal {
	if db == nil {
		return nil
	}

	if sessionPnL == nil {
		sessionPnL = func() float64 { return 0 }
	}

	return &Journal{
		db:         db,
		botName:    botName,
		sessionPnL: sessionPnL,
		queue:      make(chan any, _defaultQueueSize),
		hbInterval: _defaultHeartbeatInterval,
	}
}

// Migrate creates or updates the journal tables.
func (j *Journal) Migrate() error {
	if j == nil {
		return nil
	}

	if err := j.db.AutoMigrate(&TradeLog{}, &StrategyLog{}, &Heartbeat{}); err != nil {
		return errors.Wrap(err, "migrate journal tables")
	}

	return nil
}

// Run drains the write queue and beats the heartbeat until ctx is done.
func (j *Journal) Run(ctx context.Context) {
	if j == nil {
		return
	}

	ticker := time.NewTicker(j.hbInterval)
	defer ticker.Stop()

	j.beat()

	for {
		select {
		case <-ctx.Done():
			j.drain()
			return
		case <-ticker.C:
			j.beat()
		case rec := <-j.queue:
			j.write(rec)
		}
	}
}

// LogActivity implements execution.ActivitySink.
func (j *Journal) LogActivity(a execution.Activity) {
	if j == nil {
		return
	}

	action := "ENTRY"
	if a.Exit {
		action = "EXIT"
	}

	j.enqueue(&TradeLog{
		Timestamp:    time.Now().UTC(),
		MarketTicker: a.Ticker,
		Asset:        a.Asset.Name(),
		Side:         a.Side.Name(),
		Action:       action,
		Outcome:      a.Outcome,
		Price:        a.Price,
		Size:         a.Size,
		Status:       a.Status,
		Reason:       a.Reason,
		OrderID:      a.OrderID,
		PnL:          a.PnL,
		LatencyMS:    a.LatencyMS,
	})
}

// StrategyTick implements strategy.Diagnostics.
func (j *Journal) StrategyTick(tick uint64, asset enum.Asset, priceCents int64, momentum60, momentum15 float64, openPositions int) {
	if j == nil {
		return
	}

	j.enqueue(&StrategyLog{
		Timestamp:     time.Now().UTC(),
		TickCount:     int64(tick),
		Asset:         asset.Name(),
		PriceCents:    priceCents,
		Momentum60:    momentum60,
		Momentum15:    momentum15,
		OpenPositions: openPositions,
	})
}

func (j *Journal) enqueue(rec any) {
	select {
	case j.queue <- rec:
	default:
		logs.Warn("journal queue full, drop record")
	}
}

func (j *Journal) write(rec any) {
	if err := j.db.Create(rec).Error; err != nil {
		logs.Errorf("write journal record, err: %+v", err)
	}
}

func (j *Journal) beat() {
	hb := Heartbeat{
		BotName:    j.botName,
		LastSeen:   time.Now().UTC(),
		SessionPnL: j.sessionPnL(),
	}

	err := j.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bot_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen", "session_pnl"}),
	}).Create(&hb).Error
	if err != nil {
		logs.Errorf("upsert heartbeat, err: %+v", err)
	}
}

func (j *Journal) drain() {
	for {
		select {
		case rec := <-j.queue:
			j.write(rec)
		default:
			return
		}
	}
}
