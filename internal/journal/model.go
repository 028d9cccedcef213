package journal

import "time"

// TradeLog is one row per execution outcome, filled and filtered alike.
type TradeLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Timestamp    time.Time `gorm:"index;not null"`
	MarketTicker string    `gorm:"size:64;not null"`
	Asset        string    `gorm:"size:8;not null"`
	Side         string    `gorm:"size:8;not null"`
	Action       string    `gorm:"size:8;not null"`
	Outcome      string    `gorm:"size:16"`
	Price        float64
	Size         float64
	Status       string `gorm:"size:16;not null"`
	Reason       string `gorm:"size:32"`
	OrderID      string   `gorm:"size:128"`
	PnL          *float64 `gorm:"column:pnl"`
	LatencyMS    int64    `gorm:"column:latency_ms"`
}

func (TradeLog) TableName() string {
	return "trade_logs"
}

// StrategyLog is the periodic per-asset snapshot of the decision inputs.
type StrategyLog struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Timestamp     time.Time `gorm:"index;not null"`
	TickCount     int64     `gorm:"not null"`
	Asset         string    `gorm:"size:8;not null"`
	PriceCents    int64     `gorm:"not null"`
	Momentum60    float64
	Momentum15    float64
	OpenPositions int
}

func (StrategyLog) TableName() string {
	return "strategy_logs"
}

// Heartbeat is a single upserted row per bot instance.
type Heartbeat struct {
	BotName    string    `gorm:"primaryKey;size:64"`
	LastSeen   time.Time `gorm:"not null"`
	SessionPnL float64   `gorm:"column:session_pnl"`
}

func (Heartbeat) TableName() string {
	return "bot_heartbeat"
}
