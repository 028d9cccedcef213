package obs

import (
	"github.com/prometheus/client_golang/prometheus"

	"main/internal/model/enum"
)

// Metrics collects pipeline counters. All methods are nil-safe so stages can
// run without observability wired (tests, paper trading).
type Metrics struct {
	ticksIngested   *prometheus.CounterVec
	ringDrops       *prometheus.CounterVec
	ticksProcessed  prometheus.Counter
	instructions    *prometheus.CounterVec
	ordersSubmitted prometheus.Counter
	ordersFailed    prometheus.Counter
	rejections      *prometheus.CounterVec
	sessionPnL      prometheus.Gauge
	openPositions   prometheus.Gauge
	decisionLatency prometheus.Histogram
}

// NewMetrics builds and registers the engine metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticksIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_ticks_ingested_total", Help: "Ticks pushed into the strategy ring",
		}, []string{"asset"}),
		ringDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_ring_drops_total", Help: "Items dropped because a ring was full",
		}, []string{"ring"}),
		ticksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_ticks_processed_total", Help: "Ticks consumed by the strategy stage",
		}),
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_instructions_total", Help: "Trade instructions emitted by the strategy",
		}, []string{"kind"}),
		ordersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_orders_submitted_total", Help: "Orders successfully handed to the exchange",
		}),
		ordersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_orders_failed_total", Help: "Order submissions rejected by the exchange",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_instruction_rejections_total", Help: "Instructions dropped before submission",
		}, []string{"reason"}),
		sessionPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engine_session_pnl_dollars", Help: "Session P&L in dollars",
		}),
		openPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engine_open_positions", Help: "Open speculative positions",
		}),
		decisionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "engine_decision_latency_seconds",
			Help:    "Instruction receive to terminal outcome latency",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
	reg.MustRegister(
		m.ticksIngested, m.ringDrops, m.ticksProcessed, m.instructions,
		m.ordersSubmitted, m.ordersFailed, m.rejections,
		m.sessionPnL, m.openPositions, m.decisionLatency,
	)
	return m
}

// IncTickIngested counts one tick produced by ingestion for the asset.
func (m *Metrics) IncTickIngested(asset enum.Asset) {
	if m == nil {
		return
	}
	m.ticksIngested.WithLabelValues(asset.Name()).Inc()
}

// IncRingDrop counts one drop on the named ring ("ticks" or "instructions").
func (m *Metrics) IncRingDrop(ring string) {
	if m == nil {
		return
	}
	m.ringDrops.WithLabelValues(ring).Inc()
}

// IncTickProcessed counts one tick consumed by the strategy.
func (m *Metrics) IncTickProcessed() {
	if m == nil {
		return
	}
	m.ticksProcessed.Inc()
}

// IncInstruction counts one emitted instruction by kind.
func (m *Metrics) IncInstruction(exit bool) {
	if m == nil {
		return
	}
	kind := "entry"
	if exit {
		kind = "exit"
	}
	m.instructions.WithLabelValues(kind).Inc()
}

// IncOrderSubmitted counts one accepted order.
func (m *Metrics) IncOrderSubmitted() {
	if m == nil {
		return
	}
	m.ordersSubmitted.Inc()
}

// IncOrderFailed counts one order submission failure.
func (m *Metrics) IncOrderFailed() {
	if m == nil {
		return
	}
	m.ordersFailed.Inc()
}

// IncRejection counts one instruction dropped before submission.
func (m *Metrics) IncRejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// SetSessionPnL publishes the session P&L gauge.
func (m *Metrics) SetSessionPnL(usd float64) {
	if m == nil {
		return
	}
	m.sessionPnL.Set(usd)
}

// SetOpenPositions publishes the open position gauge.
func (m *Metrics) SetOpenPositions(n int) {
	if m == nil {
		return
	}
	m.openPositions.Set(float64(n))
}

// ObserveDecisionLatency records one instruction handling latency sample.
func (m *Metrics) ObserveDecisionLatency(seconds float64) {
	if m == nil {
		return
	}
	m.decisionLatency.Observe(seconds)
}
