package performance

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports the tracker's state to prometheus.
type Metrics struct {
	OrdersSubmitted prometheus.Counter
	TradesClosed    *prometheus.CounterVec
	RealizedPnL     prometheus.Gauge
	Equity          prometheus.Gauge
	WinRate         prometheus.Gauge
	DrawdownPct     prometheus.Gauge
	ConsecLosses    prometheus.Gauge
	EmergencyStop   prometheus.Gauge
}

// NewMetrics builds the metric set under the argofx namespace.
func NewMetrics() *Metrics {
	return &Metrics{
		OrdersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argofx",
			Name:      "orders_submitted_total",
			Help:      "Count of orders submitted to the broker.",
		}),
		TradesClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argofx",
			Name:      "trades_closed_total",
			Help:      "Count of closed trades by result.",
		}, []string{"result"}),
		RealizedPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argofx",
			Name:      "realized_pnl",
			Help:      "Cumulative realized profit and loss.",
		}),
		Equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argofx",
			Name:      "equity",
			Help:      "Last observed account equity.",
		}),
		WinRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argofx",
			Name:      "win_rate",
			Help:      "Rolling win rate over the configured window.",
		}),
		DrawdownPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argofx",
			Name:      "drawdown_pct",
			Help:      "Current drawdown from the equity high watermark, percent.",
		}),
		ConsecLosses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argofx",
			Name:      "consecutive_losses",
			Help:      "Length of the current losing streak.",
		}),
		EmergencyStop: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argofx",
			Name:      "emergency_stop_engaged",
			Help:      "1 while the emergency stop is engaged.",
		}),
	}
}

// Register registers every metric with the registry.
func (m *Metrics) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.OrdersSubmitted,
		m.TradesClosed,
		m.RealizedPnL,
		m.Equity,
		m.WinRate,
		m.DrawdownPct,
		m.ConsecLosses,
		m.EmergencyStop,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}
