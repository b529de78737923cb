package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "paper_bot"

// Metrics - все prometheus-метрики бота.
type Metrics struct {
	CyclesTotal      prometheus.Counter
	CycleErrors      *prometheus.CounterVec // labels: symbol
	CycleDuration    prometheus.Histogram
	FetchDuration    *prometheus.HistogramVec // labels: symbol
	CandlesIngested  *prometheus.CounterVec   // labels: symbol, source=rest|ws
	SignalsTotal     *prometheus.CounterVec   // labels: strategy, side
	TradesTotal      *prometheus.CounterVec   // labels: side, result=executed|rejected
	CashBalance      prometheus.Gauge
	WSReconnects     prometheus.Counter
	ReportDropped    prometheus.Counter
	ReportSinkErrors *prometheus.CounterVec // labels: sink
}

// NewMetrics создаёт и регистрирует метрики в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed bot cycles",
		}),
		CycleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_errors_total",
			Help:      "Per-symbol cycle errors",
		}, []string{"symbol"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Full cycle latency over all symbols",
			Buckets:   prometheus.DefBuckets,
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Candle fetch latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"symbol"}),
		CandlesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candles_ingested_total",
			Help:      "Candles ingested into the store",
		}, []string{"symbol", "source"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Signals produced by strategy rules",
		}, []string{"strategy", "side"}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Paper trades by outcome",
		}, []string{"side", "result"}),
		CashBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cash_balance",
			Help:      "Paper ledger cash balance",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_reconnects_total",
			Help:      "Streaming feed reconnect attempts",
		}),
		ReportDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_dropped_total",
			Help:      "Report events dropped because the buffer was full",
		}),
		ReportSinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_sink_errors_total",
			Help:      "Report backend failures",
		}, []string{"sink"}),
	}

	reg.MustRegister(
		m.CyclesTotal,
		m.CycleErrors,
		m.CycleDuration,
		m.FetchDuration,
		m.CandlesIngested,
		m.SignalsTotal,
		m.TradesTotal,
		m.CashBalance,
		m.WSReconnects,
		m.ReportDropped,
		m.ReportSinkErrors,
	)
	return m
}
