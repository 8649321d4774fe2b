package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	alertsSent  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
	watched     prometheus.Gauge
	ticksTotal  *prometheus.CounterVec
	storeWrites *prometheus.CounterVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder on the given registry; tests pass a fresh one.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		alertsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debrief_alerts_sent_total",
				Help: "Alerts handed to the chat transport, by kind and delivery result",
			},
			[]string{"kind", "result"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debrief_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "debrief_last_price",
				Help: "Last observed price for a watched symbol",
			},
			[]string{"symbol"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debrief_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		watched: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "debrief_watched_symbols",
				Help: "Symbols with monitoring enabled at the last tick",
			},
		),
		ticksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debrief_monitor_ticks_total",
				Help: "Monitor ticks by outcome",
			},
			[]string{"outcome"},
		),
		storeWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debrief_store_writes_total",
				Help: "Config store writes by target and result",
			},
			[]string{"target", "result"},
		),
	}
}

// RecordAlertSent records one dispatch attempt.
func (r *Recorder) RecordAlertSent(kind string, delivered bool) {
	r.alertsSent.WithLabelValues(kind, result(delivered)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordTick records a finished (or skipped) monitor tick.
func (r *Recorder) RecordTick(outcome string, watched int) {
	r.ticksTotal.WithLabelValues(outcome).Inc()
	r.watched.Set(float64(watched))
}

// RecordStoreWrite records a config store write against the local file or remote document.
func (r *Recorder) RecordStoreWrite(target string, ok bool) {
	r.storeWrites.WithLabelValues(target, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordAlertSent(string, bool) {}
func (Nop) RecordError(string) {}
func (Nop) RecordLastPrice(string, float64) {}
func (Nop) RecordLatency(string, float64) {}
func (Nop) RecordTick(string, int) {}
func (Nop) RecordStoreWrite(string, bool) {}
