package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects the bot's Prometheus metrics.
type Recorder struct {
	providerFetches   *prometheus.CounterVec
	fetchLatency      *prometheus.HistogramVec
	lastClose         *prometheus.GaugeVec
	signalsGenerated  *prometheus.CounterVec
	signalsRejected   *prometheus.CounterVec
	commandsHandled   *prometheus.CounterVec
	persistenceErrors *prometheus.CounterVec
}

// New registers the metrics on reg. Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		providerFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalbot_provider_fetch_total",
				Help: "Market data fetches by provider, symbol and outcome",
			},
			[]string{"provider", "symbol", "status"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalbot_provider_fetch_duration_seconds",
				Help:    "Duration of market data fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		lastClose: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalbot_last_close",
				Help: "Last close price seen for a symbol",
			},
			[]string{"symbol"},
		),
		signalsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalbot_signals_generated_total",
				Help: "Signals produced by source",
			},
			[]string{"source"},
		),
		signalsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalbot_signals_rejected_total",
				Help: "Generation attempts that produced no signal, by reason",
			},
			[]string{"reason"},
		),
		commandsHandled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalbot_chat_commands_total",
				Help: "Chat commands and callbacks handled",
			},
			[]string{"command"},
		),
		persistenceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalbot_persistence_errors_total",
				Help: "Failed inserts by table",
			},
			[]string{"table"},
		),
	}
}

func (r *Recorder) RecordFetch(provider, symbol, status string, seconds float64) {
	r.providerFetches.WithLabelValues(provider, symbol, status).Inc()
	r.fetchLatency.WithLabelValues(provider).Observe(seconds)
}

func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordSignal(source string) {
	r.signalsGenerated.WithLabelValues(source).Inc()
}

func (r *Recorder) RecordRejection(reason string) {
	r.signalsRejected.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordCommand(command string) {
	r.commandsHandled.WithLabelValues(command).Inc()
}

func (r *Recorder) RecordPersistenceError(table string) {
	r.persistenceErrors.WithLabelValues(table).Inc()
}
