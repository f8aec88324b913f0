// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Instrumentation for the poll/command pipeline. Registered on the default
// registry and served via promhttp from cmd/ventgate.
var (
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ventgate_poll_cycles_total",
		Help: "Completed poll cycles.",
	})

	PollOverruns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ventgate_poll_overruns_total",
		Help: "Poll cycles skipped because the previous cycle was still running.",
	})

	RequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ventgate_request_duration_seconds",
		Help:    "Wire request duration by kind.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ventgate_requests_total",
		Help: "Terminal request outcomes by kind and result.",
	}, []string{"kind", "result"})

	RetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ventgate_request_retries_total",
		Help: "Request retry attempts.",
	})

	ReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ventgate_reconnects_total",
		Help: "Session reconnect attempts after connection loss.",
	})

	FallbackActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ventgate_input_fallback_active",
		Help: "1 when input-register reads are latched to the holding function code.",
	})

	RegisterValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ventgate_register_value",
		Help: "Last decoded register value by logical name.",
	}, []string{"name"})

	RegisterAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ventgate_register_available",
		Help: "1 when the register's last poll succeeded.",
	}, []string{"name"})
)
