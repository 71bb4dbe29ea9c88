// Package metrics exposes Prometheus metrics of the notification engine and a
// health endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

const namespace = "dailybot"

// Collector records engine measurements on its own registry. It implements
// notify.Recorder.
type Collector struct {
	Registry *prometheus.Registry

	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram
	DueTotal     prometheus.Counter
	Deliveries   *prometheus.CounterVec
	FetchLatency *prometheus.HistogramVec
	FetchErrors  *prometheus.CounterVec
}

// NewCollector registers all metrics on a fresh registry, together with the
// Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		Registry: reg,
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "The total number of evaluated minutes",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent evaluating and delivering one minute",
			Buckets:   prometheus.DefBuckets,
		}),
		DueTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_due_total",
			Help:      "The total number of subscriptions that matched their minute",
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Scheduled deliveries by outcome",
		}, []string{"outcome"}),
		FetchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_fetch_duration_seconds",
			Help:      "Content provider fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fetch_errors_total",
			Help:      "Content provider fetch failures by error code",
		}, []string{"provider", "code"}),
	}
}

func (c *Collector) ObserveTick(d time.Duration, due int) {
	c.Ticks.Inc()
	c.TickDuration.Observe(d.Seconds())
	c.DueTotal.Add(float64(due))
}

func (c *Collector) ObserveDelivery(outcome string) {
	c.Deliveries.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveFetch(provider string, d time.Duration, err error) {
	c.FetchLatency.WithLabelValues(provider).Observe(d.Seconds())
	if err != nil {
		c.FetchErrors.WithLabelValues(provider, apperrors.Code(err)).Inc()
	}
}
