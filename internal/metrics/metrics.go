// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	VentsCreated  prometheus.Counter
	VentLikes     *prometheus.CounterVec // action: like, unlike
	VentsSwept    prometheus.Counter
	RatingsAdded  *prometheus.CounterVec // meal
	TipsCreated   prometheus.Counter
	TipUpvotes    prometheus.Counter
	Complaints    *prometheus.CounterVec // status transitions, including the initial Pending
	AIParses      *prometheus.CounterVec // result: ok, error
	JobRuns       *prometheus.CounterVec // job, result
	FeedClients   prometheus.Gauge
	FeedPublishes *prometheus.CounterVec // topic
}

// New builds the collectors on a private registry so several instances can
// coexist in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hsk_http_requests_total",
				Help: "Total number of HTTP requests by route pattern and status code",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hsk_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		VentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hsk_vents_created_total",
			Help: "Total number of vent posts created",
		}),
		VentLikes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hsk_vent_likes_total",
				Help: "Total number of vent like toggles",
			},
			[]string{"action"},
		),
		VentsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hsk_vents_swept_total",
			Help: "Total number of expired vent posts deleted",
		}),
		RatingsAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hsk_mess_ratings_total",
				Help: "Total number of mess ratings submitted",
			},
			[]string{"meal"},
		),
		TipsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hsk_tips_created_total",
			Help: "Total number of survival tips created",
		}),
		TipUpvotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hsk_tip_upvotes_total",
			Help: "Total number of tip upvotes",
		}),
		Complaints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hsk_complaint_status_total",
				Help: "Total number of complaint timeline entries by status",
			},
			[]string{"status"},
		),
		AIParses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hsk_calendar_ai_parses_total",
				Help: "Total number of AI calendar parse attempts",
			},
			[]string{"result"},
		),
		JobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hsk_job_runs_total",
				Help: "Total number of scheduled job runs",
			},
			[]string{"job", "result"},
		),
		FeedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hsk_feed_clients",
			Help: "Number of connected realtime feed clients",
		}),
		FeedPublishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hsk_feed_events_total",
				Help: "Total number of realtime feed events published",
			},
			[]string{"topic"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.RequestDuration,
		m.VentsCreated,
		m.VentLikes,
		m.VentsSwept,
		m.RatingsAdded,
		m.TipsCreated,
		m.TipUpvotes,
		m.Complaints,
		m.AIParses,
		m.JobRuns,
		m.FeedClients,
		m.FeedPublishes,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
