// internal/server/metrics.go
package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mcp-tpn-planner/internal/models"
)

type metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	warnings    *prometheus.CounterVec
	saved       prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tpn_planner",
			Name:      "resolutions_total",
			Help:      "Schedule resolutions by patient variant and outcome.",
		}, []string{"variant", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tpn_planner",
			Name:      "resolution_duration_seconds",
			Help:      "Time spent resolving one schedule.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"variant"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tpn_planner",
			Name:      "warnings_total",
			Help:      "Warnings attached to resolved schedules, by code.",
		}, []string{"code"}),
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tpn_planner",
			Name:      "schedules_saved_total",
			Help:      "Schedules written to storage.",
		}),
	}
	m.registry.MustRegister(
		m.resolutions, m.duration, m.warnings, m.saved,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) observe(variant string, start time.Time, sched *models.Schedule, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.resolutions.WithLabelValues(variant, outcome).Inc()
	m.duration.WithLabelValues(variant).Observe(time.Since(start).Seconds())
	if sched == nil {
		return
	}
	for _, w := range sched.Warnings {
		m.warnings.WithLabelValues(string(w.Code)).Inc()
	}
}
