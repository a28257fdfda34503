// Package metrics exposes coordinator counters and gauges to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huddle_connections",
		Help: "Live signal connections.",
	})
	Rooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huddle_rooms",
		Help: "Rooms with at least one member.",
	})
	EventsIn = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_events_in_total",
		Help: "Inbound events by type.",
	}, []string{"type"})
	EventsOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_events_out_total",
		Help: "Outbound events delivered.",
	})
	DroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_dropped_frames_total",
		Help: "Outbound frames dropped to backpressure.",
	})
	Alerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_emergency_alerts_total",
		Help: "Emergency alerts raised.",
	})
	Reaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_reaped_sessions_total",
		Help: "Sessions evicted by the stale-connection reaper.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler { return promhttp.Handler() }
