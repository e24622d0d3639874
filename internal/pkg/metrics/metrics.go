package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Punch results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	// PunchesTotal counts clock-in and clock-out attempts by outcome.
	PunchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_punches_total",
			Help: "Clock-in and clock-out attempts.",
		},
		[]string{"type", "result"},
	)

	// RegularizationsTotal counts regularization requests and reviews.
	RegularizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_regularizations_total",
			Help: "Regularization requests, approvals and rejections.",
		},
		[]string{"action"},
	)

	// FaceMatchesTotal counts face verification outcomes.
	FaceMatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_face_matches_total",
			Help: "Face verification attempts by outcome.",
		},
		[]string{"result"},
	)

	FaceCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_face_cache_hits_total",
		Help: "Face gallery cache hits.",
	})
	FaceCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_face_cache_misses_total",
		Help: "Face gallery cache misses.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_http_requests_total",
			Help: "HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// StreamSubscribers is the number of open attendance event streams.
	StreamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "attendance_stream_subscribers",
		Help: "Open attendance event streams.",
	})
	StreamDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_stream_dropped_total",
		Help: "Attendance events dropped for slow stream subscribers.",
	})
)
