package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paddock",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paddock",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	reservationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paddock",
			Subsystem: "reservations",
			Name:      "transitions_total",
			Help:      "Reservation status changes by resulting status and actor.",
		},
		[]string{"status", "actor"},
	)

	paymentEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paddock",
			Subsystem: "payments",
			Name:      "events_total",
			Help:      "Payment status changes by resulting status.",
		},
		[]string{"status"},
	)

	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paddock",
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Outbound emails by outcome.",
		},
		[]string{"outcome"},
	)

	schedulerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paddock",
			Subsystem: "scheduler",
			Name:      "affected_records_total",
			Help:      "Records changed by scheduled jobs.",
		},
		[]string{"job"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		reservationTransitions,
		paymentEvents,
		emailsSent,
		schedulerRuns,
		collectors.NewGoCollector(),
	)
}

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordReservationTransition counts a reservation status change.
func RecordReservationTransition(status, actor string) {
	reservationTransitions.WithLabelValues(status, actor).Inc()
}

// RecordPaymentEvent counts a payment status change.
func RecordPaymentEvent(status string) {
	paymentEvents.WithLabelValues(status).Inc()
}

// RecordEmail counts an email delivery attempt.
func RecordEmail(outcome string) {
	emailsSent.WithLabelValues(outcome).Inc()
}

// RecordSchedulerRun adds the records a scheduled job touched.
func RecordSchedulerRun(job string, affected int) {
	schedulerRuns.WithLabelValues(job).Add(float64(affected))
}

// Handler returns the HTTP handler exposing the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
