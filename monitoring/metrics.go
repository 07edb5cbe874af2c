package monitoring

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ticketsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_stored_total",
			Help: "Ticket store requests by outcome",
		},
		[]string{"outcome"},
	)

	paymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Payment records by method",
		},
		[]string{"method"},
	)

	verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_verifications_total",
			Help: "Ticket verification attempts by result",
		},
		[]string{"result"},
	)

	gatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Payment gateway verification calls by status",
		},
		[]string{"status"},
	)

	gatewayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of payment gateway verification calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
)

// TrackTicketStored records a store_ticket outcome: stored, skipped
// (soft failure) or rejected (validation).
func TrackTicketStored(outcome string) {
	ticketsStored.WithLabelValues(outcome).Inc()
}

func TrackPaymentRecorded(method string) {
	paymentsRecorded.WithLabelValues(method).Inc()
}

// TrackVerification records verified, already_verified, reset or
// not_found.
func TrackVerification(result string) {
	verifications.WithLabelValues(result).Inc()
}

func TrackGatewayRequest(status string) {
	gatewayRequests.WithLabelValues(status).Inc()
}

func TrackGatewayDuration(d time.Duration) {
	gatewayDuration.Observe(d.Seconds())
}

// StartMetricsServer exposes /metrics on its own port.
func StartMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
}
