package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setalip_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "setalip_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setalip_bookings_total",
			Help: "Bookings by resulting status",
		},
		[]string{"status"},
	)

	BookingCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setalip_booking_cancellations_total",
			Help: "Booking cancellations by actor and refund mode",
		},
		[]string{"actor", "refund"},
	)

	CreditMovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setalip_credit_movements_total",
			Help: "Credit ledger rows written by type",
		},
		[]string{"type"},
	)

	LoyaltyMovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setalip_loyalty_movements_total",
			Help: "Loyalty ledger rows written by type",
		},
		[]string{"type"},
	)

	PackageTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setalip_package_transactions_total",
			Help: "Package purchase transactions by status",
		},
		[]string{"status"},
	)

	AgendasGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setalip_agendas_generated_total",
			Help: "Agenda instances created from recurrences",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setalip_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "setalip_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setalip_events_published_total",
			Help: "Domain events published by routing key and outcome",
		},
		[]string{"routing_key", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status string) {
	BookingsTotal.WithLabelValues(status).Inc()
}

func RecordBookingCancellation(actor string, refund bool) {
	BookingCancellationsTotal.WithLabelValues(actor, strconv.FormatBool(refund)).Inc()
}

func RecordCreditMovement(txType string) {
	CreditMovementsTotal.WithLabelValues(txType).Inc()
}

func RecordLoyaltyMovement(txType string) {
	LoyaltyMovementsTotal.WithLabelValues(txType).Inc()
}

func RecordPackageTransaction(status string) {
	PackageTransactionsTotal.WithLabelValues(status).Inc()
}

func RecordAgendasGenerated(n int) {
	AgendasGeneratedTotal.Add(float64(n))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordEvent(routingKey, status string) {
	EventsPublishedTotal.WithLabelValues(routingKey, status).Inc()
}
