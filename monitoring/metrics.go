package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutsInitiated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkouts_initiated_total",
			Help: "Checkout sessions created",
		},
	)

	PaymentsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_confirmed_total",
			Help: "Payment notifications that applied the pending to paid transition",
		},
	)

	DuplicateConfirmations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_confirmations_total",
			Help: "Redelivered payment notifications ignored as duplicates",
		},
	)

	OversoldRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oversold_rejections_total",
			Help: "Paid tickets rejected at the capacity ceiling, refund required",
		},
	)

	TicketsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_scanned_total",
			Help: "Tickets admitted at the door",
		},
	)

	ScanRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_rejections_total",
			Help: "Rejected scan attempts",
		},
		[]string{"reason"},
	)

	TicketDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_deliveries_total",
			Help: "Ticket email deliveries",
		},
		[]string{"status"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_login_attempts_total",
			Help: "Admin login attempts",
		},
		[]string{"status"},
	)
)
