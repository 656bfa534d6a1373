package monitoring

import (
	"context"
	"log/slog"
	"time"

	"nightmarket/internal/store"
	"nightmarket/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Pending tickets created at checkout",
		},
	)

	ticketPayments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_payments_total",
			Help: "MarkPaid calls by result (applied, duplicate)",
		},
		[]string{"result"},
	)

	gateConfirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_confirmations_total",
			Help: "Gate confirm calls by outcome",
		},
		[]string{"outcome"},
	)

	eventOversold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_oversold_total",
			Help: "Payments that pushed soldTickets past totalTickets",
		},
		[]string{"event_id"},
	)

	vendorApplications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendor_applications_total",
			Help: "Vendor applications by merge branch (created, updated)",
		},
		[]string{"kind"},
	)

	vendorModeration = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendor_moderation_total",
			Help: "Admin moderation transitions by target status",
		},
		[]string{"status"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of lifecycle and merge operations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)

	eventCapacity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_tickets",
			Help: "Ticket capacity of active events (kind: total, sold)",
		},
		[]string{"event_id", "kind"},
	)
)

func TrackTicketCreated() {
	ticketsCreated.Inc()
}

func TrackPayment(result string) {
	ticketPayments.WithLabelValues(result).Inc()
}

func TrackConfirm(outcome string) {
	gateConfirmations.WithLabelValues(outcome).Inc()
}

func TrackOversold(eventID string) {
	eventOversold.WithLabelValues(eventID).Inc()
}

func TrackVendorApplication(kind string) {
	vendorApplications.WithLabelValues(kind).Inc()
}

func TrackModeration(status string) {
	vendorModeration.WithLabelValues(status).Inc()
}

func TrackRateLimited(scope string) {
	rateLimited.WithLabelValues(scope).Inc()
}

// ObserveOperation is meant to be deferred: defer ObserveOperation("confirm", time.Now())
func ObserveOperation(operation string, start time.Time) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

type Monitor struct {
	store    store.Store
	interval time.Duration
}

func NewMonitor(s store.Store, interval time.Duration) *Monitor {
	return &Monitor{store: s, interval: interval}
}

// Run refreshes capacity gauges until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CollectCapacity(ctx)
	for {
		select {
		case <-ticker.C:
			m.CollectCapacity(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) CollectCapacity(ctx context.Context) {
	events, err := store.Read(ctx, m.store, func(tx store.Tx) ([]*models.Event, error) {
		return tx.Events(ctx, models.EventActive)
	})
	if err != nil {
		slog.Error("Failed to collect capacity metrics", "error", err)
		return
	}
	for _, ev := range events {
		eventCapacity.WithLabelValues(ev.ID, "total").Set(float64(ev.TotalTickets))
		eventCapacity.WithLabelValues(ev.ID, "sold").Set(float64(ev.SoldTickets))
	}
}
