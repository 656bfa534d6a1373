package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nightmarket/internal/status"
	"nightmarket/internal/store"
	"nightmarket/models"
	"nightmarket/monitoring"
)

type ConfirmOutcome string

const (
	OutcomeAdmitted        ConfirmOutcome = "admitted"
	OutcomeAlreadyAdmitted ConfirmOutcome = "already_admitted"
	OutcomeNotFound        ConfirmOutcome = "not_found"
	OutcomeUnverified      ConfirmOutcome = "payment_unverified"
)

// ConfirmResult is the gate-scan result. Only OK means the holder may enter;
// Already is informational and Ticket is nil only when the reference is unknown.
type ConfirmResult struct {
	OK      bool           `json:"ok"`
	Already bool           `json:"already"`
	Ticket  *models.Ticket `json:"ticket"`
}

func (r ConfirmResult) Outcome() ConfirmOutcome {
	switch {
	case r.OK:
		return OutcomeAdmitted
	case r.Already:
		return OutcomeAlreadyAdmitted
	case r.Ticket == nil:
		return OutcomeNotFound
	default:
		return OutcomeUnverified
	}
}

type MarkPaidResult struct {
	// Applied is false when the ticket was already paid or confirmed.
	Applied bool           `json:"applied"`
	Ticket  *models.Ticket `json:"ticket"`
}

type CreatePendingParams struct {
	Reference string
	EventID   string
	Buyer     models.Buyer
	Quantity  int
	Amount    int64
}

// AdmissionPublisher receives every successful admission. Failures are
// logged and never change the confirm result.
type AdmissionPublisher interface {
	PublishAdmission(ctx context.Context, t *models.Ticket) error
}

type TicketService struct {
	store store.Store
	cache EventCache
	feed  AdmissionPublisher
	now   func() time.Time
}

// NewTicketService wires the lifecycle engine. cache and feed may be nil.
func NewTicketService(s store.Store, cache EventCache, feed AdmissionPublisher) *TicketService {
	return &TicketService{
		store: s,
		cache: cache,
		feed:  feed,
		now:   time.Now,
	}
}

func (s *TicketService) CreatePending(ctx context.Context, p CreatePendingParams) (*models.Ticket, error) {
	defer monitoring.ObserveOperation("create_pending", time.Now())

	p.Reference = strings.TrimSpace(p.Reference)
	switch {
	case p.Reference == "":
		return nil, fmt.Errorf("%w: reference is required", status.ErrInvalidInput)
	case p.EventID == "":
		return nil, fmt.Errorf("%w: event id is required", status.ErrInvalidInput)
	case p.Quantity < 1:
		return nil, fmt.Errorf("%w: quantity must be at least 1", status.ErrInvalidInput)
	case p.Amount < 0:
		return nil, fmt.Errorf("%w: amount must not be negative", status.ErrInvalidInput)
	}

	ticket := &models.Ticket{
		Reference:   p.Reference,
		EventID:     p.EventID,
		Buyer:       p.Buyer,
		Quantity:    p.Quantity,
		Amount:      p.Amount,
		Status:      models.TicketPending,
		PurchasedAt: s.now(),
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		ev, err := tx.Event(ctx, p.EventID)
		if errors.Is(err, store.ErrNotFound) {
			return status.ErrEventNotFound
		}
		if err != nil {
			return err
		}
		ticket.EventTitle = ev.Title

		if err := tx.CreateTicket(ctx, ticket); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return status.ErrTicketExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.TrackTicketCreated()
	slog.Info("Ticket created", "reference", ticket.Reference, "event_id", ticket.EventID, "quantity", ticket.Quantity)
	return ticket, nil
}

// MarkPaid is called by the payment collaborator once funds are verified. It
// is idempotent: a reference that is already paid or confirmed is left as is
// and soldTickets is not touched again. The stored quantity is what gets
// counted.
func (s *TicketService) MarkPaid(ctx context.Context, reference, eventID string, quantity int) (MarkPaidResult, error) {
	defer monitoring.ObserveOperation("mark_paid", time.Now())

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return MarkPaidResult{}, fmt.Errorf("%w: reference is required", status.ErrInvalidInput)
	}

	var (
		res      MarkPaidResult
		oversold bool
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		res, oversold = MarkPaidResult{}, false

		ticket, err := tx.Ticket(ctx, reference)
		if errors.Is(err, store.ErrNotFound) {
			return status.ErrTicketNotFound
		}
		if err != nil {
			return err
		}
		if eventID != "" && ticket.EventID != eventID {
			return fmt.Errorf("%w: %s belongs to %s, not %s", status.ErrEventMismatch, reference, ticket.EventID, eventID)
		}
		if quantity > 0 && quantity != ticket.Quantity {
			slog.Warn("MarkPaid quantity differs from ticket, using stored quantity",
				"reference", reference, "reported", quantity, "stored", ticket.Quantity)
		}

		res.Ticket = ticket
		if !ticket.Status.CanTransitionTo(models.TicketPaid) {
			return nil
		}

		at := s.now()
		if err := tx.UpdateTicketStatus(ctx, reference, models.TicketPending, models.TicketPaid, at); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil
			}
			return err
		}
		if err := tx.IncrementSoldTickets(ctx, ticket.EventID, ticket.Quantity); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return status.ErrEventNotFound
			}
			return err
		}

		ev, err := tx.Event(ctx, ticket.EventID)
		if err != nil {
			return err
		}
		oversold = ev.SoldTickets > ev.TotalTickets

		ticket.Status = models.TicketPaid
		ticket.PaidAt = &at
		res.Applied = true
		return nil
	})
	if err != nil {
		return MarkPaidResult{}, err
	}

	if !res.Applied {
		monitoring.TrackPayment("duplicate")
		slog.Info("MarkPaid ignored, ticket already past pending", "reference", reference, "status", res.Ticket.Status)
		return res, nil
	}

	monitoring.TrackPayment("applied")
	slog.Info("Ticket paid", "reference", reference, "event_id", res.Ticket.EventID, "quantity", res.Ticket.Quantity)
	if oversold {
		monitoring.TrackOversold(res.Ticket.EventID)
		slog.Warn("Event oversold", "event_id", res.Ticket.EventID, "reference", reference)
	}
	s.invalidateEvent(ctx, res.Ticket.EventID)
	return res, nil
}

// Confirm admits a paid ticket at the gate. Concurrent calls for the same
// reference are safe: the paid -> confirmed step is a conditional update, so
// exactly one caller sees OK and the rest see Already.
func (s *TicketService) Confirm(ctx context.Context, reference string) (ConfirmResult, error) {
	defer monitoring.ObserveOperation("confirm", time.Now())

	reference = strings.TrimSpace(reference)
	if reference == "" {
		monitoring.TrackConfirm(string(OutcomeNotFound))
		return ConfirmResult{}, nil
	}

	var res ConfirmResult
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		res = ConfirmResult{}

		ticket, err := tx.Ticket(ctx, reference)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		res.Ticket = ticket

		switch {
		case ticket.Status == models.TicketConfirmed:
			res.Already = true
			return nil
		case !ticket.Status.CanTransitionTo(models.TicketConfirmed):
			return nil
		}

		at := s.now()
		err = tx.UpdateTicketStatus(ctx, reference, ticket.Status, models.TicketConfirmed, at)
		if errors.Is(err, store.ErrConflict) {
			// Lost the race to another gate; report what is stored now.
			current, err := tx.Ticket(ctx, reference)
			if err != nil {
				return err
			}
			res.Ticket = current
			res.Already = current.Status == models.TicketConfirmed
			return nil
		}
		if err != nil {
			return err
		}

		ticket.Status = models.TicketConfirmed
		ticket.ConfirmedAt = &at
		res.OK = true
		return nil
	})
	if err != nil {
		return ConfirmResult{}, err
	}

	outcome := res.Outcome()
	monitoring.TrackConfirm(string(outcome))
	slog.Info("Gate confirm", "reference", reference, "outcome", outcome)

	if res.OK && s.feed != nil {
		if err := s.feed.PublishAdmission(ctx, res.Ticket); err != nil {
			slog.Error("Failed to publish admission", "reference", reference, "error", err)
		}
	}
	return res, nil
}

// Lookup re-reads a ticket by reference, e.g. after a confirm timed out on
// the client and its outcome is unknown.
func (s *TicketService) Lookup(ctx context.Context, reference string) (*models.Ticket, error) {
	ticket, err := store.Read(ctx, s.store, func(tx store.Tx) (*models.Ticket, error) {
		return tx.Ticket(ctx, strings.TrimSpace(reference))
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, status.ErrTicketNotFound
	}
	return ticket, err
}

func (s *TicketService) ListByEvent(ctx context.Context, eventID string) ([]*models.Ticket, error) {
	return store.Read(ctx, s.store, func(tx store.Tx) ([]*models.Ticket, error) {
		return tx.TicketsByEvent(ctx, eventID)
	})
}

func (s *TicketService) invalidateEvent(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		slog.Error("Failed to invalidate event cache", "event_id", eventID, "error", err)
	}
}
