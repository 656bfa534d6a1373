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
)

// EventUpdate carries the admin-editable fields. Nil fields are left alone.
// soldTickets is never editable.
type EventUpdate struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Venue        *string    `json:"venue"`
	Date         *time.Time `json:"date"`
	Price        *int64     `json:"price"`
	TotalTickets *int       `json:"totalTickets"`
	ImageURL     *string    `json:"imageUrl"`
}

func (u EventUpdate) apply(ev *models.Event) {
	if u.Title != nil {
		ev.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		ev.Description = *u.Description
	}
	if u.Venue != nil {
		ev.Venue = *u.Venue
	}
	if u.Date != nil {
		ev.Date = *u.Date
	}
	if u.Price != nil {
		ev.Price = *u.Price
	}
	if u.TotalTickets != nil {
		ev.TotalTickets = *u.TotalTickets
	}
	if u.ImageURL != nil {
		ev.ImageURL = *u.ImageURL
	}
}

type EventService struct {
	store store.Store
	cache EventCache
}

// NewEventService wires the event inventory. cache may be nil.
func NewEventService(s store.Store, cache EventCache) *EventService {
	return &EventService{store: s, cache: cache}
}

func validateEvent(ev *models.Event) error {
	switch {
	case ev.Title == "":
		return fmt.Errorf("%w: title is required", status.ErrInvalidInput)
	case ev.TotalTickets < 0:
		return fmt.Errorf("%w: totalTickets must not be negative", status.ErrInvalidInput)
	case ev.Price < 0:
		return fmt.Errorf("%w: price must not be negative", status.ErrInvalidInput)
	case !ev.Status.Valid():
		return fmt.Errorf("%w: unknown event status %q", status.ErrInvalidInput, ev.Status)
	}
	return nil
}

func (s *EventService) Create(ctx context.Context, in *models.Event) (*models.Event, error) {
	ev := *in
	ev.ID = ""
	ev.Title = strings.TrimSpace(ev.Title)
	ev.SoldTickets = 0
	if ev.Status == "" {
		ev.Status = models.EventDraft
	}
	ev.IsPast = ev.Status == models.EventEnded
	if err := validateEvent(&ev); err != nil {
		return nil, err
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		return tx.CreateEvent(ctx, &ev)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Event created", "event_id", ev.ID, "title", ev.Title, "total_tickets", ev.TotalTickets)
	return &ev, nil
}

func (s *EventService) Update(ctx context.Context, id string, u EventUpdate) (*models.Event, error) {
	ev, err := s.mutate(ctx, id, func(ev *models.Event) error {
		u.apply(ev)
		if ev.TotalTickets < ev.SoldTickets {
			return fmt.Errorf("%w: totalTickets %d is below soldTickets %d", status.ErrInvalidInput, ev.TotalTickets, ev.SoldTickets)
		}
		return validateEvent(ev)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Event updated", "event_id", id)
	return ev, nil
}

// SetStatus moves an event along draft -> active -> ended. Ending an event
// also marks it past.
func (s *EventService) SetStatus(ctx context.Context, id string, to models.EventStatus) (*models.Event, error) {
	ev, err := s.mutate(ctx, id, func(ev *models.Event) error {
		if !ev.Status.CanTransitionTo(to) {
			return fmt.Errorf("%w: event %s cannot go from %s to %s", status.ErrInvalidTransition, id, ev.Status, to)
		}
		ev.Status = to
		if to == models.EventEnded {
			ev.IsPast = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Event status changed", "event_id", id, "status", to)
	return ev, nil
}

func (s *EventService) mutate(ctx context.Context, id string, fn func(ev *models.Event) error) (*models.Event, error) {
	var out *models.Event
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		ev, err := tx.Event(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return status.ErrEventNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
		if err := tx.SaveEvent(ctx, ev); err != nil {
			return err
		}
		out = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return out, nil
}

// Delete removes an event that has no tickets. Tickets are never deleted, so
// an event that sold anything stays.
func (s *EventService) Delete(ctx context.Context, id string) error {
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		tickets, err := tx.TicketsByEvent(ctx, id)
		if err != nil {
			return err
		}
		if len(tickets) > 0 {
			return fmt.Errorf("%w: %d tickets reference %s", status.ErrEventHasTickets, len(tickets), id)
		}
		err = tx.DeleteEvent(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return status.ErrEventNotFound
		}
		return err
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	slog.Info("Event deleted", "event_id", id)
	return nil
}

// Get reads through the cache. Cache failures fall back to the store.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	if s.cache != nil {
		ev, err := s.cache.Get(ctx, id)
		if err == nil {
			return ev, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("Event cache read failed", "event_id", id, "error", err)
		}
	}

	ev, err := store.Read(ctx, s.store, func(tx store.Tx) (*models.Event, error) {
		return tx.Event(ctx, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, status.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, ev); err != nil {
			slog.Warn("Event cache write failed", "event_id", id, "error", err)
		}
	}
	return ev, nil
}

// List returns events in the given status, or all events when st is empty.
func (s *EventService) List(ctx context.Context, st models.EventStatus) ([]*models.Event, error) {
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown event status %q", status.ErrInvalidInput, st)
	}
	return store.Read(ctx, s.store, func(tx store.Tx) ([]*models.Event, error) {
		return tx.Events(ctx, st)
	})
}

func (s *EventService) ListActive(ctx context.Context) ([]*models.Event, error) {
	return s.List(ctx, models.EventActive)
}

// Availability is informational; checkout does not enforce it.
func (s *EventService) Availability(ctx context.Context, id string) (models.Availability, error) {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return models.Availability{}, err
	}
	return ev.Availability(), nil
}

func (s *EventService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		slog.Error("Failed to invalidate event cache", "event_id", id, "error", err)
	}
}
