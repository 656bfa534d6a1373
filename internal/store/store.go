// Package store defines the document-store contract the lifecycle and merge
// engines are written against. Implementations live in memstore (tests) and
// pbstore (PocketBase collections).
package store

import (
	"context"
	"errors"
	"time"

	"nightmarket/models"
)

var (
	ErrNotFound      = errors.New("store: document not found")
	ErrAlreadyExists = errors.New("store: document already exists")
	// ErrConflict is returned by conditional updates whose precondition no
	// longer holds.
	ErrConflict = errors.New("store: conditional update failed")
)

const (
	CollectionEvents       = "events"
	CollectionTickets      = "tickets"
	CollectionVendors      = "vendors"
	CollectionTestimonials = "testimonials"
)

type EventRepository interface {
	Event(ctx context.Context, id string) (*models.Event, error)
	Events(ctx context.Context, status models.EventStatus) ([]*models.Event, error)
	CreateEvent(ctx context.Context, e *models.Event) error
	SaveEvent(ctx context.Context, e *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	// IncrementSoldTickets adds delta to soldTickets as a single mutation.
	IncrementSoldTickets(ctx context.Context, eventID string, delta int) error
}

type TicketRepository interface {
	Ticket(ctx context.Context, reference string) (*models.Ticket, error)
	TicketsByEvent(ctx context.Context, eventID string) ([]*models.Ticket, error)
	// CreateTicket fails with ErrAlreadyExists when the reference is taken.
	CreateTicket(ctx context.Context, t *models.Ticket) error
	// UpdateTicketStatus moves a ticket from one status to another only if it
	// is still in from, stamping at on the matching timestamp field. It
	// returns ErrConflict when the stored status differs.
	UpdateTicketStatus(ctx context.Context, reference string, from, to models.TicketStatus, at time.Time) error
}

type VendorRepository interface {
	Vendor(ctx context.Context, id string) (*models.Vendor, error)
	// VendorByBrand scans for the first record with an exactly matching brand.
	VendorByBrand(ctx context.Context, brandName string) (*models.Vendor, error)
	Vendors(ctx context.Context, status models.VendorStatus) ([]*models.Vendor, error)
	CreateVendor(ctx context.Context, v *models.Vendor) error
	SaveVendor(ctx context.Context, v *models.Vendor) error
	DeleteVendor(ctx context.Context, id string) error
}

type TestimonialRepository interface {
	CreateTestimonial(ctx context.Context, t *models.Testimonial) error
	Testimonials(ctx context.Context, role models.AuthorRole) ([]*models.Testimonial, error)
}

// Tx is the view of the store handed to a transaction body.
type Tx interface {
	EventRepository
	TicketRepository
	VendorRepository
	TestimonialRepository
}

type Store interface {
	// View runs fn against the store without transactional isolation. Used
	// for reads.
	View(ctx context.Context, fn func(tx Tx) error) error
	// RunInTransaction runs fn atomically: either every write made through tx
	// is applied or none is.
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Read is a convenience wrapper around Store.View for single-value reads.
func Read[T any](ctx context.Context, s Store, fn func(tx Tx) (T, error)) (T, error) {
	var out T
	err := s.View(ctx, func(tx Tx) error {
		v, err := fn(tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
