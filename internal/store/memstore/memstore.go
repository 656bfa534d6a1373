// Package memstore is an in-memory transactional implementation of
// store.Store. Transactions are serialised by a single mutex and work on a
// copy of the state that is swapped in on commit.
package memstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"nightmarket/internal/store"
	"nightmarket/models"
)

var errReadOnly = errors.New("memstore: write in read-only view")

type state struct {
	events       map[string]*models.Event
	tickets      map[string]*models.Ticket
	vendors      map[string]*models.Vendor
	testimonials []*models.Testimonial
}

func newState() *state {
	return &state{
		events:  map[string]*models.Event{},
		tickets: map[string]*models.Ticket{},
		vendors: map[string]*models.Vendor{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.events {
		e := *v
		c.events[k] = &e
	}
	for k, v := range s.tickets {
		c.tickets[k] = v.Clone()
	}
	for k, v := range s.vendors {
		c.vendors[k] = v.Clone()
	}
	c.testimonials = make([]*models.Testimonial, 0, len(s.testimonials))
	for _, t := range s.testimonials {
		tc := *t
		c.testimonials = append(c.testimonials, &tc)
	}
	return c
}

type Store struct {
	mu      sync.Mutex
	st      *state
	seq     int
	failErr error
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState()}
}

// FailNext makes the next View or RunInTransaction call return err without
// running its body.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	s.failErr = err
	s.mu.Unlock()
}

func (s *Store) takeFailure() error {
	err := s.failErr
	s.failErr = nil
	return err
}

func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	return fn(&tx{store: s, st: s.st, readOnly: true})
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	staged := s.st.clone()
	seq := s.seq
	if err := fn(&tx{store: s, st: staged}); err != nil {
		s.seq = seq
		return err
	}
	s.st = staged
	return nil
}

type tx struct {
	store    *Store
	st       *state
	readOnly bool
}

func (t *tx) nextID() string {
	t.store.seq++
	return fmt.Sprintf("%015d", t.store.seq)
}

func (t *tx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *tx) Event(_ context.Context, id string) (*models.Event, error) {
	e, ok := t.st.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (t *tx) Events(_ context.Context, status models.EventStatus) ([]*models.Event, error) {
	out := []*models.Event{}
	for _, e := range t.st.events {
		if status != "" && e.Status != status {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Event) int {
		return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (t *tx) CreateEvent(_ context.Context, e *models.Event) error {
	if err := t.writable(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = t.nextID()
	}
	if _, ok := t.st.events[e.ID]; ok {
		return store.ErrAlreadyExists
	}
	c := *e
	t.st.events[e.ID] = &c
	return nil
}

func (t *tx) SaveEvent(_ context.Context, e *models.Event) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.events[e.ID]; !ok {
		return store.ErrNotFound
	}
	c := *e
	t.st.events[e.ID] = &c
	return nil
}

func (t *tx) DeleteEvent(_ context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.st.events, id)
	return nil
}

func (t *tx) IncrementSoldTickets(_ context.Context, eventID string, delta int) error {
	if err := t.writable(); err != nil {
		return err
	}
	e, ok := t.st.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	e.SoldTickets += delta
	return nil
}

func (t *tx) Ticket(_ context.Context, reference string) (*models.Ticket, error) {
	tk, ok := t.st.tickets[reference]
	if !ok {
		return nil, store.ErrNotFound
	}
	return tk.Clone(), nil
}

func (t *tx) TicketsByEvent(_ context.Context, eventID string) ([]*models.Ticket, error) {
	out := []*models.Ticket{}
	for _, tk := range t.st.tickets {
		if tk.EventID == eventID {
			out = append(out, tk.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Ticket) int {
		return cmp.Or(a.PurchasedAt.Compare(b.PurchasedAt), cmp.Compare(a.Reference, b.Reference))
	})
	return out, nil
}

func (t *tx) CreateTicket(_ context.Context, tk *models.Ticket) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.tickets[tk.Reference]; ok {
		return store.ErrAlreadyExists
	}
	t.st.tickets[tk.Reference] = tk.Clone()
	return nil
}

func (t *tx) UpdateTicketStatus(_ context.Context, reference string, from, to models.TicketStatus, at time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	tk, ok := t.st.tickets[reference]
	if !ok {
		return store.ErrNotFound
	}
	if tk.Status != from {
		return store.ErrConflict
	}
	tk.Status = to
	switch to {
	case models.TicketPaid:
		tk.PaidAt = &at
	case models.TicketConfirmed:
		tk.ConfirmedAt = &at
	}
	return nil
}

func (t *tx) Vendor(_ context.Context, id string) (*models.Vendor, error) {
	v, ok := t.st.vendors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v.Clone(), nil
}

func (t *tx) VendorByBrand(ctx context.Context, brandName string) (*models.Vendor, error) {
	all, err := t.Vendors(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, v := range all {
		if v.BrandName == brandName {
			return v, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *tx) Vendors(_ context.Context, status models.VendorStatus) ([]*models.Vendor, error) {
	out := []*models.Vendor{}
	for _, v := range t.st.vendors {
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, v.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Vendor) int {
		return cmp.Or(a.SubmittedAt.Compare(b.SubmittedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (t *tx) CreateVendor(_ context.Context, v *models.Vendor) error {
	if err := t.writable(); err != nil {
		return err
	}
	if v.ID == "" {
		v.ID = t.nextID()
	}
	if _, ok := t.st.vendors[v.ID]; ok {
		return store.ErrAlreadyExists
	}
	t.st.vendors[v.ID] = v.Clone()
	return nil
}

func (t *tx) SaveVendor(_ context.Context, v *models.Vendor) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.vendors[v.ID]; !ok {
		return store.ErrNotFound
	}
	t.st.vendors[v.ID] = v.Clone()
	return nil
}

func (t *tx) DeleteVendor(_ context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.vendors[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.st.vendors, id)
	return nil
}

func (t *tx) CreateTestimonial(_ context.Context, tm *models.Testimonial) error {
	if err := t.writable(); err != nil {
		return err
	}
	if tm.ID == "" {
		tm.ID = t.nextID()
	}
	c := *tm
	t.st.testimonials = append(t.st.testimonials, &c)
	return nil
}

// Testimonials returns newest first.
func (t *tx) Testimonials(_ context.Context, role models.AuthorRole) ([]*models.Testimonial, error) {
	out := []*models.Testimonial{}
	for i := len(t.st.testimonials) - 1; i >= 0; i-- {
		tm := t.st.testimonials[i]
		if role != "" && tm.Role != role {
			continue
		}
		c := *tm
		out = append(out, &c)
	}
	return out, nil
}
