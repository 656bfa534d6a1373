// Package pbstore implements store.Store on PocketBase collections.
//
// PocketBase runs every transaction on its single non-concurrent connection,
// so a transaction body observes and writes a consistent snapshot. Status
// changes and counter increments are additionally expressed as conditional
// SQL updates so they stay atomic even outside RunInTransaction.
package pbstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nightmarket/internal/store"
	"nightmarket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

type Store struct {
	app core.App
}

var _ store.Store = (*Store)(nil)

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&tx{app: s.app})
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(&tx{app: txApp})
	})
}

type tx struct {
	app core.App
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (t *tx) newRecord(collection string) (*core.Record, error) {
	c, err := t.app.FindCollectionByNameOrId(collection)
	if err != nil {
		return nil, fmt.Errorf("find collection %s: %w", collection, err)
	}
	return core.NewRecord(c), nil
}

func (t *tx) records(ctx context.Context, collection string, where dbx.Expression, orderBy ...string) ([]*core.Record, error) {
	q := t.app.RecordQuery(collection).WithContext(ctx).OrderBy(orderBy...)
	if where != nil {
		q = q.AndWhere(where)
	}
	records := []*core.Record{}
	if err := q.All(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func (t *tx) Event(_ context.Context, id string) (*models.Event, error) {
	r, err := t.app.FindRecordById(store.CollectionEvents, id)
	if err != nil {
		return nil, notFound(err)
	}
	return eventFromRecord(r), nil
}

func (t *tx) Events(ctx context.Context, status models.EventStatus) ([]*models.Event, error) {
	var where dbx.Expression
	if status != "" {
		where = dbx.HashExp{"status": string(status)}
	}
	records, err := t.records(ctx, store.CollectionEvents, where, "date ASC", "id ASC")
	if err != nil {
		return nil, err
	}
	out := make([]*models.Event, 0, len(records))
	for _, r := range records {
		out = append(out, eventFromRecord(r))
	}
	return out, nil
}

func (t *tx) CreateEvent(ctx context.Context, e *models.Event) error {
	r, err := t.newRecord(store.CollectionEvents)
	if err != nil {
		return err
	}
	if e.ID != "" {
		r.Id = e.ID
	}
	applyEvent(r, e)
	if err := t.app.SaveWithContext(ctx, r); err != nil {
		return err
	}
	e.ID = r.Id
	return nil
}

func (t *tx) SaveEvent(ctx context.Context, e *models.Event) error {
	r, err := t.app.FindRecordById(store.CollectionEvents, e.ID)
	if err != nil {
		return notFound(err)
	}
	applyEvent(r, e)
	return t.app.SaveWithContext(ctx, r)
}

func (t *tx) DeleteEvent(ctx context.Context, id string) error {
	r, err := t.app.FindRecordById(store.CollectionEvents, id)
	if err != nil {
		return notFound(err)
	}
	return t.app.DeleteWithContext(ctx, r)
}

func (t *tx) IncrementSoldTickets(ctx context.Context, eventID string, delta int) error {
	res, err := t.app.DB().
		NewQuery("UPDATE {{events}} SET [[soldTickets]] = [[soldTickets]] + {:delta} WHERE [[id]] = {:id}").
		Bind(dbx.Params{"delta": delta, "id": eventID}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("increment soldTickets: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *tx) Ticket(_ context.Context, reference string) (*models.Ticket, error) {
	r, err := t.app.FindRecordById(store.CollectionTickets, reference)
	if err != nil {
		return nil, notFound(err)
	}
	return ticketFromRecord(r), nil
}

func (t *tx) TicketsByEvent(ctx context.Context, eventID string) ([]*models.Ticket, error) {
	records, err := t.records(ctx, store.CollectionTickets, dbx.HashExp{"eventId": eventID}, "purchasedAt ASC", "id ASC")
	if err != nil {
		return nil, err
	}
	out := make([]*models.Ticket, 0, len(records))
	for _, r := range records {
		out = append(out, ticketFromRecord(r))
	}
	return out, nil
}

func (t *tx) CreateTicket(ctx context.Context, tk *models.Ticket) error {
	if _, err := t.app.FindRecordById(store.CollectionTickets, tk.Reference); err == nil {
		return store.ErrAlreadyExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	r, err := t.newRecord(store.CollectionTickets)
	if err != nil {
		return err
	}
	applyTicket(r, tk)
	return t.app.SaveWithContext(ctx, r)
}

func (t *tx) UpdateTicketStatus(ctx context.Context, reference string, from, to models.TicketStatus, at time.Time) error {
	stamp, err := types.ParseDateTime(at)
	if err != nil {
		return err
	}
	cols := dbx.Params{"status": string(to)}
	switch to {
	case models.TicketPaid:
		cols["paidAt"] = stamp.String()
	case models.TicketConfirmed:
		cols["confirmedAt"] = stamp.String()
	}

	res, err := t.app.DB().
		Update(store.CollectionTickets, cols, dbx.HashExp{"id": reference, "status": string(from)}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := t.app.FindRecordById(store.CollectionTickets, reference); err != nil {
		return notFound(err)
	}
	return store.ErrConflict
}

func (t *tx) Vendor(_ context.Context, id string) (*models.Vendor, error) {
	r, err := t.app.FindRecordById(store.CollectionVendors, id)
	if err != nil {
		return nil, notFound(err)
	}
	return vendorFromRecord(r)
}

func (t *tx) VendorByBrand(_ context.Context, brandName string) (*models.Vendor, error) {
	r, err := t.app.FindFirstRecordByData(store.CollectionVendors, "brandName", brandName)
	if err != nil {
		return nil, notFound(err)
	}
	return vendorFromRecord(r)
}

func (t *tx) Vendors(ctx context.Context, status models.VendorStatus) ([]*models.Vendor, error) {
	var where dbx.Expression
	if status != "" {
		where = dbx.HashExp{"status": string(status)}
	}
	records, err := t.records(ctx, store.CollectionVendors, where, "submittedAt ASC", "id ASC")
	if err != nil {
		return nil, err
	}
	out := make([]*models.Vendor, 0, len(records))
	for _, r := range records {
		v, err := vendorFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *tx) CreateVendor(ctx context.Context, v *models.Vendor) error {
	r, err := t.newRecord(store.CollectionVendors)
	if err != nil {
		return err
	}
	if v.ID != "" {
		r.Id = v.ID
	}
	applyVendor(r, v)
	if err := t.app.SaveWithContext(ctx, r); err != nil {
		return err
	}
	v.ID = r.Id
	return nil
}

func (t *tx) SaveVendor(ctx context.Context, v *models.Vendor) error {
	r, err := t.app.FindRecordById(store.CollectionVendors, v.ID)
	if err != nil {
		return notFound(err)
	}
	applyVendor(r, v)
	return t.app.SaveWithContext(ctx, r)
}

func (t *tx) DeleteVendor(ctx context.Context, id string) error {
	r, err := t.app.FindRecordById(store.CollectionVendors, id)
	if err != nil {
		return notFound(err)
	}
	return t.app.DeleteWithContext(ctx, r)
}

func (t *tx) CreateTestimonial(ctx context.Context, tm *models.Testimonial) error {
	r, err := t.newRecord(store.CollectionTestimonials)
	if err != nil {
		return err
	}
	applyTestimonial(r, tm)
	if err := t.app.SaveWithContext(ctx, r); err != nil {
		return err
	}
	tm.ID = r.Id
	return nil
}

func (t *tx) Testimonials(ctx context.Context, role models.AuthorRole) ([]*models.Testimonial, error) {
	var where dbx.Expression
	if role != "" {
		where = dbx.HashExp{"role": string(role)}
	}
	records, err := t.records(ctx, store.CollectionTestimonials, where, "createdAt DESC", "id DESC")
	if err != nil {
		return nil, err
	}
	out := make([]*models.Testimonial, 0, len(records))
	for _, r := range records {
		out = append(out, testimonialFromRecord(r))
	}
	return out, nil
}
