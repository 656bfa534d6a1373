package pbstore

import (
	"context"
	"testing"
	"time"

	"nightmarket/internal/store"
	"nightmarket/models"

	"github.com/pocketbase/pocketbase/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)

	require.NoError(t, EnsureCollections(app))
	// second call must be a no-op
	require.NoError(t, EnsureCollections(app))
	return New(app)
}

func TestPBStore_TicketLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ev := &models.Event{Title: "Lagos Night Market", TotalTickets: 2, Status: models.EventActive, Date: time.Now().Add(24 * time.Hour)}
	require.NoError(t, s.RunInTransaction(ctx, func(tx store.Tx) error { return tx.CreateEvent(ctx, ev) }))
	require.NotEmpty(t, ev.ID)

	tk := &models.Ticket{
		Reference:   "NM-1699999999-AB12",
		EventID:     ev.ID,
		Buyer:       models.Buyer{Name: "Ada", Email: "ada@example.com"},
		Quantity:    2,
		Amount:      1000000,
		Status:      models.TicketPending,
		PurchasedAt: time.Now(),
	}
	require.NoError(t, s.RunInTransaction(ctx, func(tx store.Tx) error { return tx.CreateTicket(ctx, tk) }))

	err := s.RunInTransaction(ctx, func(tx store.Tx) error { return tx.CreateTicket(ctx, tk) })
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	now := time.Now()
	err = s.RunInTransaction(ctx, func(tx store.Tx) error {
		return tx.UpdateTicketStatus(ctx, tk.Reference, models.TicketPaid, models.TicketConfirmed, now)
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, s.RunInTransaction(ctx, func(tx store.Tx) error {
		if err := tx.UpdateTicketStatus(ctx, tk.Reference, models.TicketPending, models.TicketPaid, now); err != nil {
			return err
		}
		return tx.IncrementSoldTickets(ctx, ev.ID, tk.Quantity)
	}))

	got, err := store.Read(ctx, s, func(tx store.Tx) (*models.Ticket, error) { return tx.Ticket(ctx, tk.Reference) })
	require.NoError(t, err)
	assert.Equal(t, models.TicketPaid, got.Status)
	assert.Equal(t, 2, got.Quantity)
	require.NotNil(t, got.PaidAt)
	assert.Nil(t, got.ConfirmedAt)

	gotEvent, err := store.Read(ctx, s, func(tx store.Tx) (*models.Event, error) { return tx.Event(ctx, ev.ID) })
	require.NoError(t, err)
	assert.Equal(t, 2, gotEvent.SoldTickets)

	byEvent, err := store.Read(ctx, s, func(tx store.Tx) ([]*models.Ticket, error) { return tx.TicketsByEvent(ctx, ev.ID) })
	require.NoError(t, err)
	assert.Len(t, byEvent, 1)

	_, err = store.Read(ctx, s, func(tx store.Tx) (*models.Ticket, error) { return tx.Ticket(ctx, "UNKNOWN") })
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.RunInTransaction(ctx, func(tx store.Tx) error { return tx.IncrementSoldTickets(ctx, "missing", 1) })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPBStore_VendorRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v := &models.Vendor{
		BrandName:   "Suya Spot",
		Categories:  []string{"Street Food", "Grilled & BBQ"},
		Events:      []string{"Vol. 1"},
		ImageURL:    "https://img/a.jpg",
		ImageURLs:   []string{"https://img/a.jpg"},
		Status:      models.VendorPending,
		SubmittedAt: time.Now(),
		UpdatedAt:   time.Now(),
		PreviousSnapshot: &models.Snapshot{
			Description: "old",
			Categories:  []string{"Street Food"},
			Status:      models.VendorApproved,
		},
	}
	require.NoError(t, s.RunInTransaction(ctx, func(tx store.Tx) error { return tx.CreateVendor(ctx, v) }))

	got, err := store.Read(ctx, s, func(tx store.Tx) (*models.Vendor, error) { return tx.VendorByBrand(ctx, "Suya Spot") })
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, v.Categories, got.Categories)
	assert.Equal(t, v.ImageURLs, got.ImageURLs)
	require.NotNil(t, got.PreviousSnapshot)
	assert.Equal(t, models.VendorApproved, got.PreviousSnapshot.Status)

	got.ReapplyCount = 1
	got.ImageURLs = append(got.ImageURLs, "https://img/b.jpg")
	require.NoError(t, s.RunInTransaction(ctx, func(tx store.Tx) error { return tx.SaveVendor(ctx, got) }))

	pending, err := store.Read(ctx, s, func(tx store.Tx) ([]*models.Vendor, error) { return tx.Vendors(ctx, models.VendorPending) })
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].ReapplyCount)
	assert.Len(t, pending[0].ImageURLs, 2)

	require.NoError(t, s.RunInTransaction(ctx, func(tx store.Tx) error { return tx.DeleteVendor(ctx, v.ID) }))
	_, err = store.Read(ctx, s, func(tx store.Tx) (*models.Vendor, error) { return tx.Vendor(ctx, v.ID) })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPBStore_Testimonials(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tm := &models.Testimonial{AuthorName: "Bola", Role: models.RoleVendor, Message: "Sold out by 10pm", Rating: 5, CreatedAt: time.Now()}
	require.NoError(t, s.RunInTransaction(ctx, func(tx store.Tx) error { return tx.CreateTestimonial(ctx, tm) }))
	assert.NotEmpty(t, tm.ID)

	vendors, err := store.Read(ctx, s, func(tx store.Tx) ([]*models.Testimonial, error) { return tx.Testimonials(ctx, models.RoleVendor) })
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Sold out by 10pm", vendors[0].Message)

	attendees, err := store.Read(ctx, s, func(tx store.Tx) ([]*models.Testimonial, error) { return tx.Testimonials(ctx, models.RoleAttendee) })
	require.NoError(t, err)
	assert.Empty(t, attendees)
}
