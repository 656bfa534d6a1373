package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"nightmarket/internal/status"
	"nightmarket/internal/store"
	"nightmarket/internal/store/memstore"
	"nightmarket/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBrandLocker struct {
	mock.Mock
}

func (m *mockBrandLocker) Lock(ctx context.Context, brandName string) (func(context.Context) error, error) {
	args := m.Called(ctx, brandName)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).(func(context.Context) error), nil
}

func newVendorService(s store.Store) *VendorService {
	svc := NewVendorService(s, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func suyaSpot(category, image string) models.Application {
	return models.Application{
		BrandName:   "Suya Spot",
		OwnerName:   "Musa",
		Email:       "musa@suyaspot.ng",
		Phone:       "+2348011111111",
		Instagram:   "@suyaspot",
		Description: "Charcoal grilled suya",
		Products:    "Beef suya, chicken suya",
		Categories:  []string{category},
		Events:      []string{"Night Market Vol. 1"},
		ImageURL:    image,
	}
}

func TestUnion(t *testing.T) {
	tests := []struct {
		name     string
		base     []string
		extra    []string
		expected []string
	}{
		{"Empty", nil, nil, []string{}},
		{"Keeps order", []string{"a", "b"}, []string{"c"}, []string{"a", "b", "c"}},
		{"Dedups", []string{"a", "b"}, []string{"b", "a", "c"}, []string{"a", "b", "c"}},
		{"Drops blanks", []string{"a", " "}, []string{"", "b"}, []string{"a", "b"}},
		{"Trims", []string{" a "}, []string{"a"}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, union(tt.base, tt.extra))
		})
	}
}

func TestMergeApplication_DoesNotModifyExisting(t *testing.T) {
	existing := newVendor(suyaSpot("Street Food", "A"), fixedNow)
	existing.Status = models.VendorApproved

	merged := mergeApplication(existing, suyaSpot("Grilled & BBQ", "B"), fixedNow.Add(time.Hour))

	assert.Equal(t, []string{"Street Food"}, existing.Categories)
	assert.Equal(t, []string{"A"}, existing.ImageURLs)
	assert.Equal(t, models.VendorApproved, existing.Status)
	assert.Nil(t, existing.PreviousSnapshot)
	assert.Equal(t, 1, merged.ReapplyCount)
}

func TestMergeApplication_CategoriesCapKeepsExisting(t *testing.T) {
	app := suyaSpot("Street Food", "A")
	app.Categories = []string{"Street Food", "Grilled & BBQ"}
	existing := newVendor(app, fixedNow)

	next := suyaSpot("Drinks", "A")
	next.Categories = []string{"Desserts", "Drinks", "Street Food"}
	merged := mergeApplication(existing, next, fixedNow)

	assert.Equal(t, []string{"Street Food", "Grilled & BBQ", "Desserts"}, merged.Categories)
}

func TestMergeApplication_SameImageNotDuplicated(t *testing.T) {
	existing := newVendor(suyaSpot("Street Food", "A"), fixedNow)
	existing = mergeApplication(existing, suyaSpot("Street Food", "B"), fixedNow)

	merged := mergeApplication(existing, suyaSpot("Street Food", "A"), fixedNow)
	assert.Equal(t, []string{"A", "B"}, merged.ImageURLs)
	assert.Equal(t, "A", merged.ImageURL)
}

func TestMergeApplication_EmptyImageKeepsPrimary(t *testing.T) {
	existing := newVendor(suyaSpot("Street Food", "A"), fixedNow)

	merged := mergeApplication(existing, suyaSpot("Street Food", ""), fixedNow)
	assert.Equal(t, "A", merged.ImageURL)
	assert.Equal(t, []string{"A"}, merged.ImageURLs)
}

func TestMergeApplication_EmailKeptOnceSet(t *testing.T) {
	existing := newVendor(suyaSpot("Street Food", "A"), fixedNow)
	next := suyaSpot("Street Food", "A")
	next.Email = "other@example.com"

	merged := mergeApplication(existing, next, fixedNow)
	assert.Equal(t, "musa@suyaspot.ng", merged.Email)
}

func TestUpsert_SuyaSpotScenario(t *testing.T) {
	s := memstore.New()
	svc := newVendorService(s)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, suyaSpot("Street Food", "A"))
	require.NoError(t, err)
	assert.False(t, first.IsUpdate)
	assert.Equal(t, []string{"A"}, first.Vendor.ImageURLs)
	assert.Equal(t, models.VendorPending, first.Vendor.Status)
	assert.Equal(t, 0, first.Vendor.ReapplyCount)

	_, err = svc.Approve(ctx, first.Vendor.ID)
	require.NoError(t, err)

	again := suyaSpot("Grilled & BBQ", "B")
	again.Description = "Suya and kilishi"
	second, err := svc.Upsert(ctx, again)
	require.NoError(t, err)
	assert.True(t, second.IsUpdate)

	v := second.Vendor
	assert.Equal(t, first.Vendor.ID, v.ID)
	assert.Equal(t, []string{"Street Food", "Grilled & BBQ"}, v.Categories)
	assert.Equal(t, []string{"A", "B"}, v.ImageURLs)
	assert.Equal(t, "B", v.ImageURL)
	assert.Equal(t, 1, v.ReapplyCount)
	assert.Equal(t, models.VendorPending, v.Status)
	assert.Equal(t, "Suya and kilishi", v.Description)

	require.NotNil(t, v.PreviousSnapshot)
	assert.Equal(t, models.VendorApproved, v.PreviousSnapshot.Status)
	assert.Equal(t, "A", v.PreviousSnapshot.ImageURL)
	assert.Equal(t, []string{"Street Food"}, v.PreviousSnapshot.Categories)
	assert.Equal(t, "Charcoal grilled suya", v.PreviousSnapshot.Description)

	stored, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v, stored)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsert_SingleGenerationSnapshot(t *testing.T) {
	s := memstore.New()
	svc := newVendorService(s)
	ctx := context.Background()

	app := suyaSpot("Street Food", "A")
	app.Description = "v1"
	_, err := svc.Upsert(ctx, app)
	require.NoError(t, err)

	app.Description, app.ImageURL = "v2", "B"
	_, err = svc.Upsert(ctx, app)
	require.NoError(t, err)

	app.Description, app.ImageURL = "v3", "C"
	res, err := svc.Upsert(ctx, app)
	require.NoError(t, err)

	require.NotNil(t, res.Vendor.PreviousSnapshot)
	assert.Equal(t, "v2", res.Vendor.PreviousSnapshot.Description)
	assert.Equal(t, "B", res.Vendor.PreviousSnapshot.ImageURL)
	assert.Equal(t, models.VendorPending, res.Vendor.PreviousSnapshot.Status)
	assert.Equal(t, 2, res.Vendor.ReapplyCount)
}

func TestUpsert_Lossless(t *testing.T) {
	s := memstore.New()
	svc := newVendorService(s)
	ctx := context.Background()

	var (
		images     []string
		categories []string
		events     []string
	)
	for i := 0; i < 6; i++ {
		app := suyaSpot(fmt.Sprintf("Category %d", i%4), fmt.Sprintf("img-%d", i%5))
		app.Events = []string{fmt.Sprintf("Vol. %d", i)}
		images = append(images, app.ImageURL)
		categories = append(categories, app.Categories...)
		events = append(events, app.Events...)

		_, err := svc.Upsert(ctx, app)
		require.NoError(t, err)
	}

	vendors, err := svc.List(ctx, models.VendorPending)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	v := vendors[0]

	for _, img := range images {
		assert.Contains(t, v.ImageURLs, img)
	}
	for _, ev := range events {
		assert.Contains(t, v.Events, ev)
	}
	assert.Len(t, v.ImageURLs, 5)
	assert.Equal(t, union(nil, categories)[:models.MaxVendorCategories], v.Categories)
	assert.Equal(t, 5, v.ReapplyCount)
}

func TestUpsert_ExactBrandMatch(t *testing.T) {
	s := memstore.New()
	svc := newVendorService(s)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, suyaSpot("Street Food", "A"))
	require.NoError(t, err)

	other := suyaSpot("Street Food", "A")
	other.BrandName = "suya spot"
	res, err := svc.Upsert(ctx, other)
	require.NoError(t, err)
	assert.False(t, res.IsUpdate)

	padded := suyaSpot("Street Food", "A")
	padded.BrandName = "  Suya Spot "
	res, err = svc.Upsert(ctx, padded)
	require.NoError(t, err)
	assert.True(t, res.IsUpdate)
}

func TestUpsert_RequiresBrand(t *testing.T) {
	svc := newVendorService(memstore.New())
	_, err := svc.Upsert(context.Background(), models.Application{BrandName: "  "})
	assert.ErrorIs(t, err, status.ErrInvalidInput)
}

func TestUpsert_FailedWriteLeavesRecordUntouched(t *testing.T) {
	s := memstore.New()
	svc := newVendorService(s)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, suyaSpot("Street Food", "A"))
	require.NoError(t, err)

	s.FailNext(errors.New("unavailable"))
	_, err = svc.Upsert(ctx, suyaSpot("Drinks", "B"))
	require.Error(t, err)

	v, err := svc.Get(ctx, first.Vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, v.ReapplyCount)
	assert.Equal(t, []string{"A"}, v.ImageURLs)
}

func TestUpsert_UsesBrandLock(t *testing.T) {
	s := memstore.New()
	locker := &mockBrandLocker{}
	svc := NewVendorService(s, locker)

	released := false
	release := func(context.Context) error {
		released = true
		return nil
	}
	locker.On("Lock", mock.Anything, "Suya Spot").Return(release, nil).Once()

	_, err := svc.Upsert(context.Background(), suyaSpot("Street Food", "A"))
	require.NoError(t, err)
	assert.True(t, released)
	locker.AssertExpectations(t)
}

func TestUpsert_LockNotAcquired(t *testing.T) {
	s := memstore.New()
	locker := &mockBrandLocker{}
	svc := NewVendorService(s, locker)

	locker.On("Lock", mock.Anything, "Suya Spot").Return(nil, status.ErrLockNotAcquired)

	_, err := svc.Upsert(context.Background(), suyaSpot("Street Food", "A"))
	assert.ErrorIs(t, err, status.ErrLockNotAcquired)

	vendors, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, vendors)
}

func TestModeration(t *testing.T) {
	s := memstore.New()
	svc := newVendorService(s)
	ctx := context.Background()

	res, err := svc.Upsert(ctx, suyaSpot("Street Food", "A"))
	require.NoError(t, err)
	id := res.Vendor.ID

	v, err := svc.Decline(ctx, id, " Photos too blurry ")
	require.NoError(t, err)
	assert.Equal(t, models.VendorDeclined, v.Status)
	assert.Equal(t, "Photos too blurry", v.DeclineReason)

	v, err = svc.Reopen(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.VendorPending, v.Status)
	assert.Empty(t, v.DeclineReason)

	v, err = svc.Approve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.VendorApproved, v.Status)

	_, err = svc.Approve(ctx, id)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)

	_, err = svc.Reopen(ctx, id)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)

	v, err = svc.Decline(ctx, id, "Revoked")
	require.NoError(t, err)
	assert.Equal(t, models.VendorDeclined, v.Status)

	_, err = svc.Approve(ctx, "missing")
	assert.ErrorIs(t, err, status.ErrVendorNotFound)
}

func TestMergeResetsDeclinedToPending(t *testing.T) {
	s := memstore.New()
	svc := newVendorService(s)
	ctx := context.Background()

	res, err := svc.Upsert(ctx, suyaSpot("Street Food", "A"))
	require.NoError(t, err)
	_, err = svc.Decline(ctx, res.Vendor.ID, "Incomplete")
	require.NoError(t, err)

	res, err = svc.Upsert(ctx, suyaSpot("Street Food", "A"))
	require.NoError(t, err)
	assert.Equal(t, models.VendorPending, res.Vendor.Status)
	assert.Empty(t, res.Vendor.DeclineReason)
	assert.Equal(t, models.VendorDeclined, res.Vendor.PreviousSnapshot.Status)
}

func TestCreateDirect(t *testing.T) {
	s := memstore.New()
	svc := newVendorService(s)
	ctx := context.Background()

	v, err := svc.CreateDirect(ctx, &models.Vendor{
		BrandName:     " Zobo Bar ",
		Categories:    []string{"Drinks", "Drinks", "Desserts", "Snacks", "Street Food"},
		ImageURL:      "Z",
		ReapplyCount:  7,
		DeclineReason: "stale",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "Zobo Bar", v.BrandName)
	assert.Equal(t, models.VendorApproved, v.Status)
	assert.Equal(t, []string{"Drinks", "Desserts", "Snacks"}, v.Categories)
	assert.Equal(t, []string{"Z"}, v.ImageURLs)
	assert.Equal(t, 0, v.ReapplyCount)
	assert.Empty(t, v.DeclineReason)

	_, err = svc.CreateDirect(ctx, &models.Vendor{BrandName: "X", Status: "banned"})
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	_, err = svc.CreateDirect(ctx, &models.Vendor{})
	assert.ErrorIs(t, err, status.ErrInvalidInput)
}

func TestVendorListAndDelete(t *testing.T) {
	s := memstore.New()
	svc := newVendorService(s)
	ctx := context.Background()

	a, err := svc.Upsert(ctx, suyaSpot("Street Food", "A"))
	require.NoError(t, err)
	_, err = svc.CreateDirect(ctx, &models.Vendor{BrandName: "Zobo Bar"})
	require.NoError(t, err)

	pending, err := svc.List(ctx, models.VendorPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	approved, err := svc.List(ctx, models.VendorApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	_, err = svc.List(ctx, "unknown")
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, a.Vendor.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.Vendor.ID), status.ErrVendorNotFound)

	_, err = svc.Get(ctx, a.Vendor.ID)
	assert.ErrorIs(t, err, status.ErrVendorNotFound)
}
