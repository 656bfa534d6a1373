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

// BrandLocker serialises applications for the same brand across processes.
// The returned release func must be called once the write has committed.
type BrandLocker interface {
	Lock(ctx context.Context, brandName string) (release func(context.Context) error, err error)
}

type UpsertResult struct {
	Vendor   *models.Vendor `json:"vendor"`
	IsUpdate bool           `json:"isUpdate"`
}

type VendorService struct {
	store  store.Store
	locker BrandLocker
	now    func() time.Time
}

// NewVendorService wires the merge engine. locker may be nil, in which case
// only the store transaction guards the read-merge-write.
func NewVendorService(s store.Store, locker BrandLocker) *VendorService {
	return &VendorService{
		store:  s,
		locker: locker,
		now:    time.Now,
	}
}

// Upsert records an application. A brand seen for the first time gets a new
// record; otherwise the application is merged into the existing one and the
// record goes back to pending for re-review.
//
// Upsert is not safe to retry blindly: a retry after a committed write counts
// as a second re-application.
func (s *VendorService) Upsert(ctx context.Context, app models.Application) (UpsertResult, error) {
	defer monitoring.ObserveOperation("vendor_upsert", time.Now())

	app = normalizeApplication(app)
	if app.BrandName == "" {
		return UpsertResult{}, fmt.Errorf("%w: brand name is required", status.ErrInvalidInput)
	}

	if s.locker != nil {
		release, err := s.locker.Lock(ctx, app.BrandName)
		if err != nil {
			return UpsertResult{}, fmt.Errorf("lock brand %q: %w", app.BrandName, err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				slog.Error("Failed to release brand lock", "brand", app.BrandName, "error", err)
			}
		}()
	}

	var res UpsertResult
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		now := s.now()
		existing, err := tx.VendorByBrand(ctx, app.BrandName)
		if errors.Is(err, store.ErrNotFound) {
			v := newVendor(app, now)
			if err := tx.CreateVendor(ctx, v); err != nil {
				return err
			}
			res = UpsertResult{Vendor: v}
			return nil
		}
		if err != nil {
			return err
		}

		merged := mergeApplication(existing, app, now)
		if err := tx.SaveVendor(ctx, merged); err != nil {
			return err
		}
		res = UpsertResult{Vendor: merged, IsUpdate: true}
		return nil
	})
	if err != nil {
		return UpsertResult{}, err
	}

	kind := "created"
	if res.IsUpdate {
		kind = "updated"
	}
	monitoring.TrackVendorApplication(kind)
	slog.Info("Vendor application recorded",
		"vendor_id", res.Vendor.ID,
		"brand", res.Vendor.BrandName,
		"kind", kind,
		"reapply_count", res.Vendor.ReapplyCount)
	return res, nil
}

func (s *VendorService) Approve(ctx context.Context, id string) (*models.Vendor, error) {
	return s.transition(ctx, id, models.VendorApproved, "")
}

func (s *VendorService) Decline(ctx context.Context, id, reason string) (*models.Vendor, error) {
	return s.transition(ctx, id, models.VendorDeclined, strings.TrimSpace(reason))
}

// Reopen puts a declined vendor back into the review queue.
func (s *VendorService) Reopen(ctx context.Context, id string) (*models.Vendor, error) {
	return s.transition(ctx, id, models.VendorPending, "")
}

func (s *VendorService) transition(ctx context.Context, id string, to models.VendorStatus, reason string) (*models.Vendor, error) {
	var out *models.Vendor
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		v, err := tx.Vendor(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return status.ErrVendorNotFound
		}
		if err != nil {
			return err
		}
		if !v.Status.CanTransitionTo(to) {
			return fmt.Errorf("%w: vendor %s cannot go from %s to %s", status.ErrInvalidTransition, id, v.Status, to)
		}

		v.Status = to
		v.DeclineReason = ""
		if to == models.VendorDeclined {
			v.DeclineReason = reason
		}
		v.UpdatedAt = s.now()
		if err := tx.SaveVendor(ctx, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.TrackModeration(string(to))
	slog.Info("Vendor moderated", "vendor_id", id, "status", to)
	return out, nil
}

// CreateDirect stores an admin-entered vendor as is, without brand lookup or
// merge. Status defaults to approved.
func (s *VendorService) CreateDirect(ctx context.Context, v *models.Vendor) (*models.Vendor, error) {
	v = v.Clone()
	v.BrandName = strings.TrimSpace(v.BrandName)
	if v.BrandName == "" {
		return nil, fmt.Errorf("%w: brand name is required", status.ErrInvalidInput)
	}
	if v.Status == "" {
		v.Status = models.VendorApproved
	}
	if !v.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown vendor status %q", status.ErrInvalidInput, v.Status)
	}
	if v.Status != models.VendorDeclined {
		v.DeclineReason = ""
	}

	v.ID = ""
	v.Categories = capCategories(union(nil, v.Categories))
	v.Events = union(nil, v.Events)
	v.ImageURL = strings.TrimSpace(v.ImageURL)
	v.ImageURLs = union(v.ImageURLs, []string{v.ImageURL})
	v.ReapplyCount = 0
	v.PreviousSnapshot = nil
	now := s.now()
	v.SubmittedAt = now
	v.UpdatedAt = now

	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		return tx.CreateVendor(ctx, v)
	})
	if err != nil {
		return nil, err
	}

	monitoring.TrackVendorApplication("direct")
	slog.Info("Vendor created by admin", "vendor_id", v.ID, "brand", v.BrandName)
	return v, nil
}

func (s *VendorService) Get(ctx context.Context, id string) (*models.Vendor, error) {
	v, err := store.Read(ctx, s.store, func(tx store.Tx) (*models.Vendor, error) {
		return tx.Vendor(ctx, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, status.ErrVendorNotFound
	}
	return v, err
}

// List returns vendors in the given status, or every vendor when st is empty.
func (s *VendorService) List(ctx context.Context, st models.VendorStatus) ([]*models.Vendor, error) {
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown vendor status %q", status.ErrInvalidInput, st)
	}
	return store.Read(ctx, s.store, func(tx store.Tx) ([]*models.Vendor, error) {
		return tx.Vendors(ctx, st)
	})
}

func (s *VendorService) Delete(ctx context.Context, id string) error {
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		return tx.DeleteVendor(ctx, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		return status.ErrVendorNotFound
	}
	if err != nil {
		return err
	}
	slog.Info("Vendor deleted", "vendor_id", id)
	return nil
}
