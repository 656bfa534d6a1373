package services

import (
	"slices"
	"strings"
	"time"

	"nightmarket/models"
)

// union appends every non-empty value from extra that base does not already
// hold, keeping first-seen order.
func union(base []string, extra ...[]string) []string {
	out := make([]string, 0, len(base))
	for _, list := range append([][]string{base}, extra...) {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" || slices.Contains(out, v) {
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

func capCategories(categories []string) []string {
	if len(categories) > models.MaxVendorCategories {
		return categories[:models.MaxVendorCategories]
	}
	return categories
}

func snapshotOf(v *models.Vendor) *models.Snapshot {
	return &models.Snapshot{
		Description: v.Description,
		Products:    v.Products,
		ImageURL:    v.ImageURL,
		Categories:  slices.Clone(v.Categories),
		Status:      v.Status,
	}
}

func normalizeApplication(app models.Application) models.Application {
	app.BrandName = strings.TrimSpace(app.BrandName)
	app.OwnerName = strings.TrimSpace(app.OwnerName)
	app.Email = strings.TrimSpace(app.Email)
	app.Phone = strings.TrimSpace(app.Phone)
	app.Instagram = strings.TrimSpace(app.Instagram)
	app.ImageURL = strings.TrimSpace(app.ImageURL)
	return app
}

// newVendor builds the record for a brand's first application.
func newVendor(app models.Application, now time.Time) *models.Vendor {
	v := &models.Vendor{
		BrandName:   app.BrandName,
		OwnerName:   app.OwnerName,
		Email:       app.Email,
		Phone:       app.Phone,
		Instagram:   app.Instagram,
		Description: app.Description,
		Products:    app.Products,
		Categories:  capCategories(union(nil, app.Categories)),
		Events:      union(nil, app.Events),
		ImageURL:    app.ImageURL,
		ImageURLs:   union(nil, []string{app.ImageURL}),
		Status:      models.VendorPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	return v
}

// mergeApplication folds a re-application into the existing record and
// returns the merged copy. existing is not modified.
func mergeApplication(existing *models.Vendor, app models.Application, now time.Time) *models.Vendor {
	v := existing.Clone()
	v.PreviousSnapshot = snapshotOf(existing)

	v.Events = union(existing.Events, app.Events)
	v.Categories = capCategories(union(existing.Categories, app.Categories))

	v.ImageURLs = union(existing.ImageURLs, []string{existing.ImageURL, app.ImageURL})
	// An empty imageUrl means no new photo was sent; the current primary stays.
	if app.ImageURL != "" {
		v.ImageURL = app.ImageURL
	}

	v.OwnerName = app.OwnerName
	v.Phone = app.Phone
	v.Instagram = app.Instagram
	v.Description = app.Description
	v.Products = app.Products
	if v.Email == "" {
		v.Email = app.Email
	}

	v.Status = models.VendorPending
	v.DeclineReason = ""
	v.ReapplyCount++
	v.SubmittedAt = now
	v.UpdatedAt = now
	return v
}
