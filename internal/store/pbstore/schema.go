package pbstore

import (
	"fmt"
	"log/slog"

	"nightmarket/internal/store"
	"nightmarket/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// Payment references are used verbatim as ticket ids, so the default
// 15-char lowercase id pattern is widened for that collection.
const referencePattern = `^[A-Za-z0-9_\-\.]+$`

// EnsureCollections creates any of the market collections that do not exist
// yet. Existing collections are left untouched.
func EnsureCollections(app core.App) error {
	builders := []func() *core.Collection{
		eventsCollection,
		ticketsCollection,
		vendorsCollection,
		testimonialsCollection,
	}
	for _, build := range builders {
		c := build()
		if _, err := app.FindCollectionByNameOrId(c.Name); err == nil {
			continue
		}
		if err := app.Save(c); err != nil {
			return fmt.Errorf("create collection %s: %w", c.Name, err)
		}
		slog.Info("Created collection", "collection", c.Name)
	}
	return nil
}

// DropCollections removes the market collections, used by migration rollback.
func DropCollections(app core.App) error {
	for _, name := range []string{
		store.CollectionTestimonials,
		store.CollectionVendors,
		store.CollectionTickets,
		store.CollectionEvents,
	} {
		c, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			continue
		}
		if err := app.Delete(c); err != nil {
			return fmt.Errorf("drop collection %s: %w", name, err)
		}
	}
	return nil
}

func eventsCollection() *core.Collection {
	c := core.NewBaseCollection(store.CollectionEvents)
	c.Fields.Add(
		&core.TextField{Name: "title", Required: true, Max: 200},
		&core.TextField{Name: "description"},
		&core.TextField{Name: "venue"},
		&core.DateField{Name: "date"},
		&core.NumberField{Name: "price", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.NumberField{Name: "totalTickets", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.NumberField{Name: "soldTickets", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.SelectField{
			Name:      "status",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{string(models.EventDraft), string(models.EventActive), string(models.EventEnded)},
		},
		&core.BoolField{Name: "isPast"},
		&core.TextField{Name: "imageUrl"},
	)
	c.AddIndex("idx_events_status", false, "status", "")
	return c
}

func ticketsCollection() *core.Collection {
	c := core.NewBaseCollection(store.CollectionTickets)
	if id, ok := c.Fields.GetByName("id").(*core.TextField); ok {
		id.Pattern = referencePattern
		id.Min = 1
		id.Max = 100
	}
	c.Fields.Add(
		&core.TextField{Name: "eventId", Required: true},
		&core.TextField{Name: "eventTitle"},
		&core.TextField{Name: "buyerName"},
		&core.EmailField{Name: "buyerEmail"},
		&core.TextField{Name: "buyerPhone"},
		&core.NumberField{Name: "quantity", OnlyInt: true, Min: types.Pointer(1.0)},
		&core.NumberField{Name: "amount", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.SelectField{
			Name:      "status",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{string(models.TicketPending), string(models.TicketPaid), string(models.TicketConfirmed)},
		},
		&core.DateField{Name: "purchasedAt"},
		&core.DateField{Name: "paidAt"},
		&core.DateField{Name: "confirmedAt"},
	)
	c.AddIndex("idx_tickets_eventId", false, "eventId", "")
	return c
}

func vendorsCollection() *core.Collection {
	c := core.NewBaseCollection(store.CollectionVendors)
	c.Fields.Add(
		&core.TextField{Name: "brandName", Required: true, Max: 200},
		&core.TextField{Name: "ownerName"},
		&core.TextField{Name: "email"},
		&core.TextField{Name: "phone"},
		&core.TextField{Name: "instagram"},
		&core.TextField{Name: "description"},
		&core.TextField{Name: "products"},
		&core.JSONField{Name: "categories"},
		&core.JSONField{Name: "events"},
		&core.TextField{Name: "imageUrl"},
		&core.JSONField{Name: "imageUrls"},
		&core.SelectField{
			Name:      "status",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{string(models.VendorPending), string(models.VendorApproved), string(models.VendorDeclined)},
		},
		&core.TextField{Name: "declineReason"},
		&core.NumberField{Name: "reapplyCount", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.JSONField{Name: "previousSnapshot"},
		&core.DateField{Name: "submittedAt"},
		&core.DateField{Name: "updatedAt"},
	)
	// Not unique: duplicate brands are resolved by the merge engine, not the schema.
	c.AddIndex("idx_vendors_brandName", false, "brandName", "")
	return c
}

func testimonialsCollection() *core.Collection {
	c := core.NewBaseCollection(store.CollectionTestimonials)
	c.Fields.Add(
		&core.TextField{Name: "authorName", Required: true},
		&core.SelectField{
			Name:      "role",
			Required:  true,
			MaxSelect: 1,
			Values:    []string{string(models.RoleVendor), string(models.RoleAttendee), string(models.RoleAdmin)},
		},
		&core.TextField{Name: "message", Required: true},
		&core.NumberField{Name: "rating", OnlyInt: true, Min: types.Pointer(0.0), Max: types.Pointer(5.0)},
		&core.DateField{Name: "createdAt"},
	)
	return c
}
