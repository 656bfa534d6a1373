package pbstore

import (
	"time"

	"nightmarket/models"

	"github.com/pocketbase/pocketbase/core"
)

func optionalTime(r *core.Record, key string) *time.Time {
	dt := r.GetDateTime(key)
	if dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}

func timeValue(t *time.Time) any {
	if t == nil {
		return ""
	}
	return *t
}

func eventFromRecord(r *core.Record) *models.Event {
	return &models.Event{
		ID:           r.Id,
		Title:        r.GetString("title"),
		Description:  r.GetString("description"),
		Venue:        r.GetString("venue"),
		Date:         r.GetDateTime("date").Time(),
		Price:        int64(r.GetInt("price")),
		TotalTickets: r.GetInt("totalTickets"),
		SoldTickets:  r.GetInt("soldTickets"),
		Status:       models.EventStatus(r.GetString("status")),
		IsPast:       r.GetBool("isPast"),
		ImageURL:     r.GetString("imageUrl"),
	}
}

func applyEvent(r *core.Record, e *models.Event) {
	r.Set("title", e.Title)
	r.Set("description", e.Description)
	r.Set("venue", e.Venue)
	r.Set("date", e.Date)
	r.Set("price", e.Price)
	r.Set("totalTickets", e.TotalTickets)
	r.Set("soldTickets", e.SoldTickets)
	r.Set("status", string(e.Status))
	r.Set("isPast", e.IsPast)
	r.Set("imageUrl", e.ImageURL)
}

func ticketFromRecord(r *core.Record) *models.Ticket {
	return &models.Ticket{
		Reference:  r.Id,
		EventID:    r.GetString("eventId"),
		EventTitle: r.GetString("eventTitle"),
		Buyer: models.Buyer{
			Name:  r.GetString("buyerName"),
			Email: r.GetString("buyerEmail"),
			Phone: r.GetString("buyerPhone"),
		},
		Quantity:    r.GetInt("quantity"),
		Amount:      int64(r.GetInt("amount")),
		Status:      models.TicketStatus(r.GetString("status")),
		PurchasedAt: r.GetDateTime("purchasedAt").Time(),
		PaidAt:      optionalTime(r, "paidAt"),
		ConfirmedAt: optionalTime(r, "confirmedAt"),
	}
}

func applyTicket(r *core.Record, t *models.Ticket) {
	r.Id = t.Reference
	r.Set("eventId", t.EventID)
	r.Set("eventTitle", t.EventTitle)
	r.Set("buyerName", t.Buyer.Name)
	r.Set("buyerEmail", t.Buyer.Email)
	r.Set("buyerPhone", t.Buyer.Phone)
	r.Set("quantity", t.Quantity)
	r.Set("amount", t.Amount)
	r.Set("status", string(t.Status))
	r.Set("purchasedAt", t.PurchasedAt)
	r.Set("paidAt", timeValue(t.PaidAt))
	r.Set("confirmedAt", timeValue(t.ConfirmedAt))
}

func vendorFromRecord(r *core.Record) (*models.Vendor, error) {
	v := &models.Vendor{
		ID:            r.Id,
		BrandName:     r.GetString("brandName"),
		OwnerName:     r.GetString("ownerName"),
		Email:         r.GetString("email"),
		Phone:         r.GetString("phone"),
		Instagram:     r.GetString("instagram"),
		Description:   r.GetString("description"),
		Products:      r.GetString("products"),
		ImageURL:      r.GetString("imageUrl"),
		Status:        models.VendorStatus(r.GetString("status")),
		DeclineReason: r.GetString("declineReason"),
		ReapplyCount:  r.GetInt("reapplyCount"),
		SubmittedAt:   r.GetDateTime("submittedAt").Time(),
		UpdatedAt:     r.GetDateTime("updatedAt").Time(),
	}
	for key, dst := range map[string]any{
		"categories":       &v.Categories,
		"events":           &v.Events,
		"imageUrls":        &v.ImageURLs,
		"previousSnapshot": &v.PreviousSnapshot,
	} {
		if err := r.UnmarshalJSONField(key, dst); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func applyVendor(r *core.Record, v *models.Vendor) {
	r.Set("brandName", v.BrandName)
	r.Set("ownerName", v.OwnerName)
	r.Set("email", v.Email)
	r.Set("phone", v.Phone)
	r.Set("instagram", v.Instagram)
	r.Set("description", v.Description)
	r.Set("products", v.Products)
	r.Set("categories", nonNil(v.Categories))
	r.Set("events", nonNil(v.Events))
	r.Set("imageUrl", v.ImageURL)
	r.Set("imageUrls", nonNil(v.ImageURLs))
	r.Set("status", string(v.Status))
	r.Set("declineReason", v.DeclineReason)
	r.Set("reapplyCount", v.ReapplyCount)
	r.Set("previousSnapshot", v.PreviousSnapshot)
	r.Set("submittedAt", v.SubmittedAt)
	r.Set("updatedAt", v.UpdatedAt)
}

func testimonialFromRecord(r *core.Record) *models.Testimonial {
	return &models.Testimonial{
		ID:         r.Id,
		AuthorName: r.GetString("authorName"),
		Role:       models.AuthorRole(r.GetString("role")),
		Message:    r.GetString("message"),
		Rating:     r.GetInt("rating"),
		CreatedAt:  r.GetDateTime("createdAt").Time(),
	}
}

func applyTestimonial(r *core.Record, t *models.Testimonial) {
	r.Set("authorName", t.AuthorName)
	r.Set("role", string(t.Role))
	r.Set("message", t.Message)
	r.Set("rating", t.Rating)
	r.Set("createdAt", t.CreatedAt)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
