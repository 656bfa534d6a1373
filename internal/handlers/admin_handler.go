package handlers

import (
	"net/http"

	"nightmarket/internal/services"
	"nightmarket/models"

	"github.com/pocketbase/pocketbase/core"
)

type AdminHandler struct {
	events  *services.EventService
	vendors *services.VendorService
}

func NewAdminHandler(events *services.EventService, vendors *services.VendorService) *AdminHandler {
	return &AdminHandler{events: events, vendors: vendors}
}

type EventSummary struct {
	ID     string             `json:"id"`
	Title  string             `json:"title"`
	Status models.EventStatus `json:"status"`
	models.Availability
	Oversold bool `json:"oversold"`
}

// Dashboard summarises capacity per event and the vendor review queue.
func (h *AdminHandler) Dashboard(e *core.RequestEvent) error {
	ctx := e.Request.Context()

	events, err := h.events.List(ctx, "")
	if err != nil {
		return apiError(err, "admin_dashboard")
	}
	pending, err := h.vendors.List(ctx, models.VendorPending)
	if err != nil {
		return apiError(err, "admin_dashboard")
	}

	summaries := make([]EventSummary, 0, len(events))
	for _, ev := range events {
		summaries = append(summaries, EventSummary{
			ID:           ev.ID,
			Title:        ev.Title,
			Status:       ev.Status,
			Availability: ev.Availability(),
			Oversold:     ev.SoldTickets > ev.TotalTickets,
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"events":         summaries,
		"pendingVendors": len(pending),
	})
}
