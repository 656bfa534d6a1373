package handlers

import (
	"net/http"

	"nightmarket/internal/services"
	"nightmarket/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// ListActive is the public listing.
func (h *EventHandler) ListActive(e *core.RequestEvent) error {
	events, err := h.events.ListActive(e.Request.Context())
	if err != nil {
		return apiError(err, "list_active_events")
	}
	return e.JSON(http.StatusOK, map[string]any{"items": events})
}

func (h *EventHandler) Availability(e *core.RequestEvent) error {
	avail, err := h.events.Availability(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err, "event_availability")
	}
	return e.JSON(http.StatusOK, avail)
}

func (h *EventHandler) List(e *core.RequestEvent) error {
	events, err := h.events.List(e.Request.Context(), models.EventStatus(e.Request.URL.Query().Get("status")))
	if err != nil {
		return apiError(err, "list_events")
	}
	return e.JSON(http.StatusOK, map[string]any{"items": events})
}

func (h *EventHandler) Create(e *core.RequestEvent) error {
	var ev models.Event
	if err := e.BindBody(&ev); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	created, err := h.events.Create(e.Request.Context(), &ev)
	if err != nil {
		return apiError(err, "create_event")
	}
	return e.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Update(e *core.RequestEvent) error {
	var u services.EventUpdate
	if err := e.BindBody(&u); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ev, err := h.events.Update(e.Request.Context(), e.Request.PathValue("id"), u)
	if err != nil {
		return apiError(err, "update_event")
	}
	return e.JSON(http.StatusOK, ev)
}

func (h *EventHandler) SetStatus(e *core.RequestEvent) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	to, err := models.ParseEventStatus(req.Status)
	if err != nil {
		return apiError(err, "event_status")
	}

	ev, err := h.events.SetStatus(e.Request.Context(), e.Request.PathValue("id"), to)
	if err != nil {
		return apiError(err, "event_status")
	}
	return e.JSON(http.StatusOK, ev)
}

func (h *EventHandler) Delete(e *core.RequestEvent) error {
	if err := h.events.Delete(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return apiError(err, "delete_event")
	}
	return e.NoContent(http.StatusNoContent)
}
