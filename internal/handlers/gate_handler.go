package handlers

import (
	"log/slog"
	"net/http"

	"nightmarket/internal/services"
	"nightmarket/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type GateHandler struct {
	tickets *services.TicketService
}

func NewGateHandler(tickets *services.TicketService) *GateHandler {
	return &GateHandler{tickets: tickets}
}

type ConfirmRequest struct {
	Code string `json:"code"`
}

type ConfirmResponse struct {
	OK      bool                    `json:"ok"`
	Already bool                    `json:"already"`
	Outcome services.ConfirmOutcome `json:"outcome"`
	Ticket  *models.Ticket          `json:"ticket"`
}

// Confirm is called once per physical scan. Business outcomes are always
// 200; only store failures are errors, and the scanner should re-query the
// reference before scanning again.
func (h *GateHandler) Confirm(e *core.RequestEvent) error {
	var req ConfirmRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ref := services.ExtractReference(req.Code)
	res, err := h.tickets.Confirm(e.Request.Context(), ref)
	if err != nil {
		return apiError(err, "gate_confirm")
	}

	staff := ""
	if e.Auth != nil {
		staff = e.Auth.Id
	}
	slog.Info("Gate scan", "reference", ref, "outcome", res.Outcome(), "staff", staff)

	return e.JSON(http.StatusOK, ConfirmResponse{
		OK:      res.OK,
		Already: res.Already,
		Outcome: res.Outcome(),
		Ticket:  res.Ticket,
	})
}
