package handlers

import (
	"errors"
	"net/http"
	"time"

	"nightmarket/internal/services"
	"nightmarket/internal/status"
	"nightmarket/models"
	"nightmarket/utils"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const maxReferenceAttempts = 3

type TicketHandler struct {
	tickets         *services.TicketService
	events          *services.EventService
	referencePrefix string
	now             func() time.Time
}

func NewTicketHandler(tickets *services.TicketService, events *services.EventService, referencePrefix string) *TicketHandler {
	return &TicketHandler{
		tickets:         tickets,
		events:          events,
		referencePrefix: referencePrefix,
		now:             time.Now,
	}
}

type CheckoutRequest struct {
	EventID  string       `json:"eventId"`
	Quantity int          `json:"quantity"`
	Buyer    models.Buyer `json:"buyer"`
}

type CheckoutResponse struct {
	Ticket       *models.Ticket `json:"ticket"`
	Reference    string         `json:"reference"`
	AmountMinor  int64          `json:"amountMinor"`
	AmountString string         `json:"amount"`
}

// Checkout records a pending ticket and hands the reference to the client,
// which passes it to the payment provider. Capacity is not checked here.
func (h *TicketHandler) Checkout(e *core.RequestEvent) error {
	var req CheckoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Buyer.Email == "" {
		return apis.NewBadRequestError("Buyer email is required", nil)
	}

	ctx := e.Request.Context()
	ev, err := h.events.Get(ctx, req.EventID)
	if err != nil {
		return apiError(err, "checkout")
	}
	if ev.Status != models.EventActive {
		return apis.NewBadRequestError("Event is not on sale", nil)
	}

	params := services.CreatePendingParams{
		EventID:  ev.ID,
		Buyer:    req.Buyer,
		Quantity: req.Quantity,
		Amount:   ev.Price * int64(req.Quantity),
	}

	var ticket *models.Ticket
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		params.Reference, err = utils.GenerateReference(h.referencePrefix, h.now())
		if err != nil {
			return apis.NewInternalServerError("Could not generate reference", err)
		}
		ticket, err = h.tickets.CreatePending(ctx, params)
		if !errors.Is(err, status.ErrTicketExists) {
			break
		}
	}
	if err != nil {
		return apiError(err, "checkout")
	}

	return e.JSON(http.StatusCreated, CheckoutResponse{
		Ticket:       ticket,
		Reference:    ticket.Reference,
		AmountMinor:  ticket.Amount,
		AmountString: utils.FormatMinor(ticket.Amount),
	})
}

// GetTicket lets a client re-query a reference after a timed out confirm.
func (h *TicketHandler) GetTicket(e *core.RequestEvent) error {
	ref := services.ExtractReference(e.Request.PathValue("reference"))
	ticket, err := h.tickets.Lookup(e.Request.Context(), ref)
	if err != nil {
		return apiError(err, "get_ticket")
	}
	return e.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) ListEventTickets(e *core.RequestEvent) error {
	tickets, err := h.tickets.ListByEvent(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err, "list_tickets")
	}
	return e.JSON(http.StatusOK, map[string]any{"items": tickets})
}
