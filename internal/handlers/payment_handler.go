package handlers

import (
	"io"
	"net/http"

	"nightmarket/internal/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Webhook receives the provider's signed charge notifications. Duplicate
// deliveries are answered 200 so the provider stops retrying.
func (h *PaymentHandler) Webhook(e *core.RequestEvent) error {
	body, err := io.ReadAll(io.LimitReader(e.Request.Body, maxWebhookBody))
	if err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	res, err := h.paymentService.HandleWebhook(e.Request.Context(), body, e.Request.Header.Get("X-Signature"))
	if err != nil {
		return apiError(err, "payment_webhook")
	}
	if res == nil {
		return e.JSON(http.StatusOK, map[string]any{"status": "ignored"})
	}
	return e.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"applied":   res.Applied,
		"reference": res.Ticket.Reference,
	})
}

// SimulatePayment - Simulate payment success (for testing)
func (h *PaymentHandler) SimulatePayment(e *core.RequestEvent) error {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	res, err := h.paymentService.Simulate(e.Request.Context(), req.Reference)
	if err != nil {
		return apiError(err, "simulate_payment")
	}
	return e.JSON(http.StatusOK, res)
}
