package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"nightmarket/internal/status"
	"nightmarket/utils"

	pubnub "github.com/pubnub/go/v7"
	"github.com/shopspring/decimal"
)

const (
	EventChargeSuccess = "charge.success"

	notificationSuccess = "success"
)

type PaymentMetadata struct {
	EventID  string `json:"eventId"`
	Quantity int    `json:"quantity"`
}

type PaymentData struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"` // major units
	Currency  string          `json:"currency"`
	Metadata  PaymentMetadata `json:"metadata"`
}

type WebhookPayload struct {
	Event string      `json:"event"`
	Data  PaymentData `json:"data"`
}

// PaymentNotification is what the provider pushes on the PubNub channel.
type PaymentNotification struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	EventID   string          `json:"eventId"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentService adapts the payment provider's reports onto MarkPaid. It
// never decides on its own that a payment succeeded.
type PaymentService struct {
	tickets *TicketService
	secret  []byte
}

func NewPaymentService(tickets *TicketService, webhookSecret string) *PaymentService {
	return &PaymentService{
		tickets: tickets,
		secret:  []byte(webhookSecret),
	}
}

// Sign returns the hex HMAC-SHA512 of body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *PaymentService) VerifySignature(body []byte, signature string) error {
	if len(s.secret) == 0 || signature == "" {
		return status.ErrInvalidSignature
	}
	if !hmac.Equal([]byte(Sign(s.secret, body)), []byte(signature)) {
		return status.ErrInvalidSignature
	}
	return nil
}

// HandleWebhook verifies and applies a provider webhook. It returns a nil
// result for events that do not report a successful charge.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*MarkPaidResult, error) {
	if err := s.VerifySignature(body, signature); err != nil {
		return nil, err
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode webhook: %v", status.ErrInvalidInput, err)
	}

	if payload.Event != EventChargeSuccess {
		slog.Info("Ignoring payment webhook", "event", payload.Event, "reference", payload.Data.Reference)
		return nil, nil
	}

	res, err := s.apply(ctx, payload.Data.Reference, payload.Data.Metadata.EventID, payload.Data.Metadata.Quantity, payload.Data.Amount)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// HandleNotification applies a PubNub payment notification. message is the
// raw PNMessage payload, either a JSON object or a JSON string.
func (s *PaymentService) HandleNotification(ctx context.Context, message any) (*MarkPaidResult, error) {
	var raw []byte
	switch m := message.(type) {
	case string:
		raw = []byte(m)
	case []byte:
		raw = m
	default:
		b, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("%w: encode notification: %v", status.ErrInvalidInput, err)
		}
		raw = b
	}

	var n PaymentNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: decode notification: %v", status.ErrInvalidInput, err)
	}
	if n.Status != notificationSuccess {
		slog.Info("Ignoring payment notification", "status", n.Status, "reference", n.Reference)
		return nil, nil
	}

	res, err := s.apply(ctx, n.Reference, n.EventID, n.Quantity, n.Amount)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Simulate marks a ticket paid without a provider. Only routed in
// development.
func (s *PaymentService) Simulate(ctx context.Context, reference string) (MarkPaidResult, error) {
	slog.Warn("Simulating payment", "reference", reference)
	return s.tickets.MarkPaid(ctx, reference, "", 0)
}

func (s *PaymentService) apply(ctx context.Context, reference, eventID string, quantity int, amount decimal.Decimal) (MarkPaidResult, error) {
	res, err := s.tickets.MarkPaid(ctx, reference, eventID, quantity)
	if err != nil {
		return MarkPaidResult{}, err
	}

	if !amount.IsZero() {
		if paid := utils.ToMinor(amount); paid != res.Ticket.Amount {
			slog.Warn("Paid amount differs from ticket amount",
				"reference", reference,
				"paid", utils.FormatMinor(paid),
				"expected", utils.FormatMinor(res.Ticket.Amount))
		}
	}
	return res, nil
}

// Subscribe listens for payment notifications on channel until ctx is done.
func (s *PaymentService) Subscribe(ctx context.Context, pn *pubnub.PubNub, channel string) {
	listener := pubnub.NewListener()
	pn.AddListener(listener)
	pn.Subscribe().
		Channels([]string{channel}).
		Execute()

	defer func() {
		pn.Unsubscribe().Channels([]string{channel}).Execute()
		pn.RemoveListener(listener)
	}()

	for {
		select {
		case st := <-listener.Status:
			logSubscriptionStatus(channel, st)

		case msg := <-listener.Message:
			res, err := s.HandleNotification(ctx, msg.Message)
			switch {
			case errors.Is(err, status.ErrTicketNotFound):
				slog.Warn("Payment notification for unknown reference", "error", err)
			case err != nil:
				slog.Error("Failed to apply payment notification", "error", err)
			case res != nil:
				slog.Info("Payment notification applied", "reference", res.Ticket.Reference, "applied", res.Applied)
			}

		case <-ctx.Done():
			slog.Info("Payment notification subscription closed", "channel", channel)
			return
		}
	}
}

func logSubscriptionStatus(channel string, st *pubnub.PNStatus) {
	if st == nil {
		return
	}
	switch st.Category {
	case pubnub.PNConnectedCategory:
		slog.Info("Connected to payment notifications", "channel", channel)
	case pubnub.PNReconnectedCategory:
		slog.Info("Reconnected to payment notifications", "channel", channel)
	case pubnub.PNDisconnectedCategory, pubnub.PNTimeoutCategory:
		slog.Warn("Disconnected from payment notifications", "channel", channel, "category", st.Category)
	case pubnub.PNAccessDeniedCategory, pubnub.PNBadRequestCategory:
		slog.Error("Payment notification subscription rejected", "channel", channel, "category", st.Category)
	}
}
