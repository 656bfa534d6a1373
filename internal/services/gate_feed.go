package services

import (
	"context"
	"fmt"
	"time"

	"nightmarket/models"
	"nightmarket/utils"

	pubnub "github.com/pubnub/go/v7"
)

type Publisher interface {
	Publish(channel string, message any) error
}

type PubNubPublisher struct {
	pn *pubnub.PubNub
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	return &PubNubPublisher{pn: pn}
}

func (p *PubNubPublisher) Publish(channel string, message any) error {
	_, _, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	return err
}

// GateChannel is the feed every scanner at an event listens on.
func GateChannel(eventID string) string {
	return fmt.Sprintf("gate-%s", eventID)
}

type AdmissionMessage struct {
	Type        string    `json:"type"`
	Reference   string    `json:"reference"`
	EventID     string    `json:"eventId"`
	Quantity    int       `json:"quantity"`
	BuyerName   string    `json:"buyerName"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// GateFeed fans admissions out to the other gate devices. Publishing goes
// through a circuit breaker so a PubNub outage does not slow the gate.
type GateFeed struct {
	pub     Publisher
	breaker *utils.CircuitBreaker
}

func NewGateFeed(pub Publisher, breaker *utils.CircuitBreaker) *GateFeed {
	if breaker == nil {
		breaker = utils.NewCircuitBreaker("gate-feed", utils.WithMaxRequests(20), utils.WithTimeout(30*time.Second))
	}
	return &GateFeed{pub: pub, breaker: breaker}
}

func (f *GateFeed) PublishAdmission(ctx context.Context, t *models.Ticket) error {
	msg := AdmissionMessage{
		Type:      "ticket_admitted",
		Reference: t.Reference,
		EventID:   t.EventID,
		Quantity:  t.Quantity,
		BuyerName: t.Buyer.Name,
	}
	if t.ConfirmedAt != nil {
		msg.ConfirmedAt = *t.ConfirmedAt
	}

	_, err := f.breaker.Execute(ctx, func() (any, error) {
		return nil, f.pub.Publish(GateChannel(t.EventID), msg)
	})
	return err
}
