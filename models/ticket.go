package models

import (
	"time"
)

type Buyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Ticket is one purchase attempt, keyed by the payment provider's reference.
type Ticket struct {
	Reference   string       `json:"reference"`
	EventID     string       `json:"eventId"`
	EventTitle  string       `json:"eventTitle"`
	Buyer       Buyer        `json:"buyer"`
	Quantity    int          `json:"quantity"`
	Amount      int64        `json:"amount"` // minor currency unit
	Status      TicketStatus `json:"status"`
	PurchasedAt time.Time    `json:"purchasedAt"`
	PaidAt      *time.Time   `json:"paidAt"`
	ConfirmedAt *time.Time   `json:"confirmedAt"`
}

func (t *Ticket) Clone() *Ticket {
	c := *t
	if t.PaidAt != nil {
		at := *t.PaidAt
		c.PaidAt = &at
	}
	if t.ConfirmedAt != nil {
		at := *t.ConfirmedAt
		c.ConfirmedAt = &at
	}
	return &c
}
