package models

import (
	"time"
)

type Event struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Venue        string      `json:"venue"`
	Date         time.Time   `json:"date"`
	Price        int64       `json:"price"` // minor currency unit
	TotalTickets int         `json:"totalTickets"`
	SoldTickets  int         `json:"soldTickets"`
	Status       EventStatus `json:"status"`
	IsPast       bool        `json:"isPast"`
	ImageURL     string      `json:"imageUrl"`
}

// Remaining is informational only; checkout does not enforce it.
func (e *Event) Remaining() int {
	if r := e.TotalTickets - e.SoldTickets; r > 0 {
		return r
	}
	return 0
}

func (e *Event) SoldOut() bool {
	return e.SoldTickets >= e.TotalTickets
}

type Availability struct {
	EventID   string `json:"eventId"`
	Total     int    `json:"total"`
	Sold      int    `json:"sold"`
	Remaining int    `json:"remaining"`
	SoldOut   bool   `json:"soldOut"`
}

func (e *Event) Availability() Availability {
	return Availability{
		EventID:   e.ID,
		Total:     e.TotalTickets,
		Sold:      e.SoldTickets,
		Remaining: e.Remaining(),
		SoldOut:   e.SoldOut(),
	}
}
