package models

import (
	"fmt"
	"slices"

	"nightmarket/internal/status"
)

type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketPaid      TicketStatus = "paid"
	TicketConfirmed TicketStatus = "confirmed"
)

// Legal ticket edges. Anything not listed here, including pending -> confirmed,
// is rejected by CanTransitionTo.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketPending: {TicketPaid},
	TicketPaid:    {TicketConfirmed},
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketPending, TicketPaid, TicketConfirmed:
		return true
	}
	return false
}

func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	return slices.Contains(ticketTransitions[s], next)
}

func ParseTicketStatus(v string) (TicketStatus, error) {
	s := TicketStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown ticket status %q", status.ErrInvalidInput, v)
	}
	return s, nil
}

type VendorStatus string

const (
	VendorPending  VendorStatus = "pending"
	VendorApproved VendorStatus = "approved"
	VendorDeclined VendorStatus = "declined"
)

// Admin moderation edges. The merge engine's reset to pending on re-application
// is not a moderation transition and does not consult this table.
var vendorTransitions = map[VendorStatus][]VendorStatus{
	VendorPending:  {VendorApproved, VendorDeclined},
	VendorDeclined: {VendorPending, VendorApproved},
	VendorApproved: {VendorDeclined},
}

func (s VendorStatus) Valid() bool {
	switch s {
	case VendorPending, VendorApproved, VendorDeclined:
		return true
	}
	return false
}

func (s VendorStatus) CanTransitionTo(next VendorStatus) bool {
	return slices.Contains(vendorTransitions[s], next)
}

func ParseVendorStatus(v string) (VendorStatus, error) {
	s := VendorStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown vendor status %q", status.ErrInvalidInput, v)
	}
	return s, nil
}

type EventStatus string

const (
	EventDraft  EventStatus = "draft"
	EventActive EventStatus = "active"
	EventEnded  EventStatus = "ended"
)

var eventTransitions = map[EventStatus][]EventStatus{
	EventDraft:  {EventActive, EventEnded},
	EventActive: {EventEnded},
}

func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventActive, EventEnded:
		return true
	}
	return false
}

func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	return slices.Contains(eventTransitions[s], next)
}

func ParseEventStatus(v string) (EventStatus, error) {
	s := EventStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown event status %q", status.ErrInvalidInput, v)
	}
	return s, nil
}

type AuthorRole string

const (
	RoleVendor   AuthorRole = "vendor"
	RoleAttendee AuthorRole = "attendee"
	RoleAdmin    AuthorRole = "admin"
)

func (r AuthorRole) Valid() bool {
	switch r {
	case RoleVendor, RoleAttendee, RoleAdmin:
		return true
	}
	return false
}
