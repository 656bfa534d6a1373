package status

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket: reference not found")
	ErrTicketExists   = errors.New("ticket: reference already exists")
	ErrEventMismatch  = errors.New("ticket: event does not match reference")

	ErrEventNotFound   = errors.New("event: event not found")
	ErrEventHasTickets = errors.New("event: event has tickets")
	ErrVendorNotFound  = errors.New("vendor: vendor not found")

	ErrInvalidTransition = errors.New("status: transition not allowed")
	ErrInvalidInput      = errors.New("input: invalid input")

	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrLockNotAcquired  = errors.New("lock: lock not acquired")
)
