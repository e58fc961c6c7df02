package booking

import "errors"

var (
	// ErrSlotTaken means another appointment already holds the same provider
	// and start time. Retryable: the caller should re-fetch availability.
	ErrSlotTaken = errors.New("slot no longer available")

	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrPayerNotFound       = errors.New("payer not found")
	ErrPastStartTime       = errors.New("start time is in the past")
)
