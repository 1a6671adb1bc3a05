package domain

import "errors"

var (
	// ErrDuplicateEvent means the webhook's external id was already
	// recorded; the delivery is a replay and carries no new work.
	ErrDuplicateEvent = errors.New("billing: duplicate event")

	// ErrUnrecognizedPayload means the invoice payload matched neither
	// the regular nor the trial shape. Fatal: the provider's contract
	// changed or the payload is corrupt.
	ErrUnrecognizedPayload = errors.New("billing: unrecognized payload shape")

	// ErrSubscriptionNotFound means an invoice referenced a provider
	// subscription this service has never seen.
	ErrSubscriptionNotFound = errors.New("billing: subscription not found")

	// ErrPeriodNotFound means a payment event arrived for an invoice
	// with no billing period, usually delivery out of order.
	ErrPeriodNotFound = errors.New("billing: billing period not found")

	// ErrPeriodAlreadyPaid guards against applying a second payment to
	// a paid period when the provider re-delivers under a new event id.
	ErrPeriodAlreadyPaid = errors.New("billing: billing period already paid")

	ErrInvalidEvent = errors.New("billing: invalid event")
)
