// Package domain defines the payment-provider collaborator surface the
// billing reconciler depends on.
package domain

import (
	"context"
	"errors"
)

var (
	ErrChargeNotFound = errors.New("payment: charge not found")
	ErrProviderError  = errors.New("payment: provider error")
)

// CardSource is the payment source attached to a charge.
type CardSource struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// Charge is the provider's record of a captured payment. Amount is in
// minor currency units.
type Charge struct {
	ID      string     `json:"id"`
	Amount  int64      `json:"amount"`
	Created int64      `json:"created"`
	Source  CardSource `json:"source"`
}

// ChargeRetriever fetches the full charge object by id.
type ChargeRetriever interface {
	Retrieve(ctx context.Context, chargeID string) (*Charge, error)
}
