package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// IngestRequest is one webhook delivery, already parsed from JSON.
type IngestRequest struct {
	ExternalID string
	EventType  string
	Payload    datatypes.JSONMap
	OccurredAt time.Time
}

// Service reconciles webhook events into billing periods.
type Service interface {
	// Ingest stores the event and applies its side effects in one
	// transaction. A replayed external id returns ErrDuplicateEvent
	// with no side effects.
	Ingest(ctx context.Context, req IngestRequest) (*BillingEvent, error)
}
