// Package domain contains persistence models for billing plans,
// subscriptions, periods, webhook events and notifications.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Event types this service reconciles. Anything else is stored as an
// audit record only.
const (
	EventTypeInvoiceCreated          = "invoice.created"
	EventTypeInvoicePaymentSucceeded = "invoice.payment_succeeded"
)

// ResourceKind tags the variant of an event's resource reference.
type ResourceKind string

const (
	ResourceKindBillingPeriod ResourceKind = "billing_period"
	ResourceKindNotification  ResourceKind = "notification"
)

// Plan is a purchasable billing plan.
type Plan struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Code         string       `gorm:"type:text;not null;uniqueIndex"`
	Name         string       `gorm:"type:text;not null"`
	MonthlyPrice float64      `gorm:"not null"`
	TrialDays    int          `gorm:"not null;default:0"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Plan) TableName() string { return "billing_plans" }

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusPending  SubscriptionStatus = "pending"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription ties a tenant's contract to a plan at the payment
// provider. ExternalID is the provider's subscription id and is the
// join key used by invoice-created events.
type Subscription struct {
	ID               snowflake.ID       `gorm:"primaryKey"`
	ImplementationID *snowflake.ID      `gorm:"index"`
	ContractID       *snowflake.ID      `gorm:"index"`
	PlanID           snowflake.ID       `gorm:"not null;index"`
	ExternalID       *string            `gorm:"type:text;index"`
	Status           SubscriptionStatus `gorm:"type:text;not null"`
	TrialEndsAt      *time.Time         `gorm:""`
	CreatedAt        time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Subscription) TableName() string { return "billing_subscriptions" }

// CardDetails is the card summary captured from a successful charge.
type CardDetails struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// BillingPeriod is one invoice cycle for a subscription. It is created
// unpaid from an invoice-created event and transitions to paid exactly
// once.
type BillingPeriod struct {
	ID                snowflake.ID  `gorm:"primaryKey"`
	ContractID        *snowflake.ID `gorm:"index"`
	SubscriptionID    snowflake.ID  `gorm:"not null;index"`
	PlanID            snowflake.ID  `gorm:"not null;index"`
	ExternalInvoiceID string        `gorm:"type:text;not null;index"`
	StartsAt          time.Time     `gorm:"not null"`
	EndsAt            time.Time     `gorm:"not null"`
	Paid              bool          `gorm:"not null;default:false"`
	Amount            *float64      `gorm:""`
	ChargedAt         *time.Time    `gorm:""`
	ExternalChargeID  *string       `gorm:"type:text"`
	CardDetails       *CardDetails  `gorm:"type:text;serializer:json"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BillingPeriod) TableName() string { return "billing_periods" }

// BillingEvent is one received webhook notification. Append-only; the
// resource reference is set during ingestion and never changes.
type BillingEvent struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	ExternalID   *string           `gorm:"type:text;uniqueIndex"`
	EventType    string            `gorm:"type:text;not null"`
	Payload      datatypes.JSONMap `gorm:"type:jsonb;not null"`
	OccurredAt   time.Time         `gorm:"not null"`
	ResourceKind *ResourceKind     `gorm:"type:text"`
	ResourceID   *snowflake.ID     `gorm:""`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BillingEvent) TableName() string { return "billing_events" }

// Notification records a user-facing billing notification to deliver.
type Notification struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	EventType    string       `gorm:"type:text;not null"`
	ResourceKind ResourceKind `gorm:"type:text;not null"`
	ResourceID   snowflake.ID `gorm:"not null"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Notification) TableName() string { return "billing_notifications" }
