package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateEvent(ctx context.Context, event *BillingEvent) error
	EventExistsByExternalID(ctx context.Context, externalID string) (bool, error)

	CreatePeriod(ctx context.Context, period *BillingPeriod) error
	FindPeriodByExternalInvoiceID(ctx context.Context, externalInvoiceID string) (*BillingPeriod, error)
	SavePeriod(ctx context.Context, period *BillingPeriod) error

	CreateNotification(ctx context.Context, notification *Notification) error

	FindSubscriptionByExternalID(ctx context.Context, externalID string) (*Subscription, error)
}
