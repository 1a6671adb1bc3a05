package repository

import (
	"context"
	"errors"

	"github.com/thrivekit/thrivekit/internal/billing/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateEvent(ctx context.Context, event *domain.BillingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) EventExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.BillingEvent{}).
		Where("external_id = ?", externalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreatePeriod(ctx context.Context, period *domain.BillingPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *repository) FindPeriodByExternalInvoiceID(ctx context.Context, externalInvoiceID string) (*domain.BillingPeriod, error) {
	var period domain.BillingPeriod
	err := r.db.WithContext(ctx).
		Where("external_invoice_id = ?", externalInvoiceID).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPeriodNotFound
		}
		return nil, err
	}
	return &period, nil
}

func (r *repository) SavePeriod(ctx context.Context, period *domain.BillingPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

func (r *repository) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repository) FindSubscriptionByExternalID(ctx context.Context, externalID string) (*domain.Subscription, error) {
	var subscription domain.Subscription
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &subscription, nil
}
