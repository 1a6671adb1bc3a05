package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	"github.com/thrivekit/thrivekit/internal/implementation/domain"
	pkgdb "github.com/thrivekit/thrivekit/pkg/db"
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

func (r *repository) Create(ctx context.Context, impl *domain.Implementation) error {
	return r.db.WithContext(ctx).Create(impl).Error
}

func (r *repository) Save(ctx context.Context, impl *domain.Implementation) error {
	return r.db.WithContext(ctx).Save(impl).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Implementation, error) {
	var impl domain.Implementation
	err := r.db.WithContext(ctx).First(&impl, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &impl, nil
}

// lockSuffix is appended to the guard queries so matching rows are
// locked until the enclosing transaction ends. sqlite (tests) rejects
// the clause and runs the same queries unlocked.
func (r *repository) lockSuffix() string {
	if pkgdb.SupportsRowLocking(r.db) {
		return " FOR UPDATE"
	}
	return ""
}

func (r *repository) LockImplementationCodes(ctx context.Context, code string) error {
	// Raw scan forces eager execution; the lock must be taken even
	// when the result set is empty.
	var ids []int64
	return r.db.WithContext(ctx).Raw(
		`SELECT id FROM implementations WHERE code = ?`+r.lockSuffix(),
		code,
	).Scan(&ids).Error
}

func (r *repository) CountImplementationsByCode(ctx context.Context, code string, excludeID snowflake.ID) (int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT id FROM implementations WHERE code = ? AND id <> ?`+r.lockSuffix(),
		code,
		excludeID,
	).Scan(&ids).Error
	return int64(len(ids)), err
}

func (r *repository) CountSegmentConflicts(ctx context.Context, code string, excludeContractID *snowflake.ID) (int64, error) {
	return r.countConflicts(ctx, "segments", "code", code, excludeContractID)
}

func (r *repository) CountContractConflicts(ctx context.Context, code string, excludeContractID *snowflake.ID) (int64, error) {
	if excludeContractID != nil {
		var ids []int64
		err := r.db.WithContext(ctx).Raw(
			`SELECT id FROM contracts WHERE url_code = ? AND id <> ?`+r.lockSuffix(),
			code,
			*excludeContractID,
		).Scan(&ids).Error
		return int64(len(ids)), err
	}

	var ids []int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT id FROM contracts WHERE url_code = ?`+r.lockSuffix(),
		code,
	).Scan(&ids).Error
	return int64(len(ids)), err
}

func (r *repository) CountVanityURLConflicts(ctx context.Context, code string, excludeContractID *snowflake.ID) (int64, error) {
	return r.countConflicts(ctx, "vanity_urls", "code", code, excludeContractID)
}

func (r *repository) countConflicts(ctx context.Context, table, column, code string, excludeContractID *snowflake.ID) (int64, error) {
	var ids []int64
	if excludeContractID != nil {
		err := r.db.WithContext(ctx).Raw(
			`SELECT id FROM `+table+` WHERE `+column+` = ? AND contract_id <> ?`+r.lockSuffix(),
			code,
			*excludeContractID,
		).Scan(&ids).Error
		return int64(len(ids)), err
	}

	err := r.db.WithContext(ctx).Raw(
		`SELECT id FROM `+table+` WHERE `+column+` = ?`+r.lockSuffix(),
		code,
	).Scan(&ids).Error
	return int64(len(ids)), err
}

func (r *repository) FindPlanByCode(ctx context.Context, code string) (*billingdomain.Plan, error) {
	var plan billingdomain.Plan
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidPlan
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) CreateSubscription(ctx context.Context, subscription *billingdomain.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}

func (r *repository) ActivateSubscriptions(ctx context.Context, implementationID, contractID snowflake.ID) error {
	return r.db.WithContext(ctx).Model(&billingdomain.Subscription{}).
		Where("implementation_id = ? AND status = ?", implementationID, billingdomain.SubscriptionStatusPending).
		Updates(map[string]any{
			"contract_id": contractID,
			"status":      billingdomain.SubscriptionStatusActive,
			"updated_at":  time.Now().UTC(),
		}).Error
}
