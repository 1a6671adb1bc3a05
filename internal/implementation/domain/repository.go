package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	"gorm.io/gorm"
)

// Repository persists implementations and runs the locked code-registry
// queries the uniqueness guard is built on. Conflict lookups lock the
// rows they match (where the dialect supports it) so concurrent
// checkers of the same code serialize.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, impl *Implementation) error
	Save(ctx context.Context, impl *Implementation) error
	FindByID(ctx context.Context, id snowflake.ID) (*Implementation, error)

	// LockImplementationCodes issues the lock statement for rows
	// matching code even when none exist, forcing all concurrent
	// callers through one serialization point.
	LockImplementationCodes(ctx context.Context, code string) error
	CountImplementationsByCode(ctx context.Context, code string, excludeID snowflake.ID) (int64, error)
	CountSegmentConflicts(ctx context.Context, code string, excludeContractID *snowflake.ID) (int64, error)
	CountContractConflicts(ctx context.Context, code string, excludeContractID *snowflake.ID) (int64, error)
	CountVanityURLConflicts(ctx context.Context, code string, excludeContractID *snowflake.ID) (int64, error)

	FindPlanByCode(ctx context.Context, code string) (*billingdomain.Plan, error)
	CreateSubscription(ctx context.Context, subscription *billingdomain.Subscription) error
	ActivateSubscriptions(ctx context.Context, implementationID, contractID snowflake.ID) error
}
