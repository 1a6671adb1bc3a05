// Package seed bootstraps the records the service needs before the
// first signup can succeed.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	"gorm.io/gorm"
)

var defaultPlans = []billingdomain.Plan{
	{Code: "starter", Name: "Starter", MonthlyPrice: 99, TrialDays: 14},
	{Code: "standard", Name: "Standard", MonthlyPrice: 249, TrialDays: 14},
	{Code: "enterprise", Name: "Enterprise", MonthlyPrice: 999, TrialDays: 30},
}

// EnsureDefaultPlans seeds the billing plans for startup bootstrap.
func EnsureDefaultPlans(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, plan := range defaultPlans {
			var existing billingdomain.Plan
			err := tx.Where("code = ?", plan.Code).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			plan.ID = node.Generate()
			if err := tx.Create(&plan).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
