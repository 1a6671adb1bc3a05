package migration

import (
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	"github.com/thrivekit/thrivekit/internal/config"
	hierarchydomain "github.com/thrivekit/thrivekit/internal/hierarchy/domain"
	implementationdomain "github.com/thrivekit/thrivekit/internal/implementation/domain"
	"github.com/thrivekit/thrivekit/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres targets are for local development; let the
			// ORM derive the schema there.
			if err := conn.AutoMigrate(
				&implementationdomain.Implementation{},
				&hierarchydomain.Customer{},
				&hierarchydomain.Contract{},
				&hierarchydomain.Organization{},
				&hierarchydomain.Segment{},
				&hierarchydomain.VanityURL{},
				&billingdomain.Plan{},
				&billingdomain.Subscription{},
				&billingdomain.BillingPeriod{},
				&billingdomain.BillingEvent{},
				&billingdomain.Notification{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultPlans(conn)
	}),
)
