package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/thrivekit/thrivekit/internal/alerting"
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	"github.com/thrivekit/thrivekit/internal/clock"
	"github.com/thrivekit/thrivekit/internal/config"
	"github.com/thrivekit/thrivekit/internal/hierarchy"
	hierarchydomain "github.com/thrivekit/thrivekit/internal/hierarchy/domain"
	"github.com/thrivekit/thrivekit/internal/implementation/domain"
	pkgdb "github.com/thrivekit/thrivekit/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db          *gorm.DB
	repo        domain.Repository
	provisioner *hierarchy.Provisioner
	signupCfg   *config.SignupConfigHolder
	alerts      alerting.Provider
	clock       clock.Clock
	genID       *snowflake.Node
	log         *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo domain.Repository,
	provisioner *hierarchy.Provisioner,
	signupCfg *config.SignupConfigHolder,
	alerts alerting.Provider,
	clk clock.Clock,
	genID *snowflake.Node,
	log *zap.Logger,
) domain.Service {
	return &service{
		db:          db,
		repo:        repo,
		provisioner: provisioner,
		signupCfg:   signupCfg,
		alerts:      alerts,
		clock:       clk,
		genID:       genID,
		log:         log.Named("implementation"),
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		return nil, domain.ErrInvalidCompanyName
	}

	timeZone := strings.TrimSpace(req.TimeZone)
	if _, err := time.LoadLocation(timeZone); err != nil || timeZone == "" {
		return nil, domain.ErrInvalidTimeZone
	}

	plan, err := s.repo.FindPlanByCode(ctx, strings.TrimSpace(req.PlanCode))
	if err != nil {
		return nil, err
	}

	candidate := s.truncateCode(slug.Make(companyName))
	if candidate == "" {
		return nil, domain.ErrInvalidCode
	}

	var impl *domain.Implementation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := s.uniqueCodeFor(ctx, tx, candidate, 0, nil)
		if err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		impl = &domain.Implementation{
			ID:          s.genID.Generate(),
			CompanyName: companyName,
			Code:        code,
			TimeZone:    timeZone,
			Status:      domain.StatusPending,
			PlanID:      plan.ID,
		}
		if err := repo.Create(ctx, impl); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrCodeTaken
			}
			return err
		}

		subscription := &billingdomain.Subscription{
			ID:               s.genID.Generate(),
			ImplementationID: &impl.ID,
			PlanID:           plan.ID,
			Status:           billingdomain.SubscriptionStatusPending,
		}
		if token := strings.TrimSpace(req.CardToken); token != "" {
			subscription.ExternalID = &token
		}
		return repo.CreateSubscription(ctx, subscription)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("implementation created",
		zap.String("id", impl.ID.String()),
		zap.String("code", impl.Code))

	return toResponse(impl), nil
}

func (s *service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Response, error) {
	implID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var impl *domain.Implementation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		impl, err = repo.FindByID(ctx, implID)
		if err != nil {
			return err
		}

		renamed := false
		if req.CompanyName != nil {
			name := strings.TrimSpace(*req.CompanyName)
			if name == "" {
				return domain.ErrInvalidCompanyName
			}
			renamed = name != impl.CompanyName
			impl.CompanyName = name
		}

		if req.Code != nil {
			if !impl.Pending() {
				return domain.ErrNotEditable
			}
			if err := s.changeCode(ctx, tx, impl, *req.Code); err != nil {
				return err
			}
		}

		activate := false
		if req.EligibilityType != nil {
			if !impl.Pending() || impl.EligibilityType != nil {
				return domain.ErrNotEditable
			}
			eligibility, err := hierarchydomain.ParseEligibilityType(strings.TrimSpace(*req.EligibilityType))
			if err != nil {
				return domain.ErrInvalidEligibility
			}
			impl.EligibilityType = &eligibility
			activate = true
		}

		if activate {
			if err := s.activate(ctx, tx, repo, impl); err != nil {
				return err
			}
		} else if impl.Active() && renamed {
			if impl.CustomerID == nil || impl.ContractID == nil {
				return domain.ErrMissingContext
			}
			if err := s.provisioner.Rename(ctx, tx, *impl.CustomerID, *impl.ContractID, impl.CompanyName); err != nil {
				return err
			}
		}

		if err := repo.Save(ctx, impl); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrCodeTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toResponse(impl), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	implID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	impl, err := s.repo.FindByID(ctx, implID)
	if err != nil {
		return nil, err
	}
	return toResponse(impl), nil
}

// changeCode validates a caller-chosen code against the cross-table
// registry. Unlike creation there is no retry; a conflict is surfaced
// as a taken-code error for the caller to resolve.
func (s *service) changeCode(ctx context.Context, tx *gorm.DB, impl *domain.Implementation, raw string) error {
	code := s.truncateCode(slug.Make(strings.TrimSpace(raw)))
	if code == "" {
		return domain.ErrInvalidCode
	}
	if code == impl.Code {
		return nil
	}

	inUse, err := s.codeInUse(ctx, tx, code, impl.ID, impl.ContractID, true)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrCodeTaken
	}

	impl.Code = code
	return nil
}

// activate stands up the tenant hierarchy and flips the implementation
// to active, all within the caller's transaction.
func (s *service) activate(ctx context.Context, tx *gorm.DB, repo domain.Repository, impl *domain.Implementation) error {
	startsAt := s.clock.Now()

	built, err := s.provisioner.Build(ctx, tx, hierarchy.BuildInput{
		CompanyName:     impl.CompanyName,
		Code:            impl.Code,
		TimeZone:        impl.TimeZone,
		EligibilityType: *impl.EligibilityType,
		LogoURL:         impl.LogoURL,
		StartsAt:        startsAt,
	})
	if err != nil {
		return err
	}

	impl.Status = domain.StatusActive
	impl.CustomerID = &built.Customer.ID
	impl.ContractID = &built.Contract.ID
	impl.StartsAt = &startsAt

	return repo.ActivateSubscriptions(ctx, impl.ID, built.Contract.ID)
}

func (s *service) truncateCode(code string) string {
	maxLength := s.signupCfg.Current().CodeMaxLength
	if len(code) > maxLength {
		code = strings.Trim(code[:maxLength], "-")
	}
	return code
}

func toResponse(impl *domain.Implementation) *domain.Response {
	resp := &domain.Response{
		ID:          impl.ID.String(),
		CompanyName: impl.CompanyName,
		Code:        impl.Code,
		TimeZone:    impl.TimeZone,
		Status:      string(impl.Status),
		StartsAt:    impl.StartsAt,
	}
	if impl.EligibilityType != nil {
		resp.EligibilityType = impl.EligibilityType.String()
	}
	return resp
}
