// Package hierarchy builds and maintains a tenant's customer,
// contract, organization and segment records.
package hierarchy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/thrivekit/thrivekit/internal/hierarchy/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var defaultProductIDs = []string{"wellbeingtracker", "dailychallenge", "walkadoo", "quitnet"}

// BuildInput carries everything needed to stand up a tenant hierarchy.
type BuildInput struct {
	CompanyName     string
	Code            string
	TimeZone        string
	EligibilityType domain.EligibilityType
	LogoURL         string
	StartsAt        time.Time
}

// Hierarchy is the set of rows created for one tenant.
type Hierarchy struct {
	Customer     domain.Customer
	Contract     domain.Contract
	Organization domain.Organization
	Segment      domain.Segment
}

type Provisioner struct {
	genID *snowflake.Node
	log   *zap.Logger
}

func NewProvisioner(genID *snowflake.Node, log *zap.Logger) *Provisioner {
	return &Provisioner{
		genID: genID,
		log:   log.Named("hierarchy"),
	}
}

// Build creates the customer, contract, organization and segment rows
// inside the caller's transaction. The contract and segment both take
// the tenant code, which is why code uniqueness is checked across
// tables before this runs.
func (p *Provisioner) Build(ctx context.Context, tx *gorm.DB, input BuildInput) (*Hierarchy, error) {
	productIDs, err := json.Marshal(defaultProductIDs)
	if err != nil {
		return nil, err
	}

	customer := domain.Customer{
		ID:      p.genID.Generate(),
		Name:    input.CompanyName,
		LogoURL: input.LogoURL,
	}
	if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}

	contract := domain.Contract{
		ID:                 p.genID.Generate(),
		CustomerID:         customer.ID,
		Name:               input.CompanyName,
		URLCode:            input.Code,
		TimeZone:           input.TimeZone,
		EligibilityType:    input.EligibilityType,
		ProductionStartsAt: input.StartsAt,
		ProductIDs:         datatypes.JSON(productIDs),
		DefaultProductID:   "wellbeingtracker",
		ProductConfig: datatypes.JSONMap{
			"wellbeingtracker": map[string]any{
				"landing_page_sections": []string{"wbt", "daily_challenge", "walkadoo", "quitnet"},
			},
		},
	}
	if err := tx.WithContext(ctx).Create(&contract).Error; err != nil {
		return nil, err
	}

	organization := domain.Organization{
		ID:         p.genID.Generate(),
		ContractID: contract.ID,
		Name:       input.CompanyName,
	}
	if err := tx.WithContext(ctx).Create(&organization).Error; err != nil {
		return nil, err
	}

	segment := domain.Segment{
		ID:             p.genID.Generate(),
		OrganizationID: organization.ID,
		ContractID:     contract.ID,
		Name:           input.CompanyName,
		Description:    input.CompanyName,
		Code:           input.Code,
		Prototype:      input.Code,
		ProductConfig: datatypes.JSONMap{
			"wellbeingid":    map[string]any{"requires_consent": true},
			"dailychallenge": map[string]any{"show_label": true},
		},
	}
	if err := tx.WithContext(ctx).Create(&segment).Error; err != nil {
		return nil, err
	}

	p.log.Info("tenant hierarchy built",
		zap.String("code", input.Code),
		zap.String("customer_id", customer.ID.String()),
		zap.String("contract_id", contract.ID.String()))

	return &Hierarchy{
		Customer:     customer,
		Contract:     contract,
		Organization: organization,
		Segment:      segment,
	}, nil
}

// Rename propagates a company-name change down an active tenant's
// hierarchy.
func (p *Provisioner) Rename(ctx context.Context, tx *gorm.DB, customerID, contractID snowflake.ID, name string) error {
	if err := tx.WithContext(ctx).Model(&domain.Customer{}).
		Where("id = ?", customerID).
		Update("name", name).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Model(&domain.Contract{}).
		Where("id = ?", contractID).
		Update("name", name).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Model(&domain.Organization{}).
		Where("contract_id = ?", contractID).
		Update("name", name).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Model(&domain.Segment{}).
		Where("contract_id = ?", contractID).
		Updates(map[string]any{"name": name, "description": name}).Error
}
