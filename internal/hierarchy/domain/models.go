// Package domain contains the tenant hierarchy persistence models:
// customer, contract, organization, segment and vanity URL.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EligibilityType identifies how a contract decides who may enroll.
// The integer values are wire/database values shared by contracts and
// implementations; both sides import this single definition.
type EligibilityType int16

const (
	EligibilityGoogleDirectory EligibilityType = 9
	EligibilityADP             EligibilityType = 10
	EligibilityEmail           EligibilityType = 11
)

func (e EligibilityType) String() string {
	switch e {
	case EligibilityGoogleDirectory:
		return "google_directory"
	case EligibilityADP:
		return "adp"
	case EligibilityEmail:
		return "email"
	default:
		return fmt.Sprintf("eligibility(%d)", int16(e))
	}
}

func (e EligibilityType) Valid() bool {
	switch e {
	case EligibilityGoogleDirectory, EligibilityADP, EligibilityEmail:
		return true
	default:
		return false
	}
}

func ParseEligibilityType(raw string) (EligibilityType, error) {
	switch raw {
	case "google_directory":
		return EligibilityGoogleDirectory, nil
	case "adp":
		return EligibilityADP, nil
	case "email":
		return EligibilityEmail, nil
	default:
		return 0, fmt.Errorf("unknown eligibility type %q", raw)
	}
}

// Customer is the top of a tenant's hierarchy.
type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	LogoURL   string       `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Customer) TableName() string { return "customers" }

// Contract carries a tenant's public URL code and program configuration.
type Contract struct {
	ID                 snowflake.ID      `gorm:"primaryKey"`
	CustomerID         snowflake.ID      `gorm:"not null;index"`
	Name               string            `gorm:"type:text;not null"`
	URLCode            string            `gorm:"type:text;not null;index"`
	TimeZone           string            `gorm:"type:text;not null"`
	EligibilityType    EligibilityType   `gorm:"type:smallint;not null"`
	ProductionStartsAt time.Time         `gorm:"not null"`
	ProductionEndsAt   *time.Time        `gorm:""`
	ProductIDs         datatypes.JSON    `gorm:"type:jsonb"`
	DefaultProductID   string            `gorm:"type:text"`
	ProductConfig      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Contract) TableName() string { return "contracts" }

type Organization struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ContractID snowflake.ID `gorm:"not null;index"`
	Name       string       `gorm:"type:text;not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Organization) TableName() string { return "organizations" }

// Segment is the enrollable unit inside an organization. Its code is
// part of the cross-table tenant code registry.
type Segment struct {
	ID             snowflake.ID      `gorm:"primaryKey"`
	OrganizationID snowflake.ID      `gorm:"not null;index"`
	ContractID     snowflake.ID      `gorm:"not null;index"`
	Name           string            `gorm:"type:text;not null"`
	Description    string            `gorm:"type:text"`
	Code           string            `gorm:"type:text;not null;index"`
	Prototype      string            `gorm:"type:text"`
	ProductConfig  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Segment) TableName() string { return "segments" }

// VanityURL maps an extra short code onto a contract.
type VanityURL struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ContractID snowflake.ID `gorm:"not null;index"`
	Code       string       `gorm:"type:text;not null;index"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (VanityURL) TableName() string { return "vanity_urls" }
