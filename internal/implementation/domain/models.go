// Package domain contains the tenant implementation model. An
// implementation is one customer's instance of the platform, from
// pending signup through activation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	hierarchydomain "github.com/thrivekit/thrivekit/internal/hierarchy/domain"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

// Implementation is the tenant record. Code is the short human-facing
// slug; its uniqueness spans segments, contracts and vanity URLs, not
// just this table, so writes go through the code guard. The unique
// index here is the in-table backstop.
type Implementation struct {
	ID              snowflake.ID                     `gorm:"primaryKey"`
	CompanyName     string                           `gorm:"type:text;not null"`
	Code            string                           `gorm:"type:text;not null;uniqueIndex"`
	TimeZone        string                           `gorm:"type:text;not null"`
	Status          Status                           `gorm:"type:text;not null"`
	EligibilityType *hierarchydomain.EligibilityType `gorm:"type:smallint"`
	LogoURL         string                           `gorm:"type:text"`
	PlanID          snowflake.ID                     `gorm:"not null;index"`
	CustomerID      *snowflake.ID                    `gorm:""`
	ContractID      *snowflake.ID                    `gorm:"index"`
	StartsAt        *time.Time                       `gorm:""`
	CreatedAt       time.Time                        `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time                        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Implementation) TableName() string { return "implementations" }

func (i *Implementation) Pending() bool { return i.Status == StatusPending }
func (i *Implementation) Active() bool  { return i.Status == StatusActive }
