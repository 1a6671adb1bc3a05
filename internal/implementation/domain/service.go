package domain

import (
	"context"
	"time"
)

type CreateRequest struct {
	CompanyName string `json:"company_name"`
	TimeZone    string `json:"time_zone"`
	PlanCode    string `json:"plan_code"`
	CardToken   string `json:"card_token"`
}

// UpdateRequest carries partial updates. Code and eligibility are only
// editable while the implementation is pending; setting eligibility on
// a pending implementation activates it.
type UpdateRequest struct {
	CompanyName     *string `json:"company_name"`
	Code            *string `json:"code"`
	EligibilityType *string `json:"eligibility_type"`
}

type Response struct {
	ID              string     `json:"id"`
	CompanyName     string     `json:"company_name"`
	Code            string     `json:"code"`
	TimeZone        string     `json:"time_zone"`
	Status          string     `json:"status"`
	EligibilityType string     `json:"eligibility_type,omitempty"`
	StartsAt        *time.Time `json:"starts_at,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
}
