package domain

import "errors"

var (
	ErrInvalidCompanyName = errors.New("implementation: company name is required")
	ErrInvalidTimeZone    = errors.New("implementation: invalid time zone")
	ErrInvalidPlan        = errors.New("implementation: unknown billing plan")
	ErrInvalidEligibility = errors.New("implementation: invalid eligibility type")
	ErrInvalidCode        = errors.New("implementation: invalid code")

	// ErrCodeTaken is the ordinary "code in use" outcome, surfaced as
	// a field-level validation failure so the caller can pick another.
	ErrCodeTaken = errors.New("implementation: code already taken")

	ErrNotFound       = errors.New("implementation: not found")
	ErrNotEditable    = errors.New("implementation: attribute not editable in current status")
	ErrMissingContext = errors.New("implementation: missing hierarchy reference")
)
