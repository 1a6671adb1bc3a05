package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	implementationdomain "github.com/thrivekit/thrivekit/internal/implementation/domain"
	paymentdomain "github.com/thrivekit/thrivekit/internal/providers/payment/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   "request",
				Code:    "invalid_request",
				Message: "invalid request",
			},
		},
	}
}

func codeTakenError() error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   "code",
				Code:    "taken",
				Message: "code already taken",
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case errors.Is(err, implementationdomain.ErrNotFound),
		errors.Is(err, billingdomain.ErrPeriodNotFound),
		errors.Is(err, billingdomain.ErrSubscriptionNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, implementationdomain.ErrInvalidCompanyName),
		errors.Is(err, implementationdomain.ErrInvalidTimeZone),
		errors.Is(err, implementationdomain.ErrInvalidPlan),
		errors.Is(err, implementationdomain.ErrInvalidEligibility),
		errors.Is(err, implementationdomain.ErrInvalidCode),
		errors.Is(err, billingdomain.ErrInvalidEvent):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, implementationdomain.ErrNotEditable),
		errors.Is(err, billingdomain.ErrPeriodAlreadyPaid):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, billingdomain.ErrUnrecognizedPayload):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Message: err.Error(),
		}
	case errors.Is(err, paymentdomain.ErrProviderError),
		errors.Is(err, paymentdomain.ErrChargeNotFound):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
