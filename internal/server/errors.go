package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/sds-studio/sds/internal/auth/domain"
	checkoutdomain "github.com/sds-studio/sds/internal/checkout/domain"
	contactdomain "github.com/sds-studio/sds/internal/contact/domain"
	invoicedomain "github.com/sds-studio/sds/internal/invoice/domain"
	paymentdomain "github.com/sds-studio/sds/internal/payment/domain"
	projectdomain "github.com/sds-studio/sds/internal/project/domain"
	"gorm.io/gorm"
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

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

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
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Code:    err.Error(),
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrInvalidSignature),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, projectdomain.ErrContactHasOwner):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, ErrRateLimited),
		errors.Is(err, contactdomain.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, checkoutdomain.ErrUnknownPackage),
		errors.Is(err, checkoutdomain.ErrInvalidEmail),
		errors.Is(err, checkoutdomain.ErrInvalidName),
		errors.Is(err, contactdomain.ErrInvalidEmail),
		errors.Is(err, contactdomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidNumber),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, projectdomain.ErrInvalidContact),
		errors.Is(err, projectdomain.ErrInvalidTitle),
		errors.Is(err, projectdomain.ErrInvalidStatus),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidEvent),
		errors.Is(err, paymentdomain.ErrInvalidProvider),
		errors.Is(err, paymentdomain.ErrProviderNotFound),
		errors.Is(err, authdomain.ErrInvalidRole):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, contactdomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrTaskNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, checkoutdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
