package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/referralhub/pkg/apperror"
)

const (
	codeValidation   = "VALIDATION_ERROR"
	codeUnauthorized = "UNAUTHORIZED"
	codeForbidden    = "FORBIDDEN"
	codeNotFound     = "NOT_FOUND"
	codeConflict     = "CONFLICT"
	codeInvalidState = "INVALID_STATE"
	codeRateLimited  = "RATE_LIMITED"
	codeInternal     = "INTERNAL_ERROR"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors carries per-field failures from request binding.
type ValidationErrors struct {
	Fields []FieldError
}

func (v *ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = apperror.New(apperror.KindValidation, "invalid_request", "invalid request")
	ErrNotFound       = apperror.New(apperror.KindNotFound, "route_not_found", "resource not found")
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
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, message string) error {
	return &ValidationErrors{Fields: []FieldError{{Field: field, Message: message}}}
}

func mapError(err error) (int, errorPayload) {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Code:    codeValidation,
			Message: "Dados inválidos",
			Details: vErr.Fields,
		}
	}
	if errors.Is(err, ErrRateLimited) {
		return http.StatusTooManyRequests, errorPayload{
			Code:    codeRateLimited,
			Message: "too many requests",
		}
	}

	appErr, ok := apperror.As(err)
	if !ok {
		return http.StatusInternalServerError, errorPayload{Code: codeInternal, Message: "internal server error"}
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		return http.StatusBadRequest, errorPayload{Code: codeValidation, Message: appErr.Message}
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized, errorPayload{Code: codeUnauthorized, Message: appErr.Message}
	case apperror.KindForbidden:
		return http.StatusForbidden, errorPayload{Code: codeForbidden, Message: appErr.Message}
	case apperror.KindNotFound:
		return http.StatusNotFound, errorPayload{Code: codeNotFound, Message: appErr.Message}
	case apperror.KindConflict:
		return http.StatusConflict, errorPayload{Code: codeConflict, Message: appErr.Message}
	case apperror.KindInvalidState:
		return http.StatusBadRequest, errorPayload{Code: codeInvalidState, Message: appErr.Message}
	default:
		return http.StatusInternalServerError, errorPayload{Code: codeInternal, Message: "internal server error"}
	}
}

// classifyErrorForLog feeds the request logger. Only kinds and codes are
// logged here; the full error is attached for 5xx responses.
func classifyErrorForLog(err error) (string, string) {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return string(apperror.KindValidation), "invalid_request"
	}
	if errors.Is(err, ErrRateLimited) {
		return "rate_limited", "rate_limited"
	}
	if appErr, ok := apperror.As(err); ok {
		return string(appErr.Kind), appErr.Code
	}
	return string(apperror.KindInternal), "internal_error"
}
