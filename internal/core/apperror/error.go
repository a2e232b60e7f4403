// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Tenancy violations
	CodeWorkspaceScopeMissing = "WORKSPACE_SCOPE_MISSING"
	CodeNotAMember            = "NOT_A_MEMBER"
	CodeOnboardingRequired    = "ONBOARDING_REQUIRED"
	CodeSubscriptionInactive  = "SUBSCRIPTION_INACTIVE"
	CodeFeatureLocked         = "FEATURE_LOCKED"
	CodePlanLimitReached      = "PLAN_LIMIT_REACHED"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, limits, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewWorkspaceScopeMissing is raised when a workspace-scoped query is attempted
// without a workspace id. This is a programming defect: correctly guarded code
// paths always resolve the active workspace first. It must fail loudly rather
// than silently widen the query across tenants.
func NewWorkspaceScopeMissing(entity string) *AppError {
	return &AppError{
		Code:       CodeWorkspaceScopeMissing,
		Message:    "workspace scope is required for this operation",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"entity": entity},
	}
}

// NewNotAMember is returned when a principal addresses a workspace outside
// their membership list.
func NewNotAMember(workspaceID string) *AppError {
	return &AppError{
		Code:       CodeNotAMember,
		Message:    "not a member of this workspace",
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"workspace_id": workspaceID},
	}
}

// NewOnboardingRequired is returned when the principal has no workspace yet
// and the requested operation is not itself part of onboarding.
func NewOnboardingRequired() *AppError {
	return &AppError{
		Code:       CodeOnboardingRequired,
		Message:    "create or join a workspace first",
		HTTPStatus: http.StatusConflict,
	}
}

// NewSubscriptionInactive is returned when the workspace subscription does not
// satisfy active/trialing and the path is not payment-exempt.
func NewSubscriptionInactive(status string) *AppError {
	return &AppError{
		Code:       CodeSubscriptionInactive,
		Message:    "workspace subscription is not active",
		HTTPStatus: http.StatusPaymentRequired,
		Details:    map[string]any{"status": status},
	}
}

// NewFeatureLocked is returned when the workspace plan does not include a
// feature. The required_plan detail drives the client upsell panel.
func NewFeatureLocked(feature, requiredPlan string) *AppError {
	return &AppError{
		Code:       CodeFeatureLocked,
		Message:    "this feature requires a higher plan",
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"feature": feature, "required_plan": requiredPlan},
	}
}

// NewPlanLimitReached is returned when a create operation would exceed a plan
// quota.
func NewPlanLimitReached(resource string, limit int64) *AppError {
	return &AppError{
		Code:       CodePlanLimitReached,
		Message:    fmt.Sprintf("plan limit for %s reached", resource),
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"resource": resource, "limit": limit},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsCode checks if error carries the given code
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
