package services

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure the core can return. Each code is
// user-actionable: the handler layer maps codes to HTTP statuses and the
// Details map carries the numeric context the caller needs to remediate.
type ErrorCode string

const (
	CodeInvalidInput          ErrorCode = "invalid_input"
	CodeVerificationFailed    ErrorCode = "verification_failed"
	CodeAddressMismatch       ErrorCode = "address_mismatch"
	CodeNoAuthorization       ErrorCode = "no_authorization"
	CodePermitExpired         ErrorCode = "permit_expired"
	CodeAmountMismatch        ErrorCode = "amount_mismatch"
	CodeInsufficientBalance   ErrorCode = "insufficient_balance"
	CodeInsufficientAllowance ErrorCode = "insufficient_allowance"
	CodeApprovalFailed        ErrorCode = "approval_failed"
	CodeTransferReverted      ErrorCode = "transfer_reverted"
	CodeUpstreamUnavailable   ErrorCode = "upstream_unavailable"
)

// ServiceError is the typed error returned at the service boundary.
// Details holds structured context (amounts, shortfalls, deadlines) so
// callers can decide the remediation without parsing the message.
type ServiceError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

func newServiceError(code ErrorCode, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

func wrapServiceError(code ErrorCode, message string, cause error) *ServiceError {
	return &ServiceError{Code: code, Message: message, cause: cause}
}

// withDetail attaches a structured context value. Returns the receiver for
// chaining during construction.
func (e *ServiceError) withDetail(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// AsServiceError unwraps err to the first ServiceError in its chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
