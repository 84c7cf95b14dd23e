package domain

import "fmt"

// AppError is the base domain error type returned by every component.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors, one per error code in the callback contract.

func ErrSignatureInvalid(msg string) *AppError {
	return &AppError{Code: "SIGNATURE_INVALID", Message: msg, Status: 401}
}

func ErrInvalidSession(msg string) *AppError {
	return &AppError{Code: "INVALID_SESSION", Message: msg, Status: 401}
}

func ErrInvalidAmount(msg string) *AppError {
	return &AppError{Code: "INVALID_AMOUNT", Message: msg, Status: 400}
}

func ErrInsufficientFunds() *AppError {
	return &AppError{Code: "INSUFFICIENT_FUNDS", Message: "insufficient funds", Status: 400}
}

func ErrCannotRollbackPayout() *AppError {
	return &AppError{Code: "CANNOT_ROLLBACK_PAYOUT", Message: "cannot roll back a credit", Status: 400}
}

func ErrUserNotFound(id string) *AppError {
	return &AppError{Code: "USER_NOT_FOUND", Message: fmt.Sprintf("user %s not found", id), Status: 404}
}

func ErrGameNotFound(id string) *AppError {
	return &AppError{Code: "GAME_NOT_FOUND", Message: fmt.Sprintf("game %s not found", id), Status: 404}
}

func ErrProviderNotFound(id string) *AppError {
	return &AppError{Code: "PROVIDER_NOT_FOUND", Message: fmt.Sprintf("provider %s not found", id), Status: 404}
}

func ErrCasinoAPIError(cause error) *AppError {
	return &AppError{Code: "CASINO_API_ERROR", Message: "upstream provider call failed", Status: 502, Cause: cause}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: "ACCOUNT_LOCKED", Message: msg, Status: 429}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
