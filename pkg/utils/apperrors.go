package utils

import (
	"fmt"
)

// AppError carries a stable machine-readable reason code next to the
// human-readable message. Handlers map codes to HTTP statuses instead of
// string-matching error text.
type AppError struct {
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches by code so wrapped and reconstructed errors still compare
// equal under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func NewAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NotFound builds a 404-class error for a missing resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

// Race-lost and precondition failures of the acceptance path. These are
// expected outcomes of concurrent operation, not defects.
var (
	ErrBookingNotAvailable    = &AppError{Code: "BOOKING_NOT_AVAILABLE", Message: "booking is not open for acceptance"}
	ErrVendorNotEligible      = &AppError{Code: "VENDOR_NOT_ELIGIBLE", Message: "vendor is not in the eligible set for this booking"}
	ErrVendorAlreadyResponded = &AppError{Code: "VENDOR_ALREADY_RESPONDED", Message: "vendor has already responded to this booking"}
	ErrBookingAlreadyAssigned = &AppError{Code: "BOOKING_ALREADY_ASSIGNED", Message: "booking has already been assigned to another vendor"}
	ErrBookingExpired         = &AppError{Code: "BOOKING_EXPIRED", Message: "booking search window has expired"}
	ErrInsufficientBalance    = &AppError{Code: "INSUFFICIENT_BALANCE", Message: "wallet balance cannot cover the booking commission"}
)

// Matching outcomes. Callers distinguish "none in area" from "none
// available right now" for user messaging.
var (
	ErrNoVendorsAvailable = &AppError{Code: "NO_VENDORS_AVAILABLE", Message: "no vendors are available for this service at the requested time"}
	ErrNoVendorsInArea    = &AppError{Code: "NO_VENDORS_IN_AREA", Message: "no vendors serve the requested location"}
)

var (
	ErrInvalidTransition = &AppError{Code: "INVALID_TRANSITION", Message: "illegal booking status transition"}
	ErrAlreadyProcessed  = &AppError{Code: "ALREADY_PROCESSED", Message: "payment event has already been processed"}
	ErrWalletFrozen      = &AppError{Code: "WALLET_FROZEN", Message: "wallet is not active"}
	ErrForbidden         = &AppError{Code: "FORBIDDEN", Message: "not allowed to act on this resource"}
	ErrValidation        = &AppError{Code: "VALIDATION_FAILED", Message: "validation failed"}
)
