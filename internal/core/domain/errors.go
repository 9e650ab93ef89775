package domain

import "errors"

// Sentinel errors for account operations.
var (
	// ErrNotAuthenticated indicates the request carried no valid identity.
	// HTTP Status: 401 Unauthorized
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAccountNotFound indicates a valid identity without an account row.
	// HTTP Status: 404 Not Found
	ErrAccountNotFound = errors.New("account not found")

	// ErrPassengerNotFound indicates the passenger is missing, inactive or owned by another account.
	// HTTP Status: 404 Not Found
	ErrPassengerNotFound = errors.New("passenger not found")

	// ErrAddressNotFound indicates the address is missing or owned by another account.
	// HTTP Status: 404 Not Found
	ErrAddressNotFound = errors.New("address not found")

	// ErrEmailTaken indicates an account with the same email already exists.
	// HTTP Status: 409 Conflict
	ErrEmailTaken = errors.New("email already registered")

	// ErrOwnerPassengerLocked indicates an attempt to edit or delete the account-owner
	// passenger outside of a profile update.
	// HTTP Status: 400 Bad Request
	ErrOwnerPassengerLocked = errors.New("account owner passenger is managed through the profile")
)

// ValidationError is a rejected payload. Message is the first failing rule;
// Details optionally lists every failing field.
type ValidationError struct {
	Field   string
	Message string
	Details map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return "validation failed on " + e.Field + ": " + e.Message
}

// NewValidationError builds a single-rule validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
