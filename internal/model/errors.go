package model

import "errors"

var (
	// Caller errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	// Store-surfaced failures
	ErrDuplicateOrInvalid      = errors.New("duplicate or invalid user")
	ErrRegistrationFailed      = errors.New("registration failed")
	ErrUpdateFailed            = errors.New("update failed")
	ErrVerificationUnavailable = errors.New("could not verify user")
	ErrWrongCurrentPassword    = errors.New("incorrect current password")

	// Token errors
	ErrSigningKeyMissing = errors.New("jwt signing key not configured")
	ErrUnauthorized      = errors.New("unauthorized")
)

// StoreError is a failure reported by a credential store. Message is already
// safe to show to callers and is passed through unchanged.
type StoreError struct {
	Kind    error
	Message string
}

func NewStoreError(kind error, message string) *StoreError {
	return &StoreError{Kind: kind, Message: message}
}

func (e *StoreError) Error() string {
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Kind
}
