// Package common defines shared constants, sentinel errors, and the
// authentication error taxonomy used across the client layers. Callers
// should match sentinels with errors.Is and taxonomy errors with errors.As.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// ErrorKind classifies authentication failures. The values mirror the
// backend's error vocabulary so they can be logged and matched verbatim.
type ErrorKind string

const (
	KindInvalidCredentials    ErrorKind = "INVALID_CREDENTIALS"
	KindUserNotFound          ErrorKind = "USER_NOT_FOUND"
	KindEmailAlreadyExists    ErrorKind = "EMAIL_ALREADY_EXISTS"
	KindWeakPassword          ErrorKind = "WEAK_PASSWORD"
	KindNetworkError          ErrorKind = "NETWORK_ERROR"
	KindTokenExpired          ErrorKind = "TOKEN_EXPIRED"
	KindBiometricNotAvailable ErrorKind = "BIOMETRIC_NOT_AVAILABLE"
)

// AuthError is a typed authentication failure carrying a machine-readable
// kind, a message suitable for direct display, and an optional cause.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError creates an AuthError without a wrapped cause.
func NewAuthError(kind ErrorKind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

// WrapAuthError creates an AuthError that wraps an underlying error.
func WrapAuthError(kind ErrorKind, message string, err error) *AuthError {
	return &AuthError{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is (or wraps) an AuthError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == kind
}

// UserMessage extracts the display message from an AuthError chain.
// Errors outside the taxonomy fall back to the network-error message, since
// a failure the client cannot classify is indistinguishable from one.
func UserMessage(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Network error"
}
