package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken indicates a bearer token that is malformed, expired, revoked or of the wrong kind.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrTokenSubjectMismatch indicates the registry maps the token id to a different user than the token claims.
	ErrTokenSubjectMismatch = errors.New("token subject does not match registry entry")
	// ErrUnauthenticated indicates the operation needs an authenticated principal.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInsufficientPermission indicates the principal lacks the grant or ownership required.
	ErrInsufficientPermission = errors.New("insufficient permissions")
	// ErrInactiveAccount indicates the account exists but may not authenticate.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrValidation wraps input problems; the wrapped message is safe to return to clients.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the resource already exists.
	ErrConflict = errors.New("resource already exists")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
