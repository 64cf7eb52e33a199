package apperrors

import (
	"errors"
	"fmt"
)

var (
	// Malformed input (400)
	ErrValidation = errors.New("validation error")

	// Duplicate unique key (409)
	ErrConflict          = errors.New("conflict")
	ErrUserAlreadyExists = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrMemberEmailTaken  = fmt.Errorf("member email already exists: %w", ErrConflict)

	// Authentication failures (401)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("token is missing")
	ErrInvalidToken       = errors.New("token is invalid")
	ErrRevokedToken       = errors.New("token is revoked")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// Authorization failures (403)
	ErrInactiveUser = errors.New("user is inactive")
	ErrForbidden    = errors.New("forbidden")

	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")

	ErrTokenNotRevoked = errors.New("token is not revoked")

	ErrBookNotFound        = errors.New("book not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrOutOfStock          = errors.New("book is out of stock")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
)
