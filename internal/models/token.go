package models

import (
	"time"

	"github.com/google/uuid"
)

// Token type tags embedded into every issued token
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Reasons the refresh token identifier is put into revocation ledger
const (
	RevokeReasonRotated = "rotated"
	RevokeReasonLogout  = "logout"
	RevokeReasonManual  = "manual"
)

// Verified access token payload
// Roles is a snapshot taken when the token was issued
type AccessClaims struct {
	UserID    uuid.UUID
	Roles     []string
	ID        string
	ExpiresAt time.Time
}

// Verified refresh token payload
type RefreshClaims struct {
	UserID    uuid.UUID
	ID        string
	ExpiresAt time.Time
}

type RevokedToken struct {
	ID        string
	Reason    string
	RevokedAt time.Time
}

type IssuedToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token lifetime as issued. Does not depend on the current time
func (t IssuedToken) TTL() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}

// Token pair issues by TokenManager, AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
