package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Known role names
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	HashedPassword string
	IsActive       bool
}

type Role struct {
	ID   int32
	Name string
}

// Emails are stored and looked up in one canonical form
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
