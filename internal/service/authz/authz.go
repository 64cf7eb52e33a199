// Package authz decides whether verified claims satisfy a role requirement.
package authz

import (
	"fmt"
	"slices"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
)

// Authorize allows only when every required role is in claims roles.
// Nil claims means the caller was not authenticated at all.
func Authorize(claims *models.AccessClaims, required ...string) error {
	if claims == nil {
		return apperrors.ErrUnauthenticated
	}

	for _, role := range required {
		if !slices.Contains(claims.Roles, role) {
			return fmt.Errorf("%w: role %q required", apperrors.ErrForbidden, role)
		}
	}

	return nil
}
