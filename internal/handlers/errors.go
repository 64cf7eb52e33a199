package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/handlers/render"
	"github.com/nkiryanov/library/internal/logger"
)

// Map service error to response
// Auth failures get generic messages only
func renderError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		render.ServiceError(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		render.ServiceError(w, "User already exists", http.StatusConflict)
	case errors.Is(err, apperrors.ErrMemberEmailTaken):
		render.ServiceError(w, "Email already taken", http.StatusConflict)
	case errors.Is(err, apperrors.ErrConflict):
		render.ServiceError(w, "Conflict", http.StatusConflict)

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrMissingToken),
		errors.Is(err, apperrors.ErrUnauthenticated):
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrRevokedToken):
		render.ServiceError(w, "Invalid token", http.StatusUnauthorized)

	case errors.Is(err, apperrors.ErrInactiveUser):
		render.ServiceError(w, "User is inactive", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, "Forbidden", http.StatusForbidden)

	case errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "User not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrRoleNotFound):
		render.ServiceError(w, "Role not assigned", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrBookNotFound):
		render.ServiceError(w, "Book not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrMemberNotFound):
		render.ServiceError(w, "Member not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrLoanNotFound):
		render.ServiceError(w, "Loan not found", http.StatusNotFound)

	case errors.Is(err, apperrors.ErrOutOfStock):
		render.ServiceError(w, "Book is out of stock", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrLoanAlreadyReturned):
		render.ServiceError(w, "Loan already returned", http.StatusBadRequest)

	default:
		l.Error("request failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
