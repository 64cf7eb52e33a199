package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/library/internal/handlers/render"
	"github.com/nkiryanov/library/internal/logger"
	"github.com/nkiryanov/library/internal/models"
)

type userStateResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	IsActive bool      `json:"is_active"`
}

func handleSetUserActive(userService userService, active bool, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		var user models.User
		if active {
			user, err = userService.Activate(r.Context(), id)
		} else {
			user, err = userService.Deactivate(r.Context(), id)
		}
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, userStateResponse{ID: user.ID, Email: user.Email, IsActive: user.IsActive})
	})
}

type userRolesResponse struct {
	ID    uuid.UUID `json:"id"`
	Roles []string  `json:"roles"`
}

func handleGrantRole(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		roles, err := userService.GrantRole(r.Context(), id, r.PathValue("role"))
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, userRolesResponse{ID: id, Roles: roles})
	})
}

func handleRevokeRole(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		roles, err := userService.RevokeRole(r.Context(), id, r.PathValue("role"))
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, userRolesResponse{ID: id, Roles: roles})
	})
}

// Put refresh token identifier into revocation ledger by hand
func handleRevokeToken(userService userService, l logger.Logger) http.Handler {
	type request struct {
		JTI string `json:"jti" validate:"required,notblank,max=64"`
	}
	type response struct {
		JTI     string `json:"jti"`
		Revoked bool   `json:"revoked"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		revoked, err := userService.RevokeToken(r.Context(), data.JTI)
		if err != nil {
			renderError(w, l, err)
			return
		}

		// revoked is false when identifier was already in ledger
		render.JSON(w, response{JTI: data.JTI, Revoked: revoked})
	})
}
