package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/library/internal/handlers/claimsctx"
	"github.com/nkiryanov/library/internal/handlers/render"
	"github.com/nkiryanov/library/internal/logger"
)

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=8,max=128"`
	}
	type response struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := authService.Register(r.Context(), data.Email, data.Password)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, response{ID: user.ID, Email: user.Email}, http.StatusCreated)
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			renderError(w, l, err)
			return
		}

		authService.SetRefreshCookie(w, pair.Refresh)
		render.JSON(w, accessTokenResponse{AccessToken: pair.Access.Value})
	})
}

func handleTokenRefresh(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := authService.ReadRefreshCookie(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		pair, err := authService.Refresh(r.Context(), refresh)
		if err != nil {
			renderError(w, l, err)
			return
		}

		authService.SetRefreshCookie(w, pair.Refresh)
		render.JSON(w, accessTokenResponse{AccessToken: pair.Access.Value})
	})
}

// Always succeeds
func handleLogout(authService authService) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, _ := authService.ReadRefreshCookie(r)
		authService.Logout(r.Context(), refresh)

		authService.ClearRefreshCookie(w)
		render.JSON(w, response{Message: "Logged out"})
	})
}

func handleUserMe() http.Handler {
	type response struct {
		UserID    uuid.UUID `json:"user_id"`
		Roles     []string  `json:"roles"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		render.JSON(w, response{UserID: claims.UserID, Roles: claims.Roles, ExpiresAt: claims.ExpiresAt})
	})
}
