package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
)

// Put refresh token into protected cookie
// Refresh token never goes to response body
// Cookie max age is exactly the token TTL
func (s *AuthService) SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    refresh.Value,
		Path:     s.refreshCookiePath,
		MaxAge:   int(refresh.TTL().Seconds()),
		Secure:   s.refreshCookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *AuthService) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    "",
		Path:     s.refreshCookiePath,
		MaxAge:   -1,
		Secure:   s.refreshCookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// Read refresh token from cookie
// Return apperrors.ErrMissingToken if cookie not set or empty
func (s *AuthService) ReadRefreshCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.refreshCookieName)
	switch {
	case errors.Is(err, http.ErrNoCookie):
		return "", apperrors.ErrMissingToken
	case err != nil:
		return "", apperrors.ErrInvalidToken
	case cookie.Value == "":
		return "", apperrors.ErrMissingToken
	}

	return cookie.Value, nil
}

// Read access token from header like 'Authorization: Bearer <token>'
func (s *AuthService) ReadBearer(r *http.Request) (string, error) {
	header := r.Header.Get(s.accessHeaderName)
	if header == "" {
		return "", apperrors.ErrMissingToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, s.accessAuthScheme) {
		return "", apperrors.ErrInvalidToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperrors.ErrMissingToken
	}

	return token, nil
}
