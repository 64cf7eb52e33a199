package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/library/internal/logger"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
	"github.com/nkiryanov/library/internal/repository/postgres"
	"github.com/nkiryanov/library/internal/service/auth"
	"github.com/nkiryanov/library/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/library/internal/service/library"
	"github.com/nkiryanov/library/internal/service/user"
	"github.com/nkiryanov/library/internal/testutil"
)

// Test client to call the router
type client struct {
	t   *testing.T
	url string
}

type requestOption func(r *http.Request)

func withBearer(access string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access)
	}
}

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}

func (c client) do(method string, path string, body string, opts ...requestOption) (*http.Response, string) {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, c.url+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp, string(data)
}

func refreshCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	require.FailNow(t, "refresh cookie not set")
	return nil
}

func accessToken(t *testing.T, body string) string {
	t.Helper()

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &data))
	require.NotEmpty(t, data.AccessToken, "access token should be in body")
	return data.AccessToken
}

type testEnv struct {
	client  client
	storage repository.Storage
	users   *user.UserService
}

// Run http server with production services on test transaction
func withServer(dbpool *pgxpool.Pool, t *testing.T, fn func(env testEnv)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		tokenManager, err := tokenmanager.New(tokenmanager.Config{
			SecretKey:  "test-secret",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		})
		require.NoError(t, err, "token manager should be created without errors")

		authService, err := auth.NewService(auth.Config{}, tokenManager, storage)
		require.NoError(t, err, "auth service starting error", err)

		userService := user.NewService(nil, storage)
		router := NewRouter(authService, library.NewService(storage), userService, logger.NewNoOpLogger())

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(testEnv{client: client{t: t, url: srv.URL}, storage: storage, users: userService})
	})
}

func Test_AuthHandlers(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	const credentials = `{"email": "a@x.com", "password": "Passw0rd!"}`

	t.Run("register login refresh replay", func(t *testing.T) {
		withServer(pg.Pool, t, func(env testEnv) {
			c := env.client

			resp, body := c.do(http.MethodPost, "/auth/register", credentials)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)
			require.Empty(t, resp.Cookies(), "register does not issue tokens")

			resp, body = c.do(http.MethodPost, "/auth/login", credentials)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			firstAccess := accessToken(t, body)
			firstRefresh := refreshCookie(t, resp)
			require.NotContains(t, body, firstRefresh.Value, "refresh token must not be in body")

			require.True(t, firstRefresh.HttpOnly, "refresh cookie should be HttpOnly")
			require.Equal(t, "/auth", firstRefresh.Path)
			require.Equal(t, http.SameSiteStrictMode, firstRefresh.SameSite, "refresh cookie should be SameSite Strict")
			require.Equal(t, int((24 * time.Hour).Seconds()), firstRefresh.MaxAge, "max age should be exactly refresh TTL")

			resp, body = c.do(http.MethodPost, "/auth/refresh", "", withCookie(firstRefresh))
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			secondAccess := accessToken(t, body)
			secondRefresh := refreshCookie(t, resp)
			require.NotEqual(t, firstAccess, secondAccess, "access token should be changed after refresh")
			require.NotEqual(t, firstRefresh.Value, secondRefresh.Value, "refresh token should be changed after refresh")

			resp, body = c.do(http.MethodPost, "/auth/refresh", "", withCookie(firstRefresh))
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "replay must fail. Body: %s", body)
			require.JSONEq(t, `{"error": "service_error", "message": "Invalid token"}`, body)
		})
	})

	t.Run("register existed user fails", func(t *testing.T) {
		withServer(pg.Pool, t, func(env testEnv) {
			resp, body := env.client.do(http.MethodPost, "/auth/register", credentials)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			resp, body = env.client.do(http.MethodPost, "/auth/register", `{"email": "A@X.com", "password": "Other-pwd1"}`)

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"error": "service_error", "message": "User already exists"}`, body)
		})
	})

	t.Run("register with missing fields", func(t *testing.T) {
		withServer(pg.Pool, t, func(env testEnv) {
			resp, body := env.client.do(http.MethodPost, "/auth/register", `{"email": "a@x.com"}`)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `{
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {"password": "This field is required"}
			}`, body)
		})
	})

	t.Run("login failures look the same", func(t *testing.T) {
		withServer(pg.Pool, t, func(env testEnv) {
			resp, _ := env.client.do(http.MethodPost, "/auth/register", credentials)
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			wrongPassword, wrongPasswordBody := env.client.do(http.MethodPost, "/auth/login", `{"email": "a@x.com", "password": "wrong-password"}`)
			noUser, noUserBody := env.client.do(http.MethodPost, "/auth/login", `{"email": "nobody@x.com", "password": "Passw0rd!"}`)

			require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
			require.Equal(t, http.StatusUnauthorized, noUser.StatusCode)
			require.JSONEq(t, `{"error": "service_error", "message": "Invalid credentials"}`, wrongPasswordBody)
			require.Equal(t, wrongPasswordBody, noUserBody, "body must not tell whether email exists")
			require.Empty(t, wrongPassword.Cookies(), "no cookies should be set on login error")
		})
	})

	t.Run("refresh without cookie", func(t *testing.T) {
		withServer(pg.Pool, t, func(env testEnv) {
			resp, body := env.client.do(http.MethodPost, "/auth/refresh", "")

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.JSONEq(t, `{"error": "service_error", "message": "Unauthorized"}`, body)
		})
	})

	t.Run("refresh inactive user", func(t *testing.T) {
		withServer(pg.Pool, t, func(env testEnv) {
			c := env.client
			resp, _ := c.do(http.MethodPost, "/auth/register", credentials)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp, _ = c.do(http.MethodPost, "/auth/login", credentials)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			cookie := refreshCookie(t, resp)

			u, err := env.storage.User().GetUserByEmail(t.Context(), "a@x.com")
			require.NoError(t, err)
			_, err = env.users.Deactivate(t.Context(), u.ID)
			require.NoError(t, err)

			resp, body := c.do(http.MethodPost, "/auth/refresh", "", withCookie(cookie))

			require.Equalf(t, http.StatusForbidden, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("logout", func(t *testing.T) {
		withServer(pg.Pool, t, func(env testEnv) {
			c := env.client
			resp, _ := c.do(http.MethodPost, "/auth/register", credentials)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp, _ = c.do(http.MethodPost, "/auth/login", credentials)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			cookie := refreshCookie(t, resp)

			for range 2 {
				resp, body := c.do(http.MethodPost, "/auth/logout", "", withCookie(cookie))
				require.Equalf(t, http.StatusOK, resp.StatusCode, "logout never fails. Body: %s", body)
				cleared := refreshCookie(t, resp)
				require.Empty(t, cleared.Value)
				require.Negative(t, cleared.MaxAge, "cookie has to be removed")
			}

			resp, _ = c.do(http.MethodPost, "/auth/logout", "")
			require.Equal(t, http.StatusOK, resp.StatusCode, "logout without cookie is ok too")

			resp, _ = c.do(http.MethodPost, "/auth/refresh", "", withCookie(cookie))
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "logged out token can't be refreshed")
		})
	})

	t.Run("me", func(t *testing.T) {
		withServer(pg.Pool, t, func(env testEnv) {
			c := env.client
			resp, _ := c.do(http.MethodPost, "/auth/register", credentials)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp, body := c.do(http.MethodPost, "/auth/login", credentials)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			access := accessToken(t, body)
			u, err := env.storage.User().GetUserByEmail(t.Context(), "a@x.com")
			require.NoError(t, err)

			resp, body = c.do(http.MethodGet, "/auth/me", "", withBearer(access))
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var me struct {
				UserID string   `json:"user_id"`
				Roles  []string `json:"roles"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &me))
			require.Equal(t, u.ID.String(), me.UserID)
			require.Equal(t, []string{models.RoleMember}, me.Roles)

			resp, _ = c.do(http.MethodGet, "/auth/me", "")
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			resp, _ = c.do(http.MethodGet, "/auth/me", "", withBearer("not-a-token"))
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})

	t.Run("health check", func(t *testing.T) {
		withServer(pg.Pool, t, func(env testEnv) {
			resp, body := env.client.do(http.MethodGet, "/api/v1/health-check", "")

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Contains(t, body, `"service":"library"`)
		})
	})
}
