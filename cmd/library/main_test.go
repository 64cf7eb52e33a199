package main

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/library/internal/testutil"
)

func Test_run(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	port, err := testutil.RandomPort()
	require.NoError(t, err, "failed to get random port to start server")
	listenAddr := fmt.Sprintf("localhost:%d", port)

	noenv := func(string) string { return "" }

	t.Run("stop with signal", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err = run(ctx, noenv, os.Getwd, []string{
			"--address", listenAddr,
			"--log-level", "debug",
			"--database", pg.DSN,
			"--secret-key", "secret",
		})

		require.NoError(t, err, "on correct stop should not return error")
	})

	t.Run("seed admin on start", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		t.Cleanup(cancel)
		getenv := func(key string) string {
			switch key {
			case "ADMIN_EMAIL":
				return "Admin@Library.com"
			case "ADMIN_PASSWORD":
				return "Adm1nPassword"
			default:
				return ""
			}
		}

		err := run(ctx, getenv, os.Getwd, []string{
			"--address", listenAddr,
			"--database", pg.DSN,
			"--secret-key", "secret",
		})
		require.NoError(t, err)

		var roles []string
		err = pg.Pool.QueryRow(context.Background(), `
			SELECT array_agg(roles.name ORDER BY roles.name)
			FROM users
			JOIN user_roles ON user_roles.user_id = users.id
			JOIN roles ON roles.id = user_roles.role_id
			WHERE users.email = 'admin@library.com'`,
		).Scan(&roles)
		require.NoError(t, err)
		require.Equal(t, []string{"admin", "member"}, roles)
	})

	t.Run("stop with srv error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		// Try to run without secret key. Must fail
		err := run(ctx, noenv, os.Getwd, []string{
			"--address", listenAddr,
			"--log-level", "debug",
			"--database", pg.DSN,
		})

		require.Error(t, err, "on incorrect stop should return error")
	})
}
