package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), "a@x.com", "hashedpassword123")

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID)
			assert.Equal(t, "a@x.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.True(t, user.IsActive, "new user has to be active")
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user duplicate email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), "a@x.com", "hashedpassword123")
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), "a@x.com", "other")

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			require.ErrorIs(t, err, apperrors.ErrConflict, "duplicate user is a conflict")
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "findbyid@x.com", "hashedpassword123")
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			require.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "findbyemail@x.com", "hashedpassword123")
			require.NoError(t, err)

			got, err := r.GetUserByEmail(t.Context(), "findbyemail@x.com")

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByEmail(t.Context(), "nobody@x.com")

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("set active", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "a@x.com", "hashedpassword123")
			require.NoError(t, err)

			deactivated, err := r.SetActive(t.Context(), created.ID, false)
			require.NoError(t, err)
			require.False(t, deactivated.IsActive)

			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.False(t, got.IsActive, "deactivation has to be persisted")

			activated, err := r.SetActive(t.Context(), created.ID, true)
			require.NoError(t, err)
			require.True(t, activated.IsActive)
		})
	})

	t.Run("set active not existed user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.SetActive(t.Context(), uuid.New(), false)

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
