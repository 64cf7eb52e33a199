package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
)

type RevocationRepo struct {
	DB DBTX
}

// Primary key on jti makes the insert a compare-and-set:
// exactly one of concurrent callers gets the row back
const revokeToken = `-- name: RevokeToken
INSERT INTO revoked_tokens (jti, reason)
VALUES ($1, $2)
ON CONFLICT (jti) DO NOTHING
RETURNING jti
`

func (r *RevocationRepo) Revoke(ctx context.Context, tokenID string, reason string) (bool, error) {
	rows, _ := r.DB.Query(ctx, revokeToken, tokenID, reason)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[string])

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("db error: %w", err)
	}
}

const isTokenRevoked = `-- name: IsTokenRevoked
SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)
`

func (r *RevocationRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.DB.QueryRow(ctx, isTokenRevoked, tokenID).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return revoked, nil
}

const getRevokedToken = `-- name: GetRevokedToken
SELECT jti, reason, revoked_at
FROM revoked_tokens
WHERE jti = $1
`

func (r *RevocationRepo) Get(ctx context.Context, tokenID string) (models.RevokedToken, error) {
	rows, _ := r.DB.Query(ctx, getRevokedToken, tokenID)
	token, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.RevokedToken, error) {
		var t models.RevokedToken
		err := row.Scan(&t.ID, &t.Reason, &t.RevokedAt)
		return t, err
	})

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrTokenNotRevoked)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}
