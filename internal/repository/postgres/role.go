package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
)

type RoleRepo struct {
	DB DBTX
}

// The no-op update makes RETURNING emit the row even if the role exists already
const findOrCreateRole = `-- name: FindOrCreateRole
INSERT INTO roles (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name
`

func (r *RoleRepo) FindOrCreateRole(ctx context.Context, name string) (models.Role, error) {
	rows, _ := r.DB.Query(ctx, findOrCreateRole, name)
	role, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Role, error) {
		var role models.Role
		err := row.Scan(&role.ID, &role.Name)
		return role, err
	})
	if err != nil {
		return role, fmt.Errorf("db error: %w", err)
	}

	return role, nil
}

const assignRole = `-- name: AssignRole
INSERT INTO user_roles (user_id, role_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

func (r *RoleRepo) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	role, err := r.FindOrCreateRole(ctx, roleName)
	if err != nil {
		return err
	}

	_, err = r.DB.Exec(ctx, assignRole, userID, role.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const unassignRole = `-- name: UnassignRole
DELETE FROM user_roles
USING roles
WHERE user_roles.role_id = roles.id
  AND user_roles.user_id = $1
  AND roles.name = $2
`

func (r *RoleRepo) UnassignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	tag, err := r.DB.Exec(ctx, unassignRole, userID, roleName)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrRoleNotFound
	default:
		return nil
	}
}

const getUserRoles = `-- name: GetUserRoles
SELECT roles.name
FROM user_roles
JOIN roles ON roles.id = user_roles.role_id
WHERE user_roles.user_id = $1
ORDER BY roles.name
`

func (r *RoleRepo) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, _ := r.DB.Query(ctx, getUserRoles, userID)
	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return roles, nil
}
