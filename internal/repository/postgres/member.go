package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

type MemberRepo struct {
	DB DBTX
}

const memberColumns = `id, name, email, created_at, updated_at`

func (r *MemberRepo) CreateMember(ctx context.Context, p repository.MemberParams) (models.Member, error) {
	const createMember = `-- name: CreateMember
	INSERT INTO members (name, email)
	VALUES ($1, $2)
	RETURNING ` + memberColumns

	rows, _ := r.DB.Query(ctx, createMember, p.Name, p.Email)
	return collectMember(rows)
}

func (r *MemberRepo) GetMember(ctx context.Context, id int64) (models.Member, error) {
	const getMember = `-- name: GetMember
	SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	rows, _ := r.DB.Query(ctx, getMember, id)
	return collectMember(rows)
}

func (r *MemberRepo) ListMembers(ctx context.Context, p repository.ListParams) (models.Page[models.Member], error) {
	const listMembers = `-- name: ListMembers
	SELECT ` + memberColumns + `, COUNT(*) OVER () AS total
	FROM members
	WHERE ($1::text = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')`

	query, args := paginate(listMembers, []any{p.Query}, p, repository.MemberSortFields)
	rows, _ := r.DB.Query(ctx, query, args...)

	return collectPage(rows, p, scanMemberWithTotal, memberID)
}

func (r *MemberRepo) ListBorrowers(ctx context.Context, bookID int64, p repository.ListParams) (models.Page[models.Member], error) {
	const listBorrowers = `-- name: ListBorrowers
	SELECT ` + memberColumns + `, COUNT(*) OVER () AS total
	FROM members
	WHERE EXISTS (SELECT 1 FROM loans WHERE loans.member_id = members.id AND loans.book_id = $1)
	  AND ($2::text = '' OR name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')`

	query, args := paginate(listBorrowers, []any{bookID, p.Query}, p, repository.MemberSortFields)
	rows, _ := r.DB.Query(ctx, query, args...)

	return collectPage(rows, p, scanMemberWithTotal, memberID)
}

func (r *MemberRepo) UpdateMember(ctx context.Context, id int64, p repository.MemberParams) (models.Member, error) {
	const updateMember = `-- name: UpdateMember
	UPDATE members
	SET name = $2, email = $3, updated_at = NOW()
	WHERE id = $1
	RETURNING ` + memberColumns

	rows, _ := r.DB.Query(ctx, updateMember, id, p.Name, p.Email)
	return collectMember(rows)
}

func (r *MemberRepo) DeleteMember(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrMemberNotFound
	default:
		return nil
	}
}

func collectMember(rows pgx.Rows) (models.Member, error) {
	member, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Member, error) {
		var m models.Member
		err := row.Scan(&m.ID, &m.Name, &m.Email, &m.CreatedAt, &m.UpdatedAt)
		return m, err
	})

	switch {
	case err == nil:
		return member, nil
	case errors.Is(err, pgx.ErrNoRows):
		return member, apperrors.ErrMemberNotFound
	case isUniqueViolation(err, "members_email_key"):
		return member, apperrors.ErrMemberEmailTaken
	default:
		return member, fmt.Errorf("db error: %w", err)
	}
}

func scanMemberWithTotal(row pgx.CollectableRow, total *int64) (models.Member, error) {
	var m models.Member
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.CreatedAt, &m.UpdatedAt, total)
	return m, err
}

func memberID(m models.Member) int64 { return m.ID }
