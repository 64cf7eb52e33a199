package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

type LoanRepo struct {
	DB DBTX
}

const loanColumns = `id, book_id, member_id, borrowed_at, due_at, returned_at`

// Create loan record only, the book stock is not touched here
func (r *LoanRepo) CreateLoan(ctx context.Context, p repository.LoanParams) (models.Loan, error) {
	const createLoan = `-- name: CreateLoan
	INSERT INTO loans (book_id, member_id, borrowed_at, due_at)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + loanColumns

	now := time.Now().UTC()
	due := now.AddDate(0, 0, p.Days)

	rows, _ := r.DB.Query(ctx, createLoan, p.BookID, p.MemberID, now, due)
	loan, err := pgx.CollectOneRow(rows, rowToLoan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			switch pgErr.ConstraintName {
			case "loans_book_id_fkey":
				return loan, apperrors.ErrBookNotFound
			case "loans_member_id_fkey":
				return loan, apperrors.ErrMemberNotFound
			}
		}
		return loan, fmt.Errorf("db error: %w", err)
	}

	return loan, nil
}

func (r *LoanRepo) GetLoan(ctx context.Context, id int64) (models.Loan, error) {
	const getLoan = `-- name: GetLoan
	SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	rows, _ := r.DB.Query(ctx, getLoan, id)
	return collectLoan(rows)
}

func (r *LoanRepo) ListLoans(ctx context.Context, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error) {
	const listLoans = `-- name: ListLoans
	SELECT ` + loanColumns + `, COUNT(*) OVER () AS total
	FROM loans
	WHERE ($1::text = 'all'
	    OR ($1 = 'active' AND returned_at IS NULL)
	    OR ($1 = 'returned' AND returned_at IS NOT NULL))
	  AND ($2::bigint = 0 OR book_id = $2)
	  AND ($3::bigint = 0 OR member_id = $3)`

	query, args := paginate(listLoans, []any{f.Status, f.BookID, f.MemberID}, p, repository.LoanSortFields)
	rows, _ := r.DB.Query(ctx, query, args...)

	return collectPage(rows, p, func(row pgx.CollectableRow, total *int64) (models.Loan, error) {
		var l models.Loan
		err := row.Scan(&l.ID, &l.BookID, &l.MemberID, &l.BorrowedAt, &l.DueAt, &l.ReturnedAt, total)
		return l, err
	}, func(l models.Loan) int64 { return l.ID })
}

// Set returned_at only once; second attempt returns the loan untouched with an error
func (r *LoanRepo) ReturnLoan(ctx context.Context, id int64) (models.Loan, error) {
	const returnLoan = `-- name: ReturnLoan
	UPDATE loans
	SET returned_at = COALESCE(returned_at, $2)
	WHERE id = $1
	RETURNING ` + loanColumns

	now := time.Now().UTC().Truncate(time.Microsecond)
	rows, _ := r.DB.Query(ctx, returnLoan, id, now)
	loan, err := collectLoan(rows)

	switch {
	case err != nil:
		return loan, err
	case loan.ReturnedAt != nil && !loan.ReturnedAt.Equal(now):
		return loan, apperrors.ErrLoanAlreadyReturned
	default:
		return loan, nil
	}
}

func collectLoan(rows pgx.Rows) (models.Loan, error) {
	loan, err := pgx.CollectOneRow(rows, rowToLoan)

	switch {
	case err == nil:
		return loan, nil
	case errors.Is(err, pgx.ErrNoRows):
		return loan, apperrors.ErrLoanNotFound
	default:
		return loan, fmt.Errorf("db error: %w", err)
	}
}

func rowToLoan(row pgx.CollectableRow) (models.Loan, error) {
	var l models.Loan
	err := row.Scan(&l.ID, &l.BookID, &l.MemberID, &l.BorrowedAt, &l.DueAt, &l.ReturnedAt)
	return l, err
}
