package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

type BookRepo struct {
	DB DBTX
}

const bookColumns = `id, title, author, stock, created_at, updated_at`

func (r *BookRepo) CreateBook(ctx context.Context, p repository.BookParams) (models.Book, error) {
	const createBook = `-- name: CreateBook
	INSERT INTO books (title, author, stock)
	VALUES ($1, $2, $3)
	RETURNING ` + bookColumns

	rows, _ := r.DB.Query(ctx, createBook, p.Title, p.Author, p.Stock)
	book, err := pgx.CollectOneRow(rows, rowToBook)
	if err != nil {
		return book, fmt.Errorf("db error: %w", err)
	}

	return book, nil
}

func (r *BookRepo) GetBook(ctx context.Context, id int64) (models.Book, error) {
	const getBook = `-- name: GetBook
	SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	rows, _ := r.DB.Query(ctx, getBook, id)
	return collectBook(rows)
}

func (r *BookRepo) ListBooks(ctx context.Context, p repository.ListParams) (models.Page[models.Book], error) {
	const listBooks = `-- name: ListBooks
	SELECT ` + bookColumns + `, COUNT(*) OVER () AS total
	FROM books
	WHERE ($1::text = '' OR title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%')`

	query, args := paginate(listBooks, []any{p.Query}, p, repository.BookSortFields)
	rows, _ := r.DB.Query(ctx, query, args...)

	return collectPage(rows, p, func(row pgx.CollectableRow, total *int64) (models.Book, error) {
		var b models.Book
		err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Stock, &b.CreatedAt, &b.UpdatedAt, total)
		return b, err
	}, func(b models.Book) int64 { return b.ID })
}

func (r *BookRepo) UpdateBook(ctx context.Context, id int64, p repository.BookParams) (models.Book, error) {
	const updateBook = `-- name: UpdateBook
	UPDATE books
	SET title = $2, author = $3, stock = $4, updated_at = NOW()
	WHERE id = $1
	RETURNING ` + bookColumns

	rows, _ := r.DB.Query(ctx, updateBook, id, p.Title, p.Author, p.Stock)
	return collectBook(rows)
}

func (r *BookRepo) DeleteBook(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrBookNotFound
	default:
		return nil
	}
}

func (r *BookRepo) AdjustStock(ctx context.Context, id int64, delta int32) (models.Book, error) {
	const adjustStock = `-- name: AdjustStock
	UPDATE books
	SET stock = stock + $2, updated_at = NOW()
	WHERE id = $1
	RETURNING ` + bookColumns

	rows, _ := r.DB.Query(ctx, adjustStock, id, delta)
	book, err := collectBook(rows)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
		return book, apperrors.ErrOutOfStock
	}

	return book, err
}

func collectBook(rows pgx.Rows) (models.Book, error) {
	book, err := pgx.CollectOneRow(rows, rowToBook)

	switch {
	case err == nil:
		return book, nil
	case errors.Is(err, pgx.ErrNoRows):
		return book, apperrors.ErrBookNotFound
	default:
		return book, fmt.Errorf("db error: %w", err)
	}
}

func rowToBook(row pgx.CollectableRow) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Stock, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
