package postgres

import (
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

// Ordering for page and offset modes. Ties are broken by id
func orderBy(p repository.ListParams, sortable []string) string {
	field := "id"
	if slices.Contains(sortable, p.Sort) {
		field = p.Sort
	}

	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}

	if field == "id" {
		return "id " + dir
	}
	return field + " " + dir + ", id " + dir
}

// Append ordering and limits to the filtered query
// Query must end with WHERE clause; its placeholders are args
func paginate(query string, args []any, p repository.ListParams, sortable []string) (string, []any) {
	n := len(args)

	if p.Mode == repository.PaginationCursor {
		// One extra row tells whether the next cursor exists
		query += fmt.Sprintf("\n\tAND id > $%d\n\tORDER BY id ASC\n\tLIMIT $%d", n+1, n+2)
		return query, append(args, p.AfterID, p.Limit+1)
	}

	query += fmt.Sprintf("\n\tORDER BY %s\n\tLIMIT $%d OFFSET $%d", orderBy(p, sortable), n+1, n+2)
	return query, append(args, p.Limit, p.Offset)
}

// Collect rows selected with paginate
// scan must read 'COUNT(*) OVER ()' column into total
func collectPage[T any](
	rows pgx.Rows,
	p repository.ListParams,
	scan func(row pgx.CollectableRow, total *int64) (T, error),
	idOf func(T) int64,
) (models.Page[T], error) {
	page := models.Page[T]{Items: []T{}}

	var total int64
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row, &total)
	})
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	if p.Mode == repository.PaginationCursor {
		if p.Limit > 0 && len(items) > p.Limit {
			items = items[:p.Limit]
			page.NextAfterID = idOf(items[len(items)-1])
		}
	} else {
		page.Total = total
	}

	if items != nil {
		page.Items = items
	}
	return page, nil
}
