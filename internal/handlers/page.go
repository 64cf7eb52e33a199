package handlers

import (
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

// List response. Which paging fields are set depends on the pagination mode
type pageResponse[T any] struct {
	Items      []T    `json:"items"`
	Pagination string `json:"pagination"`
	Count      int    `json:"count"`
	Sort       string `json:"sort"`
	Order      string `json:"order"`

	// page mode
	Page    int `json:"page,omitempty"`
	PerPage int `json:"per_page,omitempty"`
	Pages   int `json:"pages,omitempty"`

	// page and offset modes
	Total *int64 `json:"total,omitempty"`

	// offset mode
	Offset *int `json:"offset,omitempty"`
	Limit  int  `json:"limit,omitempty"`

	// cursor mode; absent on the last page
	First      int     `json:"first,omitempty"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

func newPageResponse[M any, T any](page models.Page[M], p repository.ListParams, convert func(M) T) pageResponse[T] {
	items := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}

	resp := pageResponse[T]{
		Items:      items,
		Pagination: p.Mode,
		Count:      len(items),
		Sort:       p.Sort,
		Order:      "asc",
	}
	if p.Desc {
		resp.Order = "desc"
	}

	switch p.Mode {
	case repository.PaginationCursor:
		resp.Sort, resp.Order = "id", "asc"
		resp.First = p.Limit
		if page.NextAfterID != 0 {
			next := encodeCursor(page.NextAfterID)
			resp.NextCursor = &next
		}
	case repository.PaginationOffset:
		resp.Total = &page.Total
		resp.Offset = &p.Offset
		resp.Limit = p.Limit
	default:
		resp.Total = &page.Total
		if p.Limit > 0 {
			resp.Page = p.Offset/p.Limit + 1
			resp.PerPage = p.Limit
			resp.Pages = int((page.Total + int64(p.Limit) - 1) / int64(p.Limit))
		}
	}

	return resp
}
