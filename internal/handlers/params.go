package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/repository"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Read positive integer id from path like '/books/{id}'
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: id must be positive integer", apperrors.ErrValidation)
	}
	return id, nil
}

func pathUserID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: user id must be uuid", apperrors.ErrValidation)
	}
	return id, nil
}

// List query params:
//
//	?q=<search>&sort=<field>&order=asc|desc
//	?pagination=page&page=1&per_page=20 (default)
//	?pagination=offset&offset=0&limit=20
//	?pagination=cursor&first=20&after=<next_cursor>
//
// Unknown mode falls back to page, unknown sort field to id, unknown order to desc
// Page sizes are capped by maxPerPage
func listParams(r *http.Request, sortable []string) (repository.ListParams, error) {
	query := r.URL.Query()
	p := repository.ListParams{
		Query: strings.TrimSpace(query.Get("q")),
		Mode:  strings.ToLower(query.Get("pagination")),
		Limit: defaultPerPage,
		Sort:  "id",
		Desc:  !strings.EqualFold(query.Get("order"), "asc"),
	}

	if slices.Contains(sortable, query.Get("sort")) {
		p.Sort = query.Get("sort")
	}

	readInt := func(name string, field *int, minValue int) error {
		value := query.Get(name)
		if value == "" {
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < minValue {
			return fmt.Errorf("%w: %s must be integer not less than %d", apperrors.ErrValidation, name, minValue)
		}
		*field = n
		return nil
	}

	var err error
	switch p.Mode {
	case repository.PaginationOffset:
		if err = readInt("limit", &p.Limit, 1); err == nil {
			err = readInt("offset", &p.Offset, 0)
		}
	case repository.PaginationCursor:
		if err = readInt("first", &p.Limit, 1); err == nil {
			p.AfterID, err = decodeCursor(query.Get("after"))
		}
	default:
		p.Mode = repository.PaginationPage
		page := 1
		if err = readInt("page", &page, 1); err == nil {
			err = readInt("per_page", &p.Limit, 1)
		}
		p.Limit = min(p.Limit, maxPerPage)
		p.Offset = (page - 1) * p.Limit
	}
	if err != nil {
		return p, err
	}
	p.Limit = min(p.Limit, maxPerPage)

	return p, nil
}

// Opaque cursor payload
type cursor struct {
	LastID int64 `json:"last_id"`
}

func encodeCursor(lastID int64) string {
	data, _ := json.Marshal(cursor{LastID: lastID})
	return base64.RawURLEncoding.EncodeToString(data)
}

// Empty cursor means the first page
func decodeCursor(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}

	invalid := fmt.Errorf("%w: after must be a cursor returned as next_cursor", apperrors.ErrValidation)

	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(value, "="))
	if err != nil {
		return 0, invalid
	}

	var c cursor
	if err := json.Unmarshal(data, &c); err != nil || c.LastID < 0 {
		return 0, invalid
	}

	return c.LastID, nil
}

// Optional positive integer query param; zero if absent
func queryID(r *http.Request, name string) (int64, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s must be positive integer", apperrors.ErrValidation, name)
	}
	return id, nil
}
