package models

import (
	"time"
)

type Book struct {
	ID        int64
	Title     string
	Author    string
	Stock     int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Member struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Loan struct {
	ID         int64
	BookID     int64
	MemberID   int64
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time // nil if book is not returned yet
}

// Loan filters
const (
	LoanStatusActive   = "active"
	LoanStatusReturned = "returned"
	LoanStatusAll      = "all"
)

// Slice of list result
type Page[T any] struct {
	Items []T

	// Items matched the query. Not counted in cursor mode
	Total int64

	// Cursor mode only: id of the last item if more items follow, zero otherwise
	NextAfterID int64
}
