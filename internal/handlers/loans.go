package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/handlers/render"
	"github.com/nkiryanov/library/internal/logger"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

type loanResponse struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	MemberID   int64      `json:"member_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at"`
}

func newLoanResponse(l models.Loan) loanResponse {
	return loanResponse{
		ID:         l.ID,
		BookID:     l.BookID,
		MemberID:   l.MemberID,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
		ReturnedAt: l.ReturnedAt,
	}
}

func handleListLoans(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := listParams(r, repository.LoanSortFields)
		if err != nil {
			renderError(w, l, err)
			return
		}

		filter, err := loanFilter(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		page, err := libraryService.ListLoans(r.Context(), filter, params)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newPageResponse(page, params, newLoanResponse))
	})
}

// Loans of one book or one member: '/books/{id}/loans', '/members/{id}/loans'
func handleListNestedLoans(
	list func(ctx context.Context, id int64, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error),
	l logger.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		params, err := listParams(r, repository.LoanSortFields)
		if err != nil {
			renderError(w, l, err)
			return
		}

		filter, err := loanFilter(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		page, err := list(r.Context(), id, filter, params)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newPageResponse(page, params, newLoanResponse))
	})
}

func handleListBookLoans(libraryService libraryService, l logger.Logger) http.Handler {
	return handleListNestedLoans(func(ctx context.Context, id int64, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error) {
		return libraryService.ListBookLoans(ctx, id, f, p)
	}, l)
}

func handleListMemberLoans(libraryService libraryService, l logger.Logger) http.Handler {
	return handleListNestedLoans(func(ctx context.Context, id int64, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error) {
		return libraryService.ListMemberLoans(ctx, id, f, p)
	}, l)
}

func handleCreateLoan(libraryService libraryService, l logger.Logger) http.Handler {
	type request struct {
		BookID   int64 `json:"book_id" validate:"required,min=1"`
		MemberID int64 `json:"member_id" validate:"required,min=1"`
		Days     int   `json:"days" validate:"omitempty,min=1,max=365"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		loan, err := libraryService.CreateLoan(r.Context(), repository.LoanParams{
			BookID:   data.BookID,
			MemberID: data.MemberID,
			Days:     data.Days,
		})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newLoanResponse(loan), http.StatusCreated)
	})
}

func handleReturnLoan(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		loan, err := libraryService.ReturnLoan(r.Context(), id)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newLoanResponse(loan))
	})
}

// Read 'status' (active by default), 'book_id' and 'member_id' query params
func loanFilter(r *http.Request) (repository.LoanFilter, error) {
	var f repository.LoanFilter
	var err error

	switch status := r.URL.Query().Get("status"); status {
	case "":
		f.Status = models.LoanStatusActive
	case models.LoanStatusAll, models.LoanStatusActive, models.LoanStatusReturned:
		f.Status = status
	default:
		return f, fmt.Errorf("%w: status must be one of: all active returned", apperrors.ErrValidation)
	}

	if f.BookID, err = queryID(r, "book_id"); err != nil {
		return f, err
	}
	if f.MemberID, err = queryID(r, "member_id"); err != nil {
		return f, err
	}

	return f, nil
}
