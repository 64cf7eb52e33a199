// Package library holds books, members and loans operations.
package library

import (
	"context"
	"errors"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

const DefaultLoanDays = 14

type LibraryService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *LibraryService {
	return &LibraryService{storage: storage}
}

func (s *LibraryService) CreateBook(ctx context.Context, p repository.BookParams) (models.Book, error) {
	return s.storage.Book().CreateBook(ctx, p)
}

func (s *LibraryService) GetBook(ctx context.Context, id int64) (models.Book, error) {
	return s.storage.Book().GetBook(ctx, id)
}

func (s *LibraryService) ListBooks(ctx context.Context, p repository.ListParams) (models.Page[models.Book], error) {
	return s.storage.Book().ListBooks(ctx, p)
}

func (s *LibraryService) UpdateBook(ctx context.Context, id int64, p repository.BookParams) (models.Book, error) {
	return s.storage.Book().UpdateBook(ctx, id, p)
}

// Delete book with its loans history
func (s *LibraryService) DeleteBook(ctx context.Context, id int64) error {
	return s.storage.Book().DeleteBook(ctx, id)
}

func (s *LibraryService) CreateMember(ctx context.Context, p repository.MemberParams) (models.Member, error) {
	p.Email = models.NormalizeEmail(p.Email)
	return s.storage.Member().CreateMember(ctx, p)
}

func (s *LibraryService) GetMember(ctx context.Context, id int64) (models.Member, error) {
	return s.storage.Member().GetMember(ctx, id)
}

func (s *LibraryService) ListMembers(ctx context.Context, p repository.ListParams) (models.Page[models.Member], error) {
	return s.storage.Member().ListMembers(ctx, p)
}

func (s *LibraryService) UpdateMember(ctx context.Context, id int64, p repository.MemberParams) (models.Member, error) {
	p.Email = models.NormalizeEmail(p.Email)
	return s.storage.Member().UpdateMember(ctx, id, p)
}

func (s *LibraryService) DeleteMember(ctx context.Context, id int64) error {
	return s.storage.Member().DeleteMember(ctx, id)
}

// Lend a book: one copy is taken from stock
func (s *LibraryService) CreateLoan(ctx context.Context, p repository.LoanParams) (models.Loan, error) {
	if p.Days == 0 {
		p.Days = DefaultLoanDays
	}

	var loan models.Loan
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.Book().AdjustStock(ctx, p.BookID, -1); err != nil {
			return err
		}

		var err error
		loan, err = st.Loan().CreateLoan(ctx, p)
		return err
	})

	return loan, err
}

func (s *LibraryService) GetLoan(ctx context.Context, id int64) (models.Loan, error) {
	return s.storage.Loan().GetLoan(ctx, id)
}

// Active loans are listed if status is not set
func (s *LibraryService) ListLoans(ctx context.Context, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error) {
	if f.Status == "" {
		f.Status = models.LoanStatusActive
	}
	return s.storage.Loan().ListLoans(ctx, f, p)
}

// Loans of the book. Return apperrors.ErrBookNotFound if there is no such book
func (s *LibraryService) ListBookLoans(ctx context.Context, bookID int64, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error) {
	if _, err := s.storage.Book().GetBook(ctx, bookID); err != nil {
		return models.Page[models.Loan]{}, err
	}

	f.BookID = bookID
	return s.ListLoans(ctx, f, p)
}

// Members who ever borrowed the book
func (s *LibraryService) ListBookBorrowers(ctx context.Context, bookID int64, p repository.ListParams) (models.Page[models.Member], error) {
	if _, err := s.storage.Book().GetBook(ctx, bookID); err != nil {
		return models.Page[models.Member]{}, err
	}

	return s.storage.Member().ListBorrowers(ctx, bookID, p)
}

func (s *LibraryService) ListMemberLoans(ctx context.Context, memberID int64, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error) {
	if _, err := s.storage.Member().GetMember(ctx, memberID); err != nil {
		return models.Page[models.Loan]{}, err
	}

	f.MemberID = memberID
	return s.ListLoans(ctx, f, p)
}

// Return a book: copy goes back to stock. Loan can be returned only once
func (s *LibraryService) ReturnLoan(ctx context.Context, id int64) (models.Loan, error) {
	var loan models.Loan
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error

		loan, err = st.Loan().ReturnLoan(ctx, id)
		if err != nil {
			return err
		}

		_, err = st.Book().AdjustStock(ctx, loan.BookID, 1)
		if errors.Is(err, apperrors.ErrBookNotFound) {
			return nil
		}
		return err
	})

	return loan, err
}
