package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/library/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create active user
	// If user with email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, hashedPassword string) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Activate or deactivate user
	// If user not found must return apperrors.ErrUserNotFound
	SetActive(ctx context.Context, userID uuid.UUID, active bool) (models.User, error)
}

// Role repository interface
type RoleRepo interface {
	// Return role with the name, create it if not exists
	FindOrCreateRole(ctx context.Context, name string) (models.Role, error)

	// Assign role to user. Assigning already assigned role is not an error
	AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error

	// Remove role from the user
	// If the role is not exists must return apperrors.ErrRoleNotFound
	UnassignRole(ctx context.Context, userID uuid.UUID, roleName string) error

	// Names of user roles sorted alphabetically
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Revocation ledger interface
// Records are append only and never deleted
type RevocationRepo interface {
	// Put token identifier to the ledger
	// revoked is false if the identifier was already there; it is not an error
	Revoke(ctx context.Context, tokenID string, reason string) (revoked bool, err error)

	// Check whether token identifier is in the ledger
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// Get revocation record
	// If not found must return apperrors.ErrTokenNotRevoked
	Get(ctx context.Context, tokenID string) (models.RevokedToken, error)
}

// Pagination modes
const (
	PaginationPage   = "page"
	PaginationOffset = "offset"
	PaginationCursor = "cursor"
)

// Columns lists may be sorted by. Anything else is sorted by id
var (
	BookSortFields   = []string{"id", "title", "author", "stock", "created_at", "updated_at"}
	MemberSortFields = []string{"id", "name", "email", "created_at"}
	LoanSortFields   = []string{"id", "borrowed_at", "due_at", "returned_at"}
)

// Common list parameters
// Page and offset modes read Limit rows after skipping Offset rows in Sort order
// Cursor mode reads Limit rows with id greater than AfterID in id ascending order
type ListParams struct {
	Query string

	Mode    string
	Limit   int
	Offset  int
	AfterID int64

	Sort string
	Desc bool
}

type BookParams struct {
	Title  string
	Author string
	Stock  int32
}

type BookRepo interface {
	CreateBook(ctx context.Context, params BookParams) (models.Book, error)
	GetBook(ctx context.Context, id int64) (models.Book, error)
	ListBooks(ctx context.Context, params ListParams) (models.Page[models.Book], error)
	UpdateBook(ctx context.Context, id int64, params BookParams) (models.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	// Change book stock by delta
	// Must return apperrors.ErrOutOfStock if the stock would become negative
	AdjustStock(ctx context.Context, id int64, delta int32) (models.Book, error)
}

type MemberParams struct {
	Name  string
	Email string
}

type MemberRepo interface {
	// If email is taken by other member must return apperrors.ErrMemberEmailTaken
	CreateMember(ctx context.Context, params MemberParams) (models.Member, error)
	GetMember(ctx context.Context, id int64) (models.Member, error)
	ListMembers(ctx context.Context, params ListParams) (models.Page[models.Member], error)

	// Distinct members who ever borrowed the book
	ListBorrowers(ctx context.Context, bookID int64, params ListParams) (models.Page[models.Member], error)
	UpdateMember(ctx context.Context, id int64, params MemberParams) (models.Member, error)
	DeleteMember(ctx context.Context, id int64) error
}

type LoanParams struct {
	BookID   int64
	MemberID int64
	Days     int
}

type LoanFilter struct {
	Status   string // active, returned or all
	BookID   int64  // zero means any
	MemberID int64  // zero means any
}

type LoanRepo interface {
	CreateLoan(ctx context.Context, params LoanParams) (models.Loan, error)
	GetLoan(ctx context.Context, id int64) (models.Loan, error)
	ListLoans(ctx context.Context, filter LoanFilter, params ListParams) (models.Page[models.Loan], error)

	// Mark loan returned
	// Must return apperrors.ErrLoanAlreadyReturned if it returned already
	ReturnLoan(ctx context.Context, id int64) (models.Loan, error)
}

type Storage interface {
	User() UserRepo
	Role() RoleRepo
	Revocation() RevocationRepo
	Book() BookRepo
	Member() MemberRepo
	Loan() LoanRepo

	// Run fn in transaction
	// Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
