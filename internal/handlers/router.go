package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/library/internal/handlers/middleware"
	"github.com/nkiryanov/library/internal/logger"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Who may call a route
type access struct {
	authenticated bool
	roles         []string
}

var (
	public        = access{}
	authenticated = access{authenticated: true}
	adminOnly     = access{authenticated: true, roles: []string{models.RoleAdmin}}
)

type route struct {
	pattern string
	access  access
	handler http.Handler
}

func routes(
	authService authService,
	libraryService libraryService,
	userService userService,
	l logger.Logger,
) []route {
	return []route{
		{"GET /api/v1/health-check", public, handleHealthCheck()},

		{"POST /auth/register", public, handleRegister(authService, l)},
		{"POST /auth/login", public, handleLogin(authService, l)},
		{"POST /auth/refresh", public, handleTokenRefresh(authService, l)},
		{"POST /auth/logout", public, handleLogout(authService)},
		{"GET /auth/me", authenticated, handleUserMe()},

		{"GET /api/v1/books", public, handleListBooks(libraryService, l)},
		{"GET /api/v1/books/{id}", public, handleGetBook(libraryService, l)},
		{"GET /api/v1/books/{id}/loans", public, handleListBookLoans(libraryService, l)},
		{"GET /api/v1/books/{id}/borrowers", public, handleListBookBorrowers(libraryService, l)},
		{"POST /api/v1/books", adminOnly, handleCreateBook(libraryService, l)},
		{"PUT /api/v1/books/{id}", adminOnly, handleUpdateBook(libraryService, l)},
		{"DELETE /api/v1/books/{id}", adminOnly, handleDeleteBook(libraryService, l)},

		{"GET /api/v1/members", public, handleListMembers(libraryService, l)},
		{"GET /api/v1/members/{id}", public, handleGetMember(libraryService, l)},
		{"GET /api/v1/members/{id}/loans", public, handleListMemberLoans(libraryService, l)},
		{"POST /api/v1/members", adminOnly, handleCreateMember(libraryService, l)},
		{"PUT /api/v1/members/{id}", adminOnly, handleUpdateMember(libraryService, l)},
		{"DELETE /api/v1/members/{id}", adminOnly, handleDeleteMember(libraryService, l)},

		{"GET /api/v1/loans", public, handleListLoans(libraryService, l)},
		{"POST /api/v1/loans", adminOnly, handleCreateLoan(libraryService, l)},
		{"PATCH /api/v1/loans/{id}", adminOnly, handleReturnLoan(libraryService, l)},

		{"POST /api/v1/users/{id}/deactivate", adminOnly, handleSetUserActive(userService, false, l)},
		{"POST /api/v1/users/{id}/activate", adminOnly, handleSetUserActive(userService, true, l)},
		{"PUT /api/v1/users/{id}/roles/{role}", adminOnly, handleGrantRole(userService, l)},
		{"DELETE /api/v1/users/{id}/roles/{role}", adminOnly, handleRevokeRole(userService, l)},
		{"POST /api/v1/tokens/revoke", adminOnly, handleRevokeToken(userService, l)},
	}
}

func NewRouter(
	authService authService,
	libraryService libraryService,
	userService userService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.NewAuth(authService)

	mux := http.NewServeMux()
	for _, rt := range routes(authService, libraryService, userService, logger) {
		h := rt.handler
		if rt.access.authenticated {
			h = chain(h, authMiddleware.Auth, middleware.Require(rt.access.roles...))
		}
		mux.Handle(rt.pattern, h)
	}

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user with email and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, email string, password string) (models.User, error)

	// Login user with email and password
	// Has to return apperrors.ErrInvalidCredentials on any auth failure
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Rotate refresh token
	// Has to return apperrors.ErrMissingToken, ErrInvalidToken, ErrRevokedToken or ErrInactiveUser
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Revoke refresh token if possible. Never fails
	Logout(ctx context.Context, refresh string)

	// Verify access token and return its claims
	VerifyAccess(ctx context.Context, access string) (models.AccessClaims, error)

	SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken)
	ClearRefreshCookie(w http.ResponseWriter)
	ReadRefreshCookie(r *http.Request) (string, error)
	ReadBearer(r *http.Request) (string, error)
}

type libraryService interface {
	CreateBook(ctx context.Context, p repository.BookParams) (models.Book, error)
	GetBook(ctx context.Context, id int64) (models.Book, error)
	ListBooks(ctx context.Context, p repository.ListParams) (models.Page[models.Book], error)
	UpdateBook(ctx context.Context, id int64, p repository.BookParams) (models.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	CreateMember(ctx context.Context, p repository.MemberParams) (models.Member, error)
	GetMember(ctx context.Context, id int64) (models.Member, error)
	ListMembers(ctx context.Context, p repository.ListParams) (models.Page[models.Member], error)
	UpdateMember(ctx context.Context, id int64, p repository.MemberParams) (models.Member, error)
	DeleteMember(ctx context.Context, id int64) error

	CreateLoan(ctx context.Context, p repository.LoanParams) (models.Loan, error)
	ListLoans(ctx context.Context, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error)
	ListBookLoans(ctx context.Context, bookID int64, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error)
	ListMemberLoans(ctx context.Context, memberID int64, f repository.LoanFilter, p repository.ListParams) (models.Page[models.Loan], error)
	ListBookBorrowers(ctx context.Context, bookID int64, p repository.ListParams) (models.Page[models.Member], error)
	ReturnLoan(ctx context.Context, id int64) (models.Loan, error)
}

type userService interface {
	Activate(ctx context.Context, userID uuid.UUID) (models.User, error)
	Deactivate(ctx context.Context, userID uuid.UUID) (models.User, error)
	GrantRole(ctx context.Context, userID uuid.UUID, role string) ([]string, error)
	RevokeRole(ctx context.Context, userID uuid.UUID, role string) ([]string, error)
	RevokeToken(ctx context.Context, tokenID string) (bool, error)
}
