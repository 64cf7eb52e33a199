package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/logger"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

const (
	defaultAccessHeaderName  = "Authorization"
	defaultAccessAuthScheme  = "Bearer"
	defaultRefreshCookieName = "refresh_token"
	defaultRefreshCookiePath = "/auth"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type TokenManager interface {
	IssuePair(userID uuid.UUID, roles []string) (models.TokenPair, error)
	ParseAccess(value string) (models.AccessClaims, error)
	ParseRefresh(value string) (models.RefreshClaims, error)
	ExtractUnverifiedID(value string) (string, error)
}

type Config struct {
	// Hasher to use during user registration or login process
	// BcryptHasher with BcryptCost if not set
	Hasher     PasswordHasher
	BcryptCost int

	// Access token is read from header like 'Authorization: Bearer <token>'
	AccessHeaderName string
	AccessAuthScheme string

	// Refresh token cookie
	RefreshCookieName string
	RefreshCookiePath string

	// Set Secure flag on refresh cookie. Must be on in production
	RefreshCookieSecure bool

	Logger logger.Logger
}

// Session coordinator: register, login, refresh rotation, logout and access verification
type AuthService struct {
	tokens  TokenManager
	storage repository.Storage

	hasher PasswordHasher

	// Hash compared when user is absent so login takes the same effort
	dummyHash string

	accessHeaderName    string
	accessAuthScheme    string
	refreshCookieName   string
	refreshCookiePath   string
	refreshCookieSecure bool

	logger logger.Logger
}

func NewService(cfg Config, tokens TokenManager, storage repository.Storage) (*AuthService, error) {
	setDefault := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefault(&cfg.AccessHeaderName, defaultAccessHeaderName)
	setDefault(&cfg.AccessAuthScheme, defaultAccessAuthScheme)
	setDefault(&cfg.RefreshCookieName, defaultRefreshCookieName)
	setDefault(&cfg.RefreshCookiePath, defaultRefreshCookiePath)

	if cfg.Hasher == nil {
		hasher, err := NewBcryptHasher(cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		cfg.Hasher = hasher
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	dummyHash, err := cfg.Hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("can't prepare dummy password hash: %w", err)
	}

	return &AuthService{
		tokens:              tokens,
		storage:             storage,
		hasher:              cfg.Hasher,
		dummyHash:           dummyHash,
		accessHeaderName:    cfg.AccessHeaderName,
		accessAuthScheme:    cfg.AccessAuthScheme,
		refreshCookieName:   cfg.RefreshCookieName,
		refreshCookiePath:   cfg.RefreshCookiePath,
		refreshCookieSecure: cfg.RefreshCookieSecure,
		logger:              cfg.Logger,
	}, nil
}

// Create user with default 'member' role. No token is issued
func (s *AuthService) Register(ctx context.Context, email string, password string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, error=%w", err)
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error

		user, err = st.User().CreateUser(ctx, models.NormalizeEmail(email), hash)
		if err != nil {
			return err
		}

		return st.Role().AssignRole(ctx, user.ID, models.RoleMember)
	})

	return user, err
}

// Authenticate by email and password and issue new token pair
// Any failure except storage ones is apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetUserByEmail(ctx, models.NormalizeEmail(email))
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		s.logger.Debug("login failed", "reason", "user not found")
		return pair, apperrors.ErrInvalidCredentials
	case err != nil:
		return pair, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login failed", "reason", "wrong password", "user_id", user.ID)
		return pair, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Debug("login failed", "reason", "inactive user", "user_id", user.ID)
		return pair, apperrors.ErrInvalidCredentials
	}

	return s.issuePair(ctx, s.storage, user.ID)
}

// Rotate refresh token: the presented one is revoked and a new pair is issued
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	if refresh == "" {
		return pair, apperrors.ErrMissingToken
	}

	claims, err := s.tokens.ParseRefresh(refresh)
	if err != nil {
		s.logger.Debug("refresh failed", "error", err)
		return pair, err
	}

	revoked, err := s.storage.Revocation().IsRevoked(ctx, claims.ID)
	switch {
	case err != nil:
		return pair, err
	case revoked:
		s.logger.Warn("revoked refresh token presented", "jti", claims.ID, "user_id", claims.UserID)
		return pair, apperrors.ErrRevokedToken
	}

	inactive := false
	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		// Compare-and-set: only one concurrent caller inserts the identifier
		ok, err := st.Revocation().Revoke(ctx, claims.ID, models.RevokeReasonRotated)
		switch {
		case err != nil:
			return err
		case !ok:
			return apperrors.ErrRevokedToken
		}

		user, err := st.User().GetUserByID(ctx, claims.UserID)
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			return apperrors.ErrInvalidToken
		case err != nil:
			return err
		case !user.IsActive:
			// Keep the token consumed
			inactive = true
			return nil
		}

		pair, err = s.issuePair(ctx, st, user.ID)
		return err
	})
	switch {
	case err != nil:
		if errors.Is(err, apperrors.ErrRevokedToken) {
			s.logger.Warn("refresh token replay", "jti", claims.ID, "user_id", claims.UserID)
		}
		return models.TokenPair{}, err
	case inactive:
		s.logger.Debug("refresh failed", "reason", "inactive user", "user_id", claims.UserID)
		return models.TokenPair{}, apperrors.ErrInactiveUser
	}

	return pair, nil
}

// Revoke refresh token if any. Never fails from the caller point of view
func (s *AuthService) Logout(ctx context.Context, refresh string) {
	if refresh == "" {
		return
	}

	jti, err := s.tokens.ExtractUnverifiedID(refresh)
	if err != nil {
		s.logger.Debug("logout with unreadable token", "error", err)
		return
	}

	if _, err := s.storage.Revocation().Revoke(ctx, jti, models.RevokeReasonLogout); err != nil {
		s.logger.Warn("failed to revoke token on logout", "jti", jti, "error", err)
	}
}

// Verify access token and return its claims. Revocation ledger is not consulted
func (s *AuthService) VerifyAccess(ctx context.Context, access string) (models.AccessClaims, error) {
	if access == "" {
		return models.AccessClaims{}, apperrors.ErrMissingToken
	}

	return s.tokens.ParseAccess(access)
}

func (s *AuthService) issuePair(ctx context.Context, st repository.Storage, userID uuid.UUID) (models.TokenPair, error) {
	roles, err := st.Role().GetUserRoles(ctx, userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(userID, roles)
	if err != nil {
		return pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, nil
}
