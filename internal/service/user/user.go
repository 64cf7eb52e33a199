package user

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
	"github.com/nkiryanov/library/internal/service/auth"
)

var knownRoles = []string{models.RoleAdmin, models.RoleMember}

// Account administration
type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

// Create admin account if there is no user with such email
// Existing user is left untouched
func (s *UserService) EnsureAdmin(ctx context.Context, email string, password string) (user models.User, created bool, err error) {
	email = models.NormalizeEmail(email)

	user, err = s.storage.User().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return user, false, nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return user, false, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, false, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error

		user, err = st.User().CreateUser(ctx, email, hash)
		if err != nil {
			return err
		}

		for _, role := range knownRoles {
			if err := st.Role().AssignRole(ctx, user.ID, role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return user, false, fmt.Errorf("can't create admin. Err: %w", err)
	}

	return user, true, nil
}

// Deactivated user can't login or refresh tokens
// Access tokens already issued stay valid until expiry
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().SetActive(ctx, userID, false)
}

func (s *UserService) Activate(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().SetActive(ctx, userID, true)
}

// Roles granted or revoked are visible in tokens issued after next login or refresh
func (s *UserService) GrantRole(ctx context.Context, userID uuid.UUID, role string) ([]string, error) {
	if !slices.Contains(knownRoles, role) {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	if err := s.storage.Role().AssignRole(ctx, userID, role); err != nil {
		return nil, err
	}

	return s.storage.Role().GetUserRoles(ctx, userID)
}

func (s *UserService) RevokeRole(ctx context.Context, userID uuid.UUID, role string) ([]string, error) {
	if _, err := s.storage.User().GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.storage.Role().UnassignRole(ctx, userID, role); err != nil {
		return nil, err
	}

	return s.storage.Role().GetUserRoles(ctx, userID)
}

// Put refresh token identifier into revocation ledger by hand
// Return false if it was already there
func (s *UserService) RevokeToken(ctx context.Context, tokenID string) (bool, error) {
	return s.storage.Revocation().Revoke(ctx, tokenID, models.RevokeReasonManual)
}
