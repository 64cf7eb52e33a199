package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 14 * 24 * time.Hour
	signingMethod          = "HS256"
)

// Payload of both token types
// Roles is empty for refresh tokens
type tokenClaims struct {
	jwt.RegisteredClaims
	Type  string   `json:"typ"`
	Roles []string `json:"roles,omitempty"`
}

// Token manager with sensible default
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Clock used to issue and verify tokens
	// time.Now if not set
	Now func() time.Time
}

type TokenManager struct {
	key []byte

	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time

	parser *jwt.Parser
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		key:        []byte(cfg.SecretKey),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signingMethod}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(cfg.Now),
		),
	}, nil
}

// Issue access token with roles snapshot
func (m *TokenManager) IssueAccess(userID uuid.UUID, roles []string) (models.IssuedToken, error) {
	if roles == nil {
		roles = []string{}
	}
	token, _, err := m.issue(userID, models.TokenTypeAccess, m.accessTTL, roles)
	return token, err
}

// Issue refresh token. The returned identifier is the revocation key
func (m *TokenManager) IssueRefresh(userID uuid.UUID) (models.IssuedToken, string, error) {
	return m.issue(userID, models.TokenTypeRefresh, m.refreshTTL, nil)
}

func (m *TokenManager) IssuePair(userID uuid.UUID, roles []string) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := m.IssueAccess(userID, roles)
	if err != nil {
		return pair, err
	}

	refresh, _, err := m.IssueRefresh(userID)
	if err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) issue(userID uuid.UUID, typ string, ttl time.Duration, roles []string) (models.IssuedToken, string, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)
	id := uuid.NewString()

	token := jwt.NewWithClaims(
		jwt.GetSigningMethod(signingMethod),
		tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        id,
				Subject:   userID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Type:  typ,
			Roles: roles,
		},
	)

	signed, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, "", fmt.Errorf("error while signing %s token. Err: %w", typ, err)
	}

	return models.IssuedToken{Value: signed, IssuedAt: now, ExpiresAt: expiresAt}, id, nil
}

// Parse and validate access token
func (m *TokenManager) ParseAccess(value string) (models.AccessClaims, error) {
	claims, userID, err := m.parse(value, models.TokenTypeAccess)
	if err != nil {
		return models.AccessClaims{}, err
	}

	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}

	return models.AccessClaims{
		UserID:    userID,
		Roles:     roles,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Parse and validate refresh token
func (m *TokenManager) ParseRefresh(value string) (models.RefreshClaims, error) {
	claims, userID, err := m.parse(value, models.TokenTypeRefresh)
	if err != nil {
		return models.RefreshClaims{}, err
	}

	return models.RefreshClaims{
		UserID:    userID,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (m *TokenManager) parse(value string, typ string) (*tokenClaims, uuid.UUID, error) {
	claims := &tokenClaims{}

	_, err := m.parser.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	if claims.Type != typ {
		return nil, uuid.Nil, fmt.Errorf("%w: expected %s token, got %q", apperrors.ErrInvalidToken, typ, claims.Type)
	}

	if claims.ID == "" {
		return nil, uuid.Nil, fmt.Errorf("%w: token has no identifier", apperrors.ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: bad subject: %w", apperrors.ErrInvalidToken, err)
	}

	return claims, userID, nil
}

// Read token identifier without checking signature or expiry
// Must not be used to authenticate anybody
func (m *TokenManager) ExtractUnverifiedID(value string) (string, error) {
	claims := &tokenClaims{}

	_, _, err := m.parser.ParseUnverified(value, claims)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return "", fmt.Errorf("%w: token has no identifier", apperrors.ErrInvalidToken)
	}

	return claims.ID, nil
}
