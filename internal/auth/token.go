package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kingrain94/clinic-access-core/internal/domain"
)

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrMissingSecret    = errors.New("signing secret must not be empty")
)

// Claims are the session claims carried by a credential. They are signed,
// not encrypted: anyone holding the token can read them, so nothing secret
// may be placed here.
type Claims struct {
	UserID   string      `json:"user_id"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	TenantID string      `json:"tenant_id"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 session credentials with a single
// process-wide secret.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*TokenCodec)

// WithClock replaces the wall clock used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *TokenCodec) {
		c.now = now
	}
}

func NewTokenCodec(secret string, ttl time.Duration, opts ...Option) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	codec := &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}

	return codec, nil
}

// TTL returns the lifetime given to credentials issued without an explicit expiry.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs claims. Missing iat, exp and jti are filled from the codec clock.
func (c *TokenCodec) Issue(claims Claims) (string, error) {
	now := c.now()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// IssueForUser issues a credential describing user.
func (c *TokenCodec) IssueForUser(user *domain.User) (string, *Claims, error) {
	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: user.TenantIDValue(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID,
		},
	}

	token, err := c.Issue(claims)
	if err != nil {
		return "", nil, err
	}

	// Issue fills the registered claims on its own copy; decode to return them.
	verified, err := c.Verify(token)
	if err != nil {
		return "", nil, err
	}

	return token, verified, nil
}

// Verify checks the signature and then expiry. A token that cannot be
// decoded, uses another algorithm, or was signed with another key yields
// ErrInvalidSignature; a correctly signed token past exp yields ErrExpired.
// Tenant activity and role are not checked here.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidSignature
	}

	return claims, nil
}
