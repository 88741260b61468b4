package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Token types carried in the "token_type" claim
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrWrongType    = errors.New("unexpected token type")
)

// Claims issued for both access and refresh tokens
type Claims struct {
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	jwtlib.RegisteredClaims
}

// UserID returns the numeric subject
func (c *Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

// Creator issues and verifies HS256 tokens
type Creator struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewCreator creates a new JWT creator
func NewCreator(secret []byte, accessExpiry, refreshExpiry time.Duration) (*Creator, error) {
	if len(secret) == 0 {
		return nil, errors.New("[NewCreator] secret is required")
	}
	if accessExpiry <= 0 || refreshExpiry <= 0 {
		return nil, errors.New("[NewCreator] expiry durations must be positive")
	}
	return &Creator{
		secret:        secret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}, nil
}

// CreateAccessToken creates a short-lived access token for a user
func (c *Creator) CreateAccessToken(userID int, role string) (string, error) {
	return c.create(userID, role, TypeAccess, c.accessExpiry)
}

// CreateRefreshToken creates a long-lived refresh token for a user
func (c *Creator) CreateRefreshToken(userID int) (string, error) {
	return c.create(userID, "", TypeRefresh, c.refreshExpiry)
}

// CreateExpiredAccessToken returns an access token whose expiry is already in the past
func (c *Creator) CreateExpiredAccessToken(userID int, role string) (string, error) {
	return c.create(userID, role, TypeAccess, -time.Minute)
}

func (c *Creator) create(userID int, role, tokenType string, expiry time.Duration) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and token type. Expired tokens report ErrTokenExpired.
func (c *Creator) Verify(raw, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (any, error) {
		return c.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongType
	}
	return claims, nil
}
