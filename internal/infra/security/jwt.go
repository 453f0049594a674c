package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

// ErrKeyIDMissing indicates no kid header is present on a token.
var ErrKeyIDMissing = errors.New("jwt: missing key identifier")

// ErrWrongTokenType indicates a token was presented to a parser for the
// other token class. Each class must only be accepted by its own parser;
// a refresh token is never a bearer credential.
var ErrWrongTokenType = errors.New("jwt: wrong token type")

// AccessTokenClaims carries the identity context an authenticated request
// needs without a database round trip.
type AccessTokenClaims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email,omitempty"`
	UserType  string `json:"user_type"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// IsAccess reports whether the claims describe an access token.
func (c AccessTokenClaims) IsAccess() bool {
	return c.TokenType == accessTokenType
}

// RefreshTokenClaims identifies an individually revocable refresh token.
type RefreshTokenClaims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// IsRefresh reports whether the claims describe a refresh token.
func (c RefreshTokenClaims) IsRefresh() bool {
	return c.TokenType == refreshTokenType
}

// JWTManager signs and parses RS256 tokens with kid-based key lookup.
type JWTManager struct {
	provider   KeyProvider
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTManager constructs a JWTManager for the supplied key provider.
func NewJWTManager(provider KeyProvider, issuer string, accessTTL, refreshTTL time.Duration) *JWTManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}
	return &JWTManager{
		provider:   provider,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the time source, primarily for tests.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	if now != nil {
		m.now = now
	}
	return m
}

// AccessTokenTTL returns the configured access token lifetime.
func (m *JWTManager) AccessTokenTTL() time.Duration {
	return m.accessTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (m *JWTManager) RefreshTokenTTL() time.Duration {
	return m.refreshTTL
}

// SignAccessToken issues a short-lived access token for the user.
func (m *JWTManager) SignAccessToken(user domain.User) (string, *AccessTokenClaims, error) {
	now := m.now().UTC()

	claims := &AccessTokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		UserType:  string(user.UserType),
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := m.sign(claims)
	if err != nil {
		return "", nil, err
	}

	return signed, claims, nil
}

// SignRefreshToken issues a long-lived refresh token with the supplied jti.
func (m *JWTManager) SignRefreshToken(userID, jti string) (string, *RefreshTokenClaims, error) {
	if strings.TrimSpace(jti) == "" {
		jti = uuid.NewString()
	}
	now := m.now().UTC()

	claims := &RefreshTokenClaims{
		UserID:    userID,
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
			ID:        jti,
		},
	}

	signed, err := m.sign(claims)
	if err != nil {
		return "", nil, err
	}

	return signed, claims, nil
}

func (m *JWTManager) sign(claims jwt.Claims) (string, error) {
	signingKey, err := m.provider.GetSigningKey()
	if err != nil {
		return "", fmt.Errorf("jwt: get signing key: %w", err)
	}

	kid := m.provider.SigningKID()
	if kid == "" {
		return "", ErrKeyIDMissing
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// ParseAccessToken validates the signature and registered claims of an
// access token and enforces the access token type marker.
func (m *JWTManager) ParseAccessToken(tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if !claims.IsAccess() {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ParseRefreshToken validates the signature and registered claims of a
// refresh token and enforces the refresh token type marker.
func (m *JWTManager) ParseRefreshToken(tokenString string) (*RefreshTokenClaims, error) {
	claims := &RefreshTokenClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if !claims.IsRefresh() {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (m *JWTManager) parse(tokenString string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("jwt: unexpected signing method %v", token.Header["alg"])
		}

		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, ErrKeyIDMissing
		}

		return m.provider.GetVerificationKey(kid)
	}, jwt.WithTimeFunc(func() time.Time { return m.now().UTC() }))
	if err != nil {
		return err
	}

	if !parsed.Valid {
		return jwt.ErrTokenUnverifiable
	}

	return nil
}
