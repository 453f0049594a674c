package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/logger"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/security"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the email/password pair did not
	// resolve to an account. Callers must not reveal which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account exists but is disabled.
	ErrInactiveAccount = errors.New("account is disabled")
	// ErrInvalidRefreshToken covers malformed, unknown, expired, and
	// revoked refresh tokens alike.
	ErrInvalidRefreshToken = errors.New("refresh token is invalid or revoked")
	// ErrExpiredAccessToken indicates the access token elapsed its lifetime.
	ErrExpiredAccessToken = errors.New("access token expired")
	// ErrInvalidAccessToken indicates signature or claim validation failed.
	ErrInvalidAccessToken = errors.New("access token invalid")
)

// AuthService implements login, token refresh, and revocation.
type AuthService struct {
	users       port.UserRepository
	tokens      port.TokenRepository
	blacklist   port.TokenBlacklist
	permissions port.PermissionRepository
	hasher      port.PasswordHasher
	jwt         *security.JWTManager
	events      port.EventPublisher
	log         *zap.Logger
	now         func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users port.UserRepository,
	tokens port.TokenRepository,
	blacklist port.TokenBlacklist,
	permissions port.PermissionRepository,
	hasher port.PasswordHasher,
	jwtManager *security.JWTManager,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		blacklist:   blacklist,
		permissions: permissions,
		hasher:      hasher,
		jwt:         jwtManager,
		events:      events,
		log:         log,
		now:         time.Now,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// LoginResult carries the issued token pair and the authenticated identity.
type LoginResult struct {
	User             domain.User
	Permissions      []domain.Permission
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Login authenticates the email/password pair and issues a token pair.
// A wrong email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string, ip, userAgent *string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	accessToken, accessClaims, err := s.jwt.SignAccessToken(*user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshClaims, err := s.jwt.SignRefreshToken(user.ID, "")
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	record := domain.RefreshToken{
		JTI:       refreshClaims.ID,
		UserID:    user.ID,
		TokenHash: security.HashToken(refreshToken),
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: refreshClaims.IssuedAt.Time,
		ExpiresAt: refreshClaims.ExpiresAt.Time,
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	permissions, err := s.permissions.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list user permissions: %w", err)
	}

	s.log.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return &LoginResult{
		User:             *user,
		Permissions:      permissions,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

// RefreshResult carries the newly minted access token. The refresh token
// itself is not rotated; the one presented stays valid until it expires
// or is revoked.
type RefreshResult struct {
	AccessToken     string
	AccessExpiresAt time.Time
}

// Refresh validates the presented refresh token and issues a fresh
// access token.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*RefreshResult, error) {
	claims, err := s.jwt.ParseRefreshToken(rawToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	// The cache answers the common revoked case quickly; on cache
	// trouble the database row remains authoritative.
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn("revocation cache unavailable, falling back to store", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}

	stored, err := s.tokens.GetByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	if stored.TokenHash != security.HashToken(rawToken) {
		return nil, ErrInvalidRefreshToken
	}
	if !stored.IsActive(s.now().UTC()) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup token owner: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	accessToken, accessClaims, err := s.jwt.SignAccessToken(*user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &RefreshResult{
		AccessToken:     accessToken,
		AccessExpiresAt: accessClaims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the presented refresh token. Revoking a token twice
// fails with ErrInvalidRefreshToken.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.jwt.ParseRefreshToken(rawToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}

	now := s.now().UTC()

	revoked, err := s.tokens.Revoke(ctx, claims.ID, now)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if !revoked {
		return ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		if ttl := claims.ExpiresAt.Time.Sub(now); ttl > 0 {
			if err := s.blacklist.MarkRevoked(ctx, claims.ID, ttl); err != nil {
				s.log.Warn("cache refresh token revocation", zap.Error(err))
			}
		}
	}

	if s.events != nil {
		event := domain.TokenRevokedEvent{
			JTI:       claims.ID,
			UserID:    claims.UserID,
			ExpiresAt: claims.ExpiresAt.Time,
			RevokedAt: now,
		}
		if err := s.events.PublishTokenRevoked(ctx, event); err != nil {
			s.log.Warn("publish token revoked event", zap.Error(err))
		}
	}

	s.log.Info("user logged out", zap.String("user_id", claims.UserID))

	return nil
}

// Authenticate validates an access token and returns its claims.
func (s *AuthService) Authenticate(_ context.Context, accessToken string) (*security.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredAccessToken
		}
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}
