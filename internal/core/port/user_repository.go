package port

import (
	"context"
	"time"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Search   string
	UserType *domain.UserType
	IsActive *bool
}

// UserRepository handles user persistence.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail matches the address case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) error
	// UpdatePassword stores a new hash and raises the password_changed flag.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLanguage(ctx context.Context, userID, language string) error
	// TouchActivity updates last_activity and, when different, last_ip.
	TouchActivity(ctx context.Context, userID string, at time.Time, ip *string) error
}
