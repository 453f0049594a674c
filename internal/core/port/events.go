package port

import (
	"context"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
)

// EventPublisher publishes security events to the message bus. Publishing
// is best-effort; callers never fail the primary operation on an error.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishRoleAssigned(ctx context.Context, event domain.RoleAssignedEvent) error
	PublishRoleRevoked(ctx context.Context, event domain.RoleRevokedEvent) error
	PublishTokenRevoked(ctx context.Context, event domain.TokenRevokedEvent) error
}
