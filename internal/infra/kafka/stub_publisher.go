package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when
// the broker is disabled, typically in development.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a log-only event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

func (p *StubPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	p.logEvent(eventUserCreated, event.UserID, event.CreatedAt, map[string]any{
		"email":      event.Email,
		"user_type":  event.UserType,
		"created_by": event.CreatedBy,
	})
	return nil
}

func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent(eventPasswordChanged, event.UserID, event.ChangedAt, map[string]any{
		"changed_by": event.ChangedBy,
	})
	return nil
}

func (p *StubPublisher) PublishRoleAssigned(_ context.Context, event domain.RoleAssignedEvent) error {
	p.logEvent(eventRoleAssigned, event.UserID, event.AssignedAt, map[string]any{
		"role_id":     event.RoleID,
		"role_name":   event.RoleName,
		"assigned_by": event.AssignedBy,
	})
	return nil
}

func (p *StubPublisher) PublishRoleRevoked(_ context.Context, event domain.RoleRevokedEvent) error {
	p.logEvent(eventRoleRevoked, event.UserID, event.RevokedAt, map[string]any{
		"role_id":    event.RoleID,
		"role_name":  event.RoleName,
		"revoked_by": event.RevokedBy,
	})
	return nil
}

func (p *StubPublisher) PublishTokenRevoked(_ context.Context, event domain.TokenRevokedEvent) error {
	p.logEvent(eventTokenRevoked, event.UserID, event.RevokedAt, map[string]any{
		"jti":        event.JTI,
		"expires_at": event.ExpiresAt,
	})
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
