package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/config"
)

const schemaVersion = "1.0"

// Event type names published to the bus.
const (
	eventUserCreated     = "auth.user.created"
	eventPasswordChanged = "auth.user.password.changed"
	eventRoleAssigned    = "auth.role.assigned"
	eventRoleRevoked     = "auth.role.revoked"
	eventTokenRevoked    = "auth.token.revoked"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserCreated publishes auth.user.created events.
func (p *EventPublisher) PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		Email     string    `json:"email"`
		UserType  string    `json:"user_type"`
		CreatedBy string    `json:"created_by,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}{
		UserID:    event.UserID,
		Email:     event.Email,
		UserType:  string(event.UserType),
		CreatedBy: event.CreatedBy,
		CreatedAt: event.CreatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventUserCreated, event.UserID, event.CreatedAt, payload)
}

// PublishPasswordChanged publishes auth.user.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		ChangedBy string    `json:"changed_by,omitempty"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		UserID:    event.UserID,
		ChangedBy: event.ChangedBy,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventPasswordChanged, event.UserID, event.ChangedAt, payload)
}

// PublishRoleAssigned publishes auth.role.assigned events.
func (p *EventPublisher) PublishRoleAssigned(ctx context.Context, event domain.RoleAssignedEvent) error {
	payload := struct {
		UserID     string    `json:"user_id"`
		RoleID     string    `json:"role_id"`
		RoleName   string    `json:"role_name"`
		AssignedBy string    `json:"assigned_by,omitempty"`
		AssignedAt time.Time `json:"assigned_at"`
	}{
		UserID:     event.UserID,
		RoleID:     event.RoleID,
		RoleName:   event.RoleName,
		AssignedBy: event.AssignedBy,
		AssignedAt: event.AssignedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventRoleAssigned, event.UserID, event.AssignedAt, payload)
}

// PublishRoleRevoked publishes auth.role.revoked events.
func (p *EventPublisher) PublishRoleRevoked(ctx context.Context, event domain.RoleRevokedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		RoleID    string    `json:"role_id"`
		RoleName  string    `json:"role_name"`
		RevokedBy string    `json:"revoked_by,omitempty"`
		RevokedAt time.Time `json:"revoked_at"`
	}{
		UserID:    event.UserID,
		RoleID:    event.RoleID,
		RoleName:  event.RoleName,
		RevokedBy: event.RevokedBy,
		RevokedAt: event.RevokedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventRoleRevoked, event.UserID, event.RevokedAt, payload)
}

// PublishTokenRevoked publishes auth.token.revoked events.
func (p *EventPublisher) PublishTokenRevoked(ctx context.Context, event domain.TokenRevokedEvent) error {
	payload := struct {
		JTI       string    `json:"jti"`
		UserID    string    `json:"user_id"`
		ExpiresAt time.Time `json:"expires_at"`
		RevokedAt time.Time `json:"revoked_at"`
	}{
		JTI:       event.JTI,
		UserID:    event.UserID,
		ExpiresAt: event.ExpiresAt.UTC(),
		RevokedAt: event.RevokedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventTokenRevoked, event.UserID, event.RevokedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
