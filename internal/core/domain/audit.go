package domain

import "time"

// AccessLog is an immutable audit record of a sensitive action outcome.
// Rows are written once, after the triggering request has completed, and
// are never updated or deleted by this service.
type AccessLog struct {
	ID         string
	UserID     *string
	Method     string
	Path       string
	Action     string
	StatusCode int
	Message    string
	IPAddress  *string
	UserAgent  string
	ObjectID   *string
	ObjectType *string
	CreatedAt  time.Time
}

// SecurityEvent kinds published to the message bus alongside audit rows.
type (
	// UserCreatedEvent is emitted after a new account is provisioned.
	UserCreatedEvent struct {
		EventID   string
		UserID    string
		Email     string
		UserType  UserType
		CreatedBy string
		CreatedAt time.Time
	}

	// PasswordChangedEvent is emitted after a credential change commits.
	PasswordChangedEvent struct {
		EventID   string
		UserID    string
		ChangedBy string
		ChangedAt time.Time
	}

	// RoleAssignedEvent is emitted when a role is granted to a user.
	RoleAssignedEvent struct {
		EventID    string
		UserID     string
		RoleID     string
		RoleName   string
		AssignedBy string
		AssignedAt time.Time
	}

	// RoleRevokedEvent is emitted when a role is removed from a user.
	RoleRevokedEvent struct {
		EventID   string
		UserID    string
		RoleID    string
		RoleName  string
		RevokedBy string
		RevokedAt time.Time
	}

	// TokenRevokedEvent is emitted when a refresh token is blacklisted.
	TokenRevokedEvent struct {
		EventID   string
		JTI       string
		UserID    string
		ExpiresAt time.Time
		RevokedAt time.Time
	}
)
