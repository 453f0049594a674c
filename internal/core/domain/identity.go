package domain

import (
	"strings"
	"time"
)

// UserType is an advisory classification of an account. It drives the
// coarse access-control gate (admin/staff endpoints) but is not the
// source of truth for fine-grained permissions.
type UserType string

const (
	UserTypeAdmin UserType = "admin"
	UserTypeStaff UserType = "staff"
	UserTypeUser  UserType = "user"
)

// ParseUserType normalises textual input into a supported user type,
// defaulting to the plain user classification.
func ParseUserType(value string) UserType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(UserTypeAdmin):
		return UserTypeAdmin
	case string(UserTypeStaff):
		return UserTypeStaff
	default:
		return UserTypeUser
	}
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID              string
	Email           string
	Username        *string
	FirstName       string
	LastName        string
	UserType        UserType
	PasswordHash    string
	PasswordChanged bool
	Language        string
	Timezone        string
	IsActive        bool
	IsStaff         bool
	IsSuperuser     bool
	DateJoined      time.Time
	LastActivity    *time.Time
	LastIP          *string
}

// FullName joins the first and last name, tolerating a missing last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ApplyTypeFlags derives the is_staff/is_superuser flags from the user type.
func (u *User) ApplyTypeFlags() {
	switch u.UserType {
	case UserTypeAdmin:
		u.IsStaff = true
		u.IsSuperuser = true
	case UserTypeStaff:
		u.IsStaff = true
		u.IsSuperuser = false
	default:
		u.IsStaff = false
		u.IsSuperuser = false
	}
}

// Touch updates last-activity metadata. LastIP only changes when the
// supplied address differs from the stored one.
func (u *User) Touch(at time.Time, ip *string) {
	timeCopy := at
	u.LastActivity = &timeCopy

	if ip != nil && *ip != "" {
		if u.LastIP == nil || *u.LastIP != *ip {
			ipCopy := *ip
			u.LastIP = &ipCopy
		}
	}
}

// Actor identifies the user a request is attributed to, for both
// authorization checks and audit records. It is passed explicitly through
// the call chain; there is no ambient per-request global.
type Actor struct {
	ID       string
	Email    string
	UserType UserType
	Language string
}

// IsAdmin reports whether the actor carries the admin classification.
func (a Actor) IsAdmin() bool {
	return a.UserType == UserTypeAdmin
}

// IsStaff reports whether the actor carries the staff classification.
func (a Actor) IsStaff() bool {
	return a.UserType == UserTypeStaff
}

// Is reports whether the actor is the user with the supplied identifier.
func (a Actor) Is(userID string) bool {
	return a.ID != "" && a.ID == userID
}

// ActorFromUser builds the request-scoped actor view of a user row.
func ActorFromUser(u User) Actor {
	return Actor{
		ID:       u.ID,
		Email:    u.Email,
		UserType: u.UserType,
		Language: u.Language,
	}
}
