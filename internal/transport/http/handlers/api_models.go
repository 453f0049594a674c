package handlers

import (
	"time"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token for renewal or revocation.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// LoginResponse is the data section of a successful login.
type LoginResponse struct {
	Access  string           `json:"access"`
	Refresh string           `json:"refresh"`
	User    LoginUserSummary `json:"user"`
}

// LoginUserSummary is the identity block embedded in the login response.
type LoginUserSummary struct {
	ID          string               `json:"id"`
	Email       string               `json:"email"`
	FirstName   string               `json:"first_name"`
	LastName    string               `json:"last_name"`
	UserType    string               `json:"user_type"`
	Language    string               `json:"language"`
	Permissions []PermissionResponse `json:"permissions"`
}

// RefreshResponse is the data section of a token renewal.
type RefreshResponse struct {
	Access string `json:"access"`
}

// CreateUserRequest is the account-provisioning payload.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserType  string `json:"user_type"`
	Language  string `json:"language"`
	Timezone  string `json:"timezone"`
}

// UpdateUserRequest carries partial profile changes; absent fields keep
// their stored values.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	UserType  *string `json:"user_type"`
	Language  *string `json:"language"`
	Timezone  *string `json:"timezone"`
	IsActive  *bool   `json:"is_active"`
}

// ChangePasswordRequest carries a credential rotation.
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password" binding:"required"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
}

// ChangeLanguageRequest updates the interface language preference.
type ChangeLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

// UserResponse mirrors a stored account.
type UserResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     *string    `json:"username,omitempty"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	FullName     string     `json:"full_name"`
	UserType     string     `json:"user_type"`
	Language     string     `json:"language"`
	Timezone     string     `json:"timezone"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	DateJoined   time.Time  `json:"date_joined"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

func newUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		FullName:     user.FullName(),
		UserType:     string(user.UserType),
		Language:     user.Language,
		Timezone:     user.Timezone,
		IsActive:     user.IsActive,
		IsStaff:      user.IsStaff,
		IsSuperuser:  user.IsSuperuser,
		DateJoined:   user.DateJoined,
		LastActivity: user.LastActivity,
	}
}

func newUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, newUserResponse(user))
	}
	return out
}

// RoleRequest creates or renames a role and replaces its permission set.
type RoleRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// RoleMembershipRequest links or unlinks a user and a role.
type RoleMembershipRequest struct {
	UserID string `json:"user_id" binding:"required"`
	RoleID string `json:"role_id" binding:"required"`
}

// RoleResponse mirrors a role row with its aggregate member count.
type RoleResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserCount int    `json:"user_count"`
}

// RoleDetailResponse extends RoleResponse with the permission set.
type RoleDetailResponse struct {
	RoleResponse
	Permissions []string `json:"permissions"`
}

func newRoleResponse(role domain.Role) RoleResponse {
	return RoleResponse{ID: role.ID, Name: role.Name, UserCount: role.UserCount}
}

func newRoleDetailResponse(detail usecase.RoleDetail) RoleDetailResponse {
	permissions := detail.PermissionIDs
	if permissions == nil {
		permissions = []string{}
	}
	return RoleDetailResponse{
		RoleResponse: newRoleResponse(detail.Role),
		Permissions:  permissions,
	}
}

// PermissionNamesRequest resolves permission ids to display names.
type PermissionNamesRequest struct {
	PermissionIDs []string `json:"permission_ids"`
}

// PermissionResponse mirrors a catalog entry with its localized name.
type PermissionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newPermissionResponses(permissions []domain.Permission) []PermissionResponse {
	out := make([]PermissionResponse, 0, len(permissions))
	for _, p := range permissions {
		out = append(out, PermissionResponse{ID: p.ID, Name: p.Name})
	}
	return out
}

// AccessLogResponse mirrors an audit trail row.
type AccessLogResponse struct {
	ID         string    `json:"id"`
	UserID     *string   `json:"user_id,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Action     string    `json:"action"`
	StatusCode int       `json:"status_code"`
	Message    string    `json:"message"`
	IPAddress  *string   `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent"`
	ObjectID   *string   `json:"object_id,omitempty"`
	ObjectType *string   `json:"object_type,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func newAccessLogResponse(entry domain.AccessLog) AccessLogResponse {
	return AccessLogResponse{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Method:     entry.Method,
		Path:       entry.Path,
		Action:     entry.Action,
		StatusCode: entry.StatusCode,
		Message:    entry.Message,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		ObjectID:   entry.ObjectID,
		ObjectType: entry.ObjectType,
		CreatedAt:  entry.CreatedAt,
	}
}

func newAccessLogResponses(entries []domain.AccessLog) []AccessLogResponse {
	out := make([]AccessLogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, newAccessLogResponse(entry))
	}
	return out
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
