package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

// In-memory fakes for the persistence and messaging ports.

type userRepoMock struct {
	users     map[string]domain.User
	createErr error
	updateErr error
	touchErr  error
	touched   int
}

func (m *userRepoMock) put(user domain.User) {
	if m.users == nil {
		m.users = make(map[string]domain.User)
	}
	m.users[user.ID] = user
}

func (m *userRepoMock) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	m.put(user)
	return nil
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) List(_ context.Context, _ port.UserFilter) ([]domain.User, error) {
	users := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *userRepoMock) Update(_ context.Context, user domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range m.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	m.put(user)
	return nil
}

func (m *userRepoMock) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.PasswordChanged = true
	m.put(user)
	return nil
}

func (m *userRepoMock) UpdateLanguage(_ context.Context, userID, language string) error {
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.Language = language
	m.put(user)
	return nil
}

func (m *userRepoMock) TouchActivity(_ context.Context, userID string, at time.Time, ip *string) error {
	if m.touchErr != nil {
		return m.touchErr
	}
	user, ok := m.users[userID]
	if !ok {
		return nil
	}
	user.Touch(at, ip)
	m.put(user)
	m.touched++
	return nil
}

type roleRepoMock struct {
	roles       map[string]domain.Role
	permissions map[string][]string
	members     map[string]map[string]struct{}
}

func (m *roleRepoMock) ensure() {
	if m.roles == nil {
		m.roles = make(map[string]domain.Role)
	}
	if m.permissions == nil {
		m.permissions = make(map[string][]string)
	}
	if m.members == nil {
		m.members = make(map[string]map[string]struct{})
	}
}

func (m *roleRepoMock) Create(_ context.Context, role domain.Role, permissionIDs []string) error {
	m.ensure()
	for _, existing := range m.roles {
		if existing.Name == role.Name {
			return repository.ErrDuplicate
		}
	}
	m.roles[role.ID] = role
	m.permissions[role.ID] = append([]string(nil), permissionIDs...)
	return nil
}

func (m *roleRepoMock) List(_ context.Context) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(m.roles))
	for id, role := range m.roles {
		role.UserCount = len(m.members[id])
		roles = append(roles, role)
	}
	return roles, nil
}

func (m *roleRepoMock) GetByID(_ context.Context, id string) (*domain.Role, error) {
	if role, ok := m.roles[id]; ok {
		role.UserCount = len(m.members[id])
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoMock) GetByName(_ context.Context, name string) (*domain.Role, error) {
	for id, role := range m.roles {
		if role.Name == name {
			role.UserCount = len(m.members[id])
			return &role, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoMock) Update(_ context.Context, role domain.Role, permissionIDs []string) error {
	m.ensure()
	if _, ok := m.roles[role.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range m.roles {
		if id != role.ID && existing.Name == role.Name {
			return repository.ErrDuplicate
		}
	}
	m.roles[role.ID] = role
	if permissionIDs != nil {
		m.permissions[role.ID] = append([]string(nil), permissionIDs...)
	}
	return nil
}

func (m *roleRepoMock) Delete(_ context.Context, id string) error {
	if _, ok := m.roles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.roles, id)
	delete(m.permissions, id)
	delete(m.members, id)
	return nil
}

func (m *roleRepoMock) CountUsers(_ context.Context, roleID string) (int, error) {
	return len(m.members[roleID]), nil
}

func (m *roleRepoMock) PermissionIDs(_ context.Context, roleID string) ([]string, error) {
	return append([]string(nil), m.permissions[roleID]...), nil
}

func (m *roleRepoMock) AssignUser(_ context.Context, userID, roleID string) (bool, error) {
	m.ensure()
	if m.members[roleID] == nil {
		m.members[roleID] = make(map[string]struct{})
	}
	if _, ok := m.members[roleID][userID]; ok {
		return false, nil
	}
	m.members[roleID][userID] = struct{}{}
	return true, nil
}

func (m *roleRepoMock) UnassignUser(_ context.Context, userID, roleID string) (bool, error) {
	if _, ok := m.members[roleID][userID]; !ok {
		return false, nil
	}
	delete(m.members[roleID], userID)
	return true, nil
}

func (m *roleRepoMock) HasUser(_ context.Context, userID, roleID string) (bool, error) {
	_, ok := m.members[roleID][userID]
	return ok, nil
}

type permissionRepoMock struct {
	catalog map[string]domain.Permission
	byUser  map[string][]string
}

func (m *permissionRepoMock) ListByOwners(_ context.Context, owners []string) ([]domain.Permission, error) {
	allowed := make(map[string]struct{}, len(owners))
	for _, owner := range owners {
		allowed[owner] = struct{}{}
	}
	result := make([]domain.Permission, 0)
	for _, permission := range m.catalog {
		if _, ok := allowed[permission.Owner]; ok {
			result = append(result, permission)
		}
	}
	return result, nil
}

func (m *permissionRepoMock) GetByIDs(_ context.Context, ids []string) ([]domain.Permission, error) {
	result := make([]domain.Permission, 0, len(ids))
	for _, id := range ids {
		if permission, ok := m.catalog[id]; ok {
			result = append(result, permission)
		}
	}
	return result, nil
}

func (m *permissionRepoMock) ListByUser(_ context.Context, userID string) ([]domain.Permission, error) {
	result := make([]domain.Permission, 0)
	for _, id := range m.byUser[userID] {
		if permission, ok := m.catalog[id]; ok {
			result = append(result, permission)
		}
	}
	return result, nil
}

type tokenRepoMock struct {
	tokens    map[string]domain.RefreshToken
	createErr error
}

func (m *tokenRepoMock) Create(_ context.Context, token domain.RefreshToken) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.tokens == nil {
		m.tokens = make(map[string]domain.RefreshToken)
	}
	m.tokens[token.JTI] = token
	return nil
}

func (m *tokenRepoMock) GetByJTI(_ context.Context, jti string) (*domain.RefreshToken, error) {
	if token, ok := m.tokens[jti]; ok {
		return &token, nil
	}
	return nil, repository.ErrNotFound
}

func (m *tokenRepoMock) Revoke(_ context.Context, jti string, at time.Time) (bool, error) {
	token, ok := m.tokens[jti]
	if !ok || token.RevokedAt != nil {
		return false, nil
	}
	token.Revoke(at)
	m.tokens[jti] = token
	return true, nil
}

func (m *tokenRepoMock) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	count := 0
	for jti, token := range m.tokens {
		if token.ExpiresAt.Before(before) {
			delete(m.tokens, jti)
			count++
		}
	}
	return count, nil
}

type blacklistMock struct {
	revoked map[string]struct{}
	getErr  error
	setErr  error
}

func (m *blacklistMock) MarkRevoked(_ context.Context, jti string, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.revoked == nil {
		m.revoked = make(map[string]struct{})
	}
	m.revoked[jti] = struct{}{}
	return nil
}

func (m *blacklistMock) IsRevoked(_ context.Context, jti string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

type accessLogRepoMock struct {
	mu        sync.Mutex
	entries   []domain.AccessLog
	createErr error
}

func (m *accessLogRepoMock) Create(_ context.Context, entry domain.AccessLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *accessLogRepoMock) List(_ context.Context, _ port.AccessLogFilter) ([]domain.AccessLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AccessLog(nil), m.entries...), nil
}

func (m *accessLogRepoMock) GetByID(_ context.Context, id string) (*domain.AccessLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.ID == id {
			e := entry
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *accessLogRepoMock) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type publisherMock struct {
	userCreated     []domain.UserCreatedEvent
	passwordChanged []domain.PasswordChangedEvent
	roleAssigned    []domain.RoleAssignedEvent
	roleRevoked     []domain.RoleRevokedEvent
	tokenRevoked    []domain.TokenRevokedEvent
}

func (m *publisherMock) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	m.userCreated = append(m.userCreated, event)
	return nil
}

func (m *publisherMock) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	m.passwordChanged = append(m.passwordChanged, event)
	return nil
}

func (m *publisherMock) PublishRoleAssigned(_ context.Context, event domain.RoleAssignedEvent) error {
	m.roleAssigned = append(m.roleAssigned, event)
	return nil
}

func (m *publisherMock) PublishRoleRevoked(_ context.Context, event domain.RoleRevokedEvent) error {
	m.roleRevoked = append(m.roleRevoked, event)
	return nil
}

func (m *publisherMock) PublishTokenRevoked(_ context.Context, event domain.TokenRevokedEvent) error {
	m.tokenRevoked = append(m.tokenRevoked, event)
	return nil
}

// hasherMock avoids argon2 cost in tests; "hash:" + password stands in
// for the real encoding.
type hasherMock struct{}

func (hasherMock) Hash(password string) (string, error) {
	return "hash:" + password, nil
}

func (hasherMock) Verify(password, encoded string) (bool, error) {
	return encoded == "hash:"+password, nil
}
