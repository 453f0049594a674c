package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

var (
	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleExists indicates a role with the provided name already exists.
	ErrRoleExists = errors.New("role already exists")
	// ErrRoleNameRequired indicates the trimmed role name was empty.
	ErrRoleNameRequired = errors.New("role name is required")
	// ErrRoleInUse blocks deletion of a role while users hold it.
	ErrRoleInUse = errors.New("role has users assigned")
	// ErrRoleAlreadyAssigned indicates the user already holds the role.
	ErrRoleAlreadyAssigned = errors.New("role already assigned to user")
	// ErrRoleNotAssigned indicates the user does not hold the role.
	ErrRoleNotAssigned = errors.New("role not assigned to user")
	// ErrUnknownPermission indicates a permission id did not resolve
	// against the catalog. The whole operation is rejected.
	ErrUnknownPermission = errors.New("unknown permission id")
)

// RoleService manages roles, their permission sets, and user membership.
type RoleService struct {
	roles       port.RoleRepository
	permissions port.PermissionRepository
	users       port.UserRepository
	events      port.EventPublisher
	log         *zap.Logger
	now         func() time.Time
}

// NewRoleService constructs a RoleService.
func NewRoleService(
	roles port.RoleRepository,
	permissions port.PermissionRepository,
	users port.UserRepository,
	events port.EventPublisher,
	log *zap.Logger,
) *RoleService {
	return &RoleService{
		roles:       roles,
		permissions: permissions,
		users:       users,
		events:      events,
		log:         log,
		now:         time.Now,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *RoleService) WithClock(now func() time.Time) *RoleService {
	if now != nil {
		s.now = now
	}
	return s
}

// RoleDetail pairs a role with its resolved permission identifiers.
type RoleDetail struct {
	Role          domain.Role
	PermissionIDs []string
}

// ListRoles returns all roles with member counts.
func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

// GetRole retrieves a role and its permission set.
func (s *RoleService) GetRole(ctx context.Context, id string) (*RoleDetail, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("lookup role: %w", err)
	}

	permissionIDs, err := s.roles.PermissionIDs(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	return &RoleDetail{Role: *role, PermissionIDs: permissionIDs}, nil
}

// CreateRole provisions a new role. The name is trimmed and must be
// unique (case-sensitive). Every permission id must resolve against the
// catalog or the whole request is rejected.
func (s *RoleService) CreateRole(ctx context.Context, actor domain.Actor, name string, permissionIDs []string) (*RoleDetail, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrRoleNameRequired
	}

	if existing, err := s.roles.GetByName(ctx, trimmed); err == nil && existing != nil {
		return nil, ErrRoleExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup role by name: %w", err)
	}

	resolved, err := s.resolvePermissionIDs(ctx, permissionIDs)
	if err != nil {
		return nil, err
	}

	role := domain.Role{ID: uuid.NewString(), Name: trimmed}
	if err := s.roles.Create(ctx, role, resolved); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.log.Info("role created",
		zap.String("role_id", role.ID),
		zap.String("name", role.Name),
		zap.String("created_by", actor.ID),
	)

	return &RoleDetail{Role: role, PermissionIDs: resolved}, nil
}

// UpdateRole renames a role and optionally replaces its permission set.
// A nil permissionIDs keeps the existing set; an empty one clears it.
func (s *RoleService) UpdateRole(ctx context.Context, actor domain.Actor, roleID, name string, permissionIDs []string) (*RoleDetail, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("lookup role: %w", err)
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrRoleNameRequired
	}

	// Uniqueness excludes the role being renamed.
	if existing, err := s.roles.GetByName(ctx, trimmed); err == nil && existing != nil && existing.ID != role.ID {
		return nil, ErrRoleExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup role by name: %w", err)
	}

	resolved := permissionIDs
	if permissionIDs != nil {
		resolved, err = s.resolvePermissionIDs(ctx, permissionIDs)
		if err != nil {
			return nil, err
		}
	}

	role.Name = trimmed
	if err := s.roles.Update(ctx, *role, resolved); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoleExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	finalIDs := resolved
	if finalIDs == nil {
		finalIDs, err = s.roles.PermissionIDs(ctx, role.ID)
		if err != nil {
			return nil, fmt.Errorf("list role permissions: %w", err)
		}
	}

	s.log.Info("role updated",
		zap.String("role_id", role.ID),
		zap.String("name", role.Name),
		zap.String("updated_by", actor.ID),
	)

	return &RoleDetail{Role: *role, PermissionIDs: finalIDs}, nil
}

// DeleteRole removes a role. Deletion is blocked while any user still
// holds the role.
func (s *RoleService) DeleteRole(ctx context.Context, actor domain.Actor, roleID string) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("lookup role: %w", err)
	}

	count, err := s.roles.CountUsers(ctx, role.ID)
	if err != nil {
		return fmt.Errorf("count role users: %w", err)
	}
	if count > 0 {
		return ErrRoleInUse
	}

	if err := s.roles.Delete(ctx, role.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("delete role: %w", err)
	}

	s.log.Info("role deleted",
		zap.String("role_id", role.ID),
		zap.String("name", role.Name),
		zap.String("deleted_by", actor.ID),
	)

	return nil
}

// AssignRole grants the role to a user. Assigning a role the user
// already holds fails.
func (s *RoleService) AssignRole(ctx context.Context, actor domain.Actor, userID, roleID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("lookup role: %w", err)
	}

	assigned, err := s.roles.AssignUser(ctx, user.ID, role.ID)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	if !assigned {
		return ErrRoleAlreadyAssigned
	}

	if s.events != nil {
		event := domain.RoleAssignedEvent{
			UserID:     user.ID,
			RoleID:     role.ID,
			RoleName:   role.Name,
			AssignedBy: actor.ID,
			AssignedAt: s.now().UTC(),
		}
		if err := s.events.PublishRoleAssigned(ctx, event); err != nil {
			s.log.Warn("publish role assigned event", zap.Error(err))
		}
	}

	return nil
}

// UnassignRole removes the role from a user. Removing a role the user
// does not hold fails.
func (s *RoleService) UnassignRole(ctx context.Context, actor domain.Actor, userID, roleID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("lookup role: %w", err)
	}

	removed, err := s.roles.UnassignUser(ctx, user.ID, role.ID)
	if err != nil {
		return fmt.Errorf("unassign role: %w", err)
	}
	if !removed {
		return ErrRoleNotAssigned
	}

	if s.events != nil {
		event := domain.RoleRevokedEvent{
			UserID:    user.ID,
			RoleID:    role.ID,
			RoleName:  role.Name,
			RevokedBy: actor.ID,
			RevokedAt: s.now().UTC(),
		}
		if err := s.events.PublishRoleRevoked(ctx, event); err != nil {
			s.log.Warn("publish role revoked event", zap.Error(err))
		}
	}

	return nil
}

// resolvePermissionIDs verifies that every supplied id exists in the
// catalog. An id that does not resolve rejects the whole set rather than
// silently granting a partial one.
func (s *RoleService) resolvePermissionIDs(ctx context.Context, ids []string) ([]string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, ErrUnknownPermission
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) == 0 {
		return []string{}, nil
	}

	found, err := s.permissions.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}
	if len(found) != len(unique) {
		return nil, ErrUnknownPermission
	}

	return unique, nil
}
