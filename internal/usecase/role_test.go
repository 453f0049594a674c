package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
)

type roleFixture struct {
	roles   *roleRepoMock
	perms   *permissionRepoMock
	users   *userRepoMock
	events  *publisherMock
	service *RoleService
}

func newRoleFixture() *roleFixture {
	f := &roleFixture{
		roles: &roleRepoMock{},
		perms: &permissionRepoMock{catalog: map[string]domain.Permission{
			"accounts.view_user":   {ID: "accounts.view_user", Name: "Can view user", Owner: "accounts"},
			"accounts.change_user": {ID: "accounts.change_user", Name: "Can change user", Owner: "accounts"},
		}},
		users:  &userRepoMock{},
		events: &publisherMock{},
	}
	f.service = NewRoleService(f.roles, f.perms, f.users, f.events, zap.NewNop())
	return f
}

func TestRoleService_CreateRole(t *testing.T) {
	f := newRoleFixture()

	detail, err := f.service.CreateRole(context.Background(), admin, "  Soporte  ", []string{"accounts.view_user"})
	if err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}
	if detail.Role.Name != "Soporte" {
		t.Fatalf("name not trimmed: %q", detail.Role.Name)
	}
	if len(detail.PermissionIDs) != 1 || detail.PermissionIDs[0] != "accounts.view_user" {
		t.Fatalf("permission set = %v", detail.PermissionIDs)
	}
	if _, ok := f.roles.roles[detail.Role.ID]; !ok {
		t.Fatal("role was not persisted")
	}
}

func TestRoleService_CreateRoleValidation(t *testing.T) {
	f := newRoleFixture()

	if _, err := f.service.CreateRole(context.Background(), admin, "   ", nil); !errors.Is(err, ErrRoleNameRequired) {
		t.Fatalf("blank name: got %v, want ErrRoleNameRequired", err)
	}

	if _, err := f.service.CreateRole(context.Background(), admin, "Soporte", nil); err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}
	if _, err := f.service.CreateRole(context.Background(), admin, " Soporte ", nil); !errors.Is(err, ErrRoleExists) {
		t.Fatalf("duplicate trimmed name: got %v, want ErrRoleExists", err)
	}
}

func TestRoleService_CreateRoleRejectsUnknownPermissions(t *testing.T) {
	f := newRoleFixture()

	_, err := f.service.CreateRole(context.Background(), admin, "Soporte", []string{
		"accounts.view_user", "accounts.delete_everything",
	})
	if !errors.Is(err, ErrUnknownPermission) {
		t.Fatalf("got %v, want ErrUnknownPermission", err)
	}
	if len(f.roles.roles) != 0 {
		t.Fatal("no role may be created when any permission id is unknown")
	}
}

func TestRoleService_UpdateRole(t *testing.T) {
	f := newRoleFixture()

	created, err := f.service.CreateRole(context.Background(), admin, "Soporte", []string{"accounts.view_user"})
	if err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}
	if _, err := f.service.CreateRole(context.Background(), admin, "Ventas", nil); err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}

	// Renaming onto another role's name is a conflict.
	if _, err := f.service.UpdateRole(context.Background(), admin, created.Role.ID, "Ventas", nil); !errors.Is(err, ErrRoleExists) {
		t.Fatalf("conflicting rename: got %v, want ErrRoleExists", err)
	}

	// Keeping its own name is not.
	detail, err := f.service.UpdateRole(context.Background(), admin, created.Role.ID, " Soporte ", nil)
	if err != nil {
		t.Fatalf("same-name rename returned error: %v", err)
	}
	if len(detail.PermissionIDs) != 1 {
		t.Fatalf("nil permission ids must keep the set, got %v", detail.PermissionIDs)
	}

	// An empty (non-nil) set clears the permissions.
	detail, err = f.service.UpdateRole(context.Background(), admin, created.Role.ID, "Soporte", []string{})
	if err != nil {
		t.Fatalf("UpdateRole returned error: %v", err)
	}
	if len(detail.PermissionIDs) != 0 {
		t.Fatalf("empty set must clear permissions, got %v", detail.PermissionIDs)
	}
}

func TestRoleService_DeleteRoleBlockedWhileAssigned(t *testing.T) {
	f := newRoleFixture()
	f.users.put(domain.User{ID: "user-1", Email: "ana@example.com", IsActive: true})

	created, err := f.service.CreateRole(context.Background(), admin, "Soporte", nil)
	if err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}
	if err := f.service.AssignRole(context.Background(), admin, "user-1", created.Role.ID); err != nil {
		t.Fatalf("AssignRole returned error: %v", err)
	}

	if err := f.service.DeleteRole(context.Background(), admin, created.Role.ID); !errors.Is(err, ErrRoleInUse) {
		t.Fatalf("got %v, want ErrRoleInUse", err)
	}

	if err := f.service.UnassignRole(context.Background(), admin, "user-1", created.Role.ID); err != nil {
		t.Fatalf("UnassignRole returned error: %v", err)
	}
	if err := f.service.DeleteRole(context.Background(), admin, created.Role.ID); err != nil {
		t.Fatalf("DeleteRole returned error: %v", err)
	}
	if _, err := f.service.GetRole(context.Background(), created.Role.ID); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("got %v, want ErrRoleNotFound", err)
	}
}

func TestRoleService_AssignRole(t *testing.T) {
	f := newRoleFixture()
	f.users.put(domain.User{ID: "user-1", Email: "ana@example.com", IsActive: true})

	created, err := f.service.CreateRole(context.Background(), admin, "Soporte", nil)
	if err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}

	if err := f.service.AssignRole(context.Background(), admin, "ghost", created.Role.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: got %v, want ErrUserNotFound", err)
	}
	if err := f.service.AssignRole(context.Background(), admin, "user-1", "ghost"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("unknown role: got %v, want ErrRoleNotFound", err)
	}

	if err := f.service.AssignRole(context.Background(), admin, "user-1", created.Role.ID); err != nil {
		t.Fatalf("AssignRole returned error: %v", err)
	}
	if err := f.service.AssignRole(context.Background(), admin, "user-1", created.Role.ID); !errors.Is(err, ErrRoleAlreadyAssigned) {
		t.Fatalf("double assign: got %v, want ErrRoleAlreadyAssigned", err)
	}

	if len(f.events.roleAssigned) != 1 || f.events.roleAssigned[0].AssignedBy != admin.ID {
		t.Fatalf("role-assigned events = %+v", f.events.roleAssigned)
	}
}

func TestRoleService_UnassignRoleNotHeld(t *testing.T) {
	f := newRoleFixture()
	f.users.put(domain.User{ID: "user-1", Email: "ana@example.com", IsActive: true})

	created, err := f.service.CreateRole(context.Background(), admin, "Soporte", nil)
	if err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}

	if err := f.service.UnassignRole(context.Background(), admin, "user-1", created.Role.ID); !errors.Is(err, ErrRoleNotAssigned) {
		t.Fatalf("got %v, want ErrRoleNotAssigned", err)
	}
	if len(f.events.roleRevoked) != 0 {
		t.Fatal("no event may be published for a failed unassign")
	}
}
