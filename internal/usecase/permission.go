package usecase

import (
	"context"
	"fmt"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
)

// PermissionService reads the permission catalog. The catalog itself is
// immutable at runtime; only its exposure and naming are service concerns.
type PermissionService struct {
	permissions   port.PermissionRepository
	translator    *i18n.Translator
	allowedOwners []string
}

// NewPermissionService constructs a PermissionService restricted to the
// configured owner allow-list.
func NewPermissionService(permissions port.PermissionRepository, translator *i18n.Translator, allowedOwners []string) *PermissionService {
	owners := make([]string, len(allowedOwners))
	copy(owners, allowedOwners)
	return &PermissionService{
		permissions:   permissions,
		translator:    translator,
		allowedOwners: owners,
	}
}

// ListPermissions returns the catalog entries for the allowed owners with
// names localized into lang.
func (s *PermissionService) ListPermissions(ctx context.Context, lang string) ([]domain.Permission, error) {
	permissions, err := s.permissions.ListByOwners(ctx, s.allowedOwners)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return s.localize(permissions, lang), nil
}

// ResolveNames maps permission ids to their localized names. Every
// supplied id must resolve; an unknown id rejects the request.
func (s *PermissionService) ResolveNames(ctx context.Context, lang string, ids []string) ([]domain.Permission, error) {
	if len(ids) == 0 {
		return nil, NewFieldError("permission_ids", i18n.CodePermissionListRequired)
	}

	permissions, err := s.permissions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve permission names: %w", err)
	}

	return s.localize(permissions, lang), nil
}

// ListForUser returns the effective permission set of a user.
func (s *PermissionService) ListForUser(ctx context.Context, userID, lang string) ([]domain.Permission, error) {
	permissions, err := s.permissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user permissions: %w", err)
	}
	return s.localize(permissions, lang), nil
}

// Catalog names fall back to their stored form when no translation is
// registered; migrations may seed permissions the catalog never learned.
func (s *PermissionService) localize(permissions []domain.Permission, lang string) []domain.Permission {
	if s.translator == nil {
		return permissions
	}

	localized := make([]domain.Permission, len(permissions))
	for i, permission := range permissions {
		permission.Name = s.translator.ResolveOr(lang, i18n.Code("perm."+permission.ID), permission.Name)
		localized[i] = permission
	}
	return localized
}
