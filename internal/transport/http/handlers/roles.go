package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/transport/http/middleware"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// RoleHandler exposes role management and membership.
type RoleHandler struct {
	roles   *usecase.RoleService
	respond *Responder
}

// NewRoleHandler builds a RoleHandler.
func NewRoleHandler(roles *usecase.RoleService, respond *Responder) *RoleHandler {
	return &RoleHandler{roles: roles, respond: respond}
}

var roleErrorCases = []ErrorCase{
	{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Code: i18n.CodeNotFound, Field: "role"},
	{Err: usecase.ErrRoleExists, Status: http.StatusBadRequest, Code: i18n.CodeRoleExists, Field: "name"},
	{Err: usecase.ErrRoleNameRequired, Status: http.StatusBadRequest, Code: i18n.CodeFieldRequired, Field: "name"},
	{Err: usecase.ErrRoleInUse, Status: http.StatusBadRequest, Code: i18n.CodeRoleInUse, Field: "role_in_use"},
	{Err: usecase.ErrUnknownPermission, Status: http.StatusBadRequest, Code: i18n.CodeRolePermissionsInvalid, Field: "permissions"},
	{Err: usecase.ErrRoleAlreadyAssigned, Status: http.StatusBadRequest, Code: i18n.CodeConflict, Field: "role"},
	{Err: usecase.ErrRoleNotAssigned, Status: http.StatusBadRequest, Code: i18n.CodeBadRequest, Field: "role"},
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: i18n.CodeUserNotFound, Field: "user"},
}

// List godoc
// @Summary List roles with member counts
// @Tags Roles
// @Produce json
// @Success 200 {object} Envelope
// @Router /api/v1/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context())
	if err != nil {
		h.respond.Internal(c, err)
		return
	}

	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, newRoleResponse(role))
	}

	h.respond.OK(c, http.StatusOK, i18n.CodeRoleList, out)
}

// Get godoc
// @Summary Retrieve a role and its permission set
// @Tags Roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/v1/roles/{id} [get]
func (h *RoleHandler) Get(c *gin.Context) {
	detail, err := h.roles.GetRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respond.RespondWithMappedError(c, err, roleErrorCases)
		return
	}

	middleware.SetAuditObject(c, detail.Role.ID, "role")
	middleware.SetAuditDescriptor(c, detail.Role.Name)

	h.respond.OK(c, http.StatusOK, i18n.CodeRoleDetails, newRoleDetailResponse(*detail))
}

// Create godoc
// @Summary Create a role
// @Description Every permission id must resolve against the catalog or the request is rejected.
// @Tags Roles
// @Accept json
// @Produce json
// @Param request body RoleRequest true "Role payload"
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /api/v1/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, i18n.CodeUnauthorized, nil)
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c)
		return
	}

	detail, err := h.roles.CreateRole(c.Request.Context(), actor, req.Name, req.Permissions)
	if err != nil {
		h.respond.RespondWithMappedError(c, err, roleErrorCases)
		return
	}

	middleware.SetAuditObject(c, detail.Role.ID, "role")
	middleware.SetAuditDescriptor(c, detail.Role.Name)

	h.respond.OK(c, http.StatusCreated, i18n.CodeRoleCreated, newRoleDetailResponse(*detail))
}

// Update godoc
// @Summary Rename a role or replace its permission set
// @Description An absent permissions field keeps the current set; an empty list clears it.
// @Tags Roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param request body RoleRequest true "Role payload"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/v1/roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, i18n.CodeUnauthorized, nil)
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c)
		return
	}

	detail, err := h.roles.UpdateRole(c.Request.Context(), actor, c.Param("id"), req.Name, req.Permissions)
	if err != nil {
		h.respond.RespondWithMappedError(c, err, roleErrorCases)
		return
	}

	middleware.SetAuditObject(c, detail.Role.ID, "role")
	middleware.SetAuditDescriptor(c, detail.Role.Name)

	h.respond.OK(c, http.StatusOK, i18n.CodeRoleUpdated, newRoleDetailResponse(*detail))
}

// Delete godoc
// @Summary Delete a role
// @Description Fails while any user still holds the role.
// @Tags Roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/v1/roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, i18n.CodeUnauthorized, nil)
		return
	}

	roleID := c.Param("id")
	if err := h.roles.DeleteRole(c.Request.Context(), actor, roleID); err != nil {
		h.respond.RespondWithMappedError(c, err, roleErrorCases)
		return
	}

	middleware.SetAuditObject(c, roleID, "role")

	h.respond.OK(c, http.StatusOK, i18n.CodeRoleDeleted, nil)
}

// Assign godoc
// @Summary Assign a role to a user
// @Tags Roles
// @Accept json
// @Produce json
// @Param request body RoleMembershipRequest true "Membership payload"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/v1/roles/assign [post]
func (h *RoleHandler) Assign(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, i18n.CodeUnauthorized, nil)
		return
	}

	var req RoleMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c)
		return
	}

	if err := h.roles.AssignRole(c.Request.Context(), actor, req.UserID, req.RoleID); err != nil {
		h.respond.RespondWithMappedError(c, err, roleErrorCases)
		return
	}

	middleware.SetAuditObject(c, req.RoleID, "role")

	h.respond.OK(c, http.StatusOK, i18n.CodeRoleAssigned, nil)
}

// Remove godoc
// @Summary Remove a role from a user
// @Tags Roles
// @Accept json
// @Produce json
// @Param request body RoleMembershipRequest true "Membership payload"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/v1/roles/remove [post]
func (h *RoleHandler) Remove(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, i18n.CodeUnauthorized, nil)
		return
	}

	var req RoleMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c)
		return
	}

	if err := h.roles.UnassignRole(c.Request.Context(), actor, req.UserID, req.RoleID); err != nil {
		h.respond.RespondWithMappedError(c, err, roleErrorCases)
		return
	}

	middleware.SetAuditObject(c, req.RoleID, "role")

	h.respond.OK(c, http.StatusOK, i18n.CodeRoleAssigned, nil)
}
