package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// PermissionHandler exposes the read-only permission catalog.
type PermissionHandler struct {
	permissions *usecase.PermissionService
	respond     *Responder
}

// NewPermissionHandler builds a PermissionHandler.
func NewPermissionHandler(permissions *usecase.PermissionService, respond *Responder) *PermissionHandler {
	return &PermissionHandler{permissions: permissions, respond: respond}
}

// List godoc
// @Summary List the permission catalog
// @Description Only permissions whose owner is on the configured allow-list are returned.
// @Tags Permissions
// @Produce json
// @Success 200 {object} Envelope
// @Router /api/v1/permissions [get]
func (h *PermissionHandler) List(c *gin.Context) {
	permissions, err := h.permissions.ListPermissions(c.Request.Context(), h.respond.Lang(c))
	if err != nil {
		h.respond.Internal(c, err)
		return
	}

	h.respond.OK(c, http.StatusOK, i18n.CodePermissionList, newPermissionResponses(permissions))
}

// ResolveNames godoc
// @Summary Resolve permission ids to display names
// @Tags Permissions
// @Accept json
// @Produce json
// @Param request body PermissionNamesRequest true "Permission ids"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /api/v1/permissions/names [post]
func (h *PermissionHandler) ResolveNames(c *gin.Context) {
	var req PermissionNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.FieldFail(c, http.StatusBadRequest, "permission_ids", i18n.CodePermissionListRequired)
		return
	}

	permissions, err := h.permissions.ResolveNames(c.Request.Context(), h.respond.Lang(c), req.PermissionIDs)
	if err != nil {
		h.respond.RespondWithMappedError(c, err, nil)
		return
	}

	h.respond.OK(c, http.StatusOK, i18n.CodePermissionList, newPermissionResponses(permissions))
}
