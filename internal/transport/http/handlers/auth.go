package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/transport/http/middleware"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// AuthHandler exposes login, logout, and token renewal.
type AuthHandler struct {
	auth    *usecase.AuthService
	respond *Responder
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, respond *Responder) *AuthHandler {
	return &AuthHandler{auth: auth, respond: respond}
}

// Login godoc
// @Summary Authenticate with email and password
// @Description Issues an access/refresh token pair with the identity and permission set.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c)
		return
	}

	var ip, userAgent *string
	if reqCtx := middleware.GetRequestContext(c); reqCtx != nil {
		if reqCtx.IP != "" {
			ip = &reqCtx.IP
		}
		if reqCtx.UserAgent != "" {
			userAgent = &reqCtx.UserAgent
		}
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, ip, userAgent)
	if err != nil {
		h.respond.RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusNotFound, Code: i18n.CodeInvalidCredentials, Field: "user"},
			{Err: usecase.ErrInactiveAccount, Status: http.StatusForbidden, Code: i18n.CodeUserDisabled, Field: "user"},
		})
		return
	}

	middleware.SetAuditObject(c, result.User.ID, "user")
	middleware.SetAuditDescriptor(c, result.User.Email)

	h.respond.OK(c, http.StatusOK, i18n.CodeLoginSuccess, LoginResponse{
		Access:  result.AccessToken,
		Refresh: result.RefreshToken,
		User: LoginUserSummary{
			ID:          result.User.ID,
			Email:       result.User.Email,
			FirstName:   result.User.FirstName,
			LastName:    result.User.LastName,
			UserType:    string(result.User.UserType),
			Language:    result.User.Language,
			Permissions: newPermissionResponses(result.Permissions),
		},
	})
}

// Logout godoc
// @Summary Revoke a refresh token
// @Description Marks the refresh token revoked; a second logout with the same token fails.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 205 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 401 {object} Envelope
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.FieldFail(c, http.StatusBadRequest, "refresh", i18n.CodeTokenRequired)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.Refresh); err != nil {
		h.respond.RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidRefreshToken, Status: http.StatusUnauthorized, Code: i18n.CodeTokenInvalid, Field: "refresh"},
		})
		return
	}

	h.respond.OK(c, http.StatusResetContent, i18n.CodeLogoutSuccess, nil)
}

// Refresh godoc
// @Summary Renew the access token
// @Description Exchanges a valid refresh token for a fresh access token. The refresh token itself is not rotated.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 401 {object} Envelope
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.FieldFail(c, http.StatusBadRequest, "refresh", i18n.CodeTokenRequired)
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.respond.RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidRefreshToken, Status: http.StatusUnauthorized, Code: i18n.CodeTokenInvalid, Field: "refresh"},
			{Err: usecase.ErrInactiveAccount, Status: http.StatusForbidden, Code: i18n.CodeUserDisabled, Field: "user"},
		})
		return
	}

	h.respond.OK(c, http.StatusOK, i18n.CodeTokenRefreshed, RefreshResponse{Access: result.AccessToken})
}
