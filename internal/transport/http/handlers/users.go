package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/transport/http/middleware"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// UserHandler exposes account management.
type UserHandler struct {
	users   *usecase.UserService
	respond *Responder
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users *usecase.UserService, respond *Responder) *UserHandler {
	return &UserHandler{users: users, respond: respond}
}

var userErrorCases = []ErrorCase{
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: i18n.CodeUserNotFound, Field: "user"},
	{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Code: i18n.CodeCannotModifyUser, Field: "user"},
}

// List godoc
// @Summary List accounts
// @Tags Users
// @Produce json
// @Param search query string false "Match against email and names"
// @Param user_type query string false "admin|staff|user"
// @Param is_active query bool false "Filter by activation state"
// @Success 200 {object} Envelope
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := port.UserFilter{Search: c.Query("search")}

	if raw := c.Query("user_type"); raw != "" {
		userType := domain.ParseUserType(raw)
		filter.UserType = &userType
	}
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.respond.FieldFail(c, http.StatusBadRequest, "is_active", i18n.CodeBadRequest)
			return
		}
		filter.IsActive = &active
	}

	users, err := h.users.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.respond.Internal(c, err)
		return
	}

	h.respond.OK(c, http.StatusOK, i18n.CodeUserList, newUserResponses(users))
}

// Get godoc
// @Summary Retrieve an account
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respond.RespondWithMappedError(c, err, userErrorCases)
		return
	}

	middleware.SetAuditObject(c, user.ID, "user")
	middleware.SetAuditDescriptor(c, user.Email)

	h.respond.OK(c, http.StatusOK, i18n.CodeUserRecovered, newUserResponse(*user))
}

// Create godoc
// @Summary Provision a new account
// @Tags Users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "Account payload"
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /api/v1/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, i18n.CodeUnauthorized, nil)
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), actor, usecase.CreateUserInput{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.Password2,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		UserType:        req.UserType,
		Language:        req.Language,
		Timezone:        req.Timezone,
	})
	if err != nil {
		h.respond.RespondWithMappedError(c, err, userErrorCases)
		return
	}

	middleware.SetAuditObject(c, user.ID, "user")
	middleware.SetAuditDescriptor(c, user.Email)

	h.respond.OK(c, http.StatusCreated, i18n.CodeUserCreated, newUserResponse(*user))
}

// Update godoc
// @Summary Update an account
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Partial profile changes"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, i18n.CodeUnauthorized, nil)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c)
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), actor, c.Param("id"), usecase.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserType:  req.UserType,
		Language:  req.Language,
		Timezone:  req.Timezone,
		IsActive:  req.IsActive,
	})
	if err != nil {
		h.respond.RespondWithMappedError(c, err, userErrorCases)
		return
	}

	middleware.SetAuditObject(c, user.ID, "user")
	middleware.SetAuditDescriptor(c, user.Email)

	h.respond.OK(c, http.StatusOK, i18n.CodeUserUpdated, newUserResponse(*user))
}

// ChangePassword godoc
// @Summary Rotate an account credential
// @Description A user changing their own password must present the current one; admin and staff actors changing someone else's skip that check.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body ChangePasswordRequest true "Password payload"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /api/v1/users/{id}/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, i18n.CodeUnauthorized, nil)
		return
	}

	targetID := c.Param("id")
	if !actor.Is(targetID) && !actor.IsAdmin() && !actor.IsStaff() {
		h.respond.FieldFail(c, http.StatusForbidden, "user", i18n.CodeCannotModifyUser)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c)
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), actor, targetID, usecase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		h.respond.RespondWithMappedError(c, err, userErrorCases)
		return
	}

	middleware.SetAuditObject(c, targetID, "user")

	h.respond.OK(c, http.StatusOK, i18n.CodePasswordUpdated, nil)
}

// ChangeLanguage godoc
// @Summary Switch the interface language
// @Description Users may only change their own language preference.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body ChangeLanguageRequest true "Language payload"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /api/v1/users/{id}/language [put]
func (h *UserHandler) ChangeLanguage(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, i18n.CodeUnauthorized, nil)
		return
	}

	var req ChangeLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.FieldFail(c, http.StatusBadRequest, "language", i18n.CodeFieldRequired)
		return
	}

	user, err := h.users.ChangeLanguage(c.Request.Context(), actor, c.Param("id"), req.Language)
	if err != nil {
		h.respond.RespondWithMappedError(c, err, userErrorCases)
		return
	}

	middleware.SetAuditObject(c, user.ID, "user")
	middleware.SetAuditDescriptor(c, user.Email)

	h.respond.OK(c, http.StatusOK, i18n.CodeLanguageUpdated, newUserResponse(*user))
}
