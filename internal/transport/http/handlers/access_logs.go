package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/transport/http/middleware"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

const (
	defaultLogPageSize = 25
	maxLogPageSize     = 200
)

// AccessLogHandler exposes the read-only audit trail.
type AccessLogHandler struct {
	audit   *usecase.AuditService
	respond *Responder
}

// NewAccessLogHandler builds an AccessLogHandler.
func NewAccessLogHandler(audit *usecase.AuditService, respond *Responder) *AccessLogHandler {
	return &AccessLogHandler{audit: audit, respond: respond}
}

// List godoc
// @Summary List audit trail entries
// @Tags Logs
// @Produce json
// @Param user_id query string false "Filter by acting user"
// @Param action query string false "Substring match on the action"
// @Param method query string false "Filter by HTTP method"
// @Param limit query int false "Page size, capped at 200"
// @Param offset query int false "Page offset"
// @Success 200 {object} Envelope
// @Router /api/v1/logs [get]
func (h *AccessLogHandler) List(c *gin.Context) {
	filter := port.AccessLogFilter{
		UserID: c.Query("user_id"),
		Action: c.Query("action"),
		Method: c.Query("method"),
		Limit:  defaultLogPageSize,
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.respond.FieldFail(c, http.StatusBadRequest, "limit", i18n.CodeBadRequest)
			return
		}
		if limit > maxLogPageSize {
			limit = maxLogPageSize
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			h.respond.FieldFail(c, http.StatusBadRequest, "offset", i18n.CodeBadRequest)
			return
		}
		filter.Offset = offset
	}

	entries, err := h.audit.ListLogs(c.Request.Context(), filter)
	if err != nil {
		h.respond.Internal(c, err)
		return
	}

	h.respond.OK(c, http.StatusOK, i18n.CodeLogList, newAccessLogResponses(entries))
}

// Get godoc
// @Summary Retrieve an audit trail entry
// @Tags Logs
// @Produce json
// @Param id path string true "Log ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/v1/logs/{id} [get]
func (h *AccessLogHandler) Get(c *gin.Context) {
	entry, err := h.audit.GetLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respond.RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrLogNotFound, Status: http.StatusNotFound, Code: i18n.CodeNotFound, Field: "log"},
		})
		return
	}

	middleware.SetAuditObject(c, entry.ID, "access_log")

	h.respond.OK(c, http.StatusOK, i18n.CodeLogDetails, newAccessLogResponse(*entry))
}
