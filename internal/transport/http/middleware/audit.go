package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// descriptionErrorFallback is stored when the action description cannot
// be resolved, so the trail row still exists.
const descriptionErrorFallback = "(Error al obtener descripción)"

// auditLanguage fixes the language audit rows are written in, independent
// of the request language.
const auditLanguage = "es"

// Audit records the request on the audit trail after the handler runs.
// The entry is handed to the asynchronous recorder; trail persistence
// never delays or fails the response.
func Audit(recorder *usecase.AuditRecorder, translator *i18n.Translator, labelCode i18n.Code) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		entry := domain.AccessLog{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Action:     buildAction(c, translator, labelCode),
			StatusCode: c.Writer.Status(),
			Message:    c.GetString(AuditMessageKey),
			UserAgent:  c.Request.UserAgent(),
		}

		if ip := c.ClientIP(); ip != "" {
			entry.IPAddress = &ip
		}
		if actor, ok := GetActor(c); ok {
			userID := actor.ID
			entry.UserID = &userID
		}
		if objectID := c.GetString(AuditObjectIDKey); objectID != "" {
			entry.ObjectID = &objectID
		}
		if objectType := c.GetString(AuditObjectTypeKey); objectType != "" {
			entry.ObjectType = &objectType
		}

		recorder.Record(entry)
	}
}

// buildAction composes "<description>: <label>" from the catalog entry
// for the route and the label the handler attached. A panic while
// resolving the description is downgraded to a fallback marker.
func buildAction(c *gin.Context, translator *i18n.Translator, labelCode i18n.Code) (action string) {
	defer func() {
		if recover() != nil {
			action = descriptionErrorFallback
			if label := c.GetString(AuditDescriptorKey); label != "" {
				action = action + ": " + label
			}
		}
	}()

	action = translator.Resolve(auditLanguage, labelCode)
	if label := c.GetString(AuditDescriptorKey); label != "" {
		action = action + ": " + label
	}
	return action
}
