package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
)

const (
	// TraceIDHeader is the HTTP header name for trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for trace ID
	TraceIDKey = "trace_id"
	// ActorKey is the context key for the authenticated actor
	ActorKey = "actor"

	// AuditMessageKey carries the envelope message of the response so the
	// audit middleware can persist it verbatim.
	AuditMessageKey = "audit_message"
	// AuditObjectIDKey and AuditObjectTypeKey identify the entity a
	// mutating request touched.
	AuditObjectIDKey   = "audit_object_id"
	AuditObjectTypeKey = "audit_object_type"
	// AuditDescriptorKey holds the human label appended to the audit
	// action ("role_create: Soporte").
	AuditDescriptorKey = "audit_descriptor"
)

// RequestContext holds request-scoped information
type RequestContext struct {
	TraceID   string
	UserID    string
	IP        string
	UserAgent string
}

// EnrichContext adds trace ID and request context to each request
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Set("request_context", &RequestContext{
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext retrieves the full request context
func GetRequestContext(c *gin.Context) *RequestContext {
	if ctx, exists := c.Get("request_context"); exists {
		if reqCtx, ok := ctx.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{}
}

// SetActor stores the authenticated actor for downstream handlers.
func SetActor(c *gin.Context, actor domain.Actor) {
	c.Set(ActorKey, actor)
}

// GetActor retrieves the authenticated actor. The second return value
// reports whether authentication middleware ran on this route.
func GetActor(c *gin.Context) (domain.Actor, bool) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return domain.Actor{}, false
	}
	actor, ok := value.(domain.Actor)
	return actor, ok
}

// SetAuditObject records the entity a mutating request touched, for the
// audit middleware running after the handler.
func SetAuditObject(c *gin.Context, objectID, objectType string) {
	c.Set(AuditObjectIDKey, objectID)
	c.Set(AuditObjectTypeKey, objectType)
}

// SetAuditDescriptor records the human-readable label appended to the
// audit action.
func SetAuditDescriptor(c *gin.Context, descriptor string) {
	c.Set(AuditDescriptorKey, descriptor)
}
