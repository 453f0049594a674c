package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bert0h-dev/menvitta-backend/internal/infra/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates a correlation identifier through the request
// context and response headers. An inbound value is honored only when it
// parses as a UUID, so clients cannot inject arbitrary strings into the
// access logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
