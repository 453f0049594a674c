package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

const activityTouchTimeout = 3 * time.Second

// Activity stamps the authenticated account's last-activity metadata
// after each request. The write is best effort and runs off the request
// goroutine so a slow database never holds up the response.
func Activity(users *usecase.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		actor, ok := GetActor(c)
		if !ok {
			return
		}

		var ip *string
		if addr := c.ClientIP(); addr != "" {
			ip = &addr
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), activityTouchTimeout)
			defer cancel()
			users.TouchActivity(ctx, actor.ID, ip)
		}()
	}
}
