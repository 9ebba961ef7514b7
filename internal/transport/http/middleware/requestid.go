package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KeyRequestID doubles as the context key and the response header carrying
// the per-request correlation id. The access log reads it from context.
const KeyRequestID = "X-Request-ID"

// RequestID trusts an inbound id when one is present, so ids survive
// proxies and retries, and mints one otherwise.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}
