package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"devhub/internal/core/auth"
)

// SessionJWT parses a bearer session token when one is present and stashes
// uid/role in the context. It never aborts: the session endpoints answer
// their own 401 with the wire format clients expect.
func SessionJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if strings.HasPrefix(ah, "Bearer ") {
			if claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer ")); err == nil {
				c.Set(KeyUserID, claims.UID)
				c.Set(KeyRole, claims.Role)
			}
		}
		c.Next()
	}
}
