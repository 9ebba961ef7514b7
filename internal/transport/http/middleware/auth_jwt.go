package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"devhub/internal/core/auth"
	resp "devhub/internal/transport/http/response"
)

// Context keys set after a successful token parse.
const (
	KeyUserID = "userId"
	KeyRole   = "role"
)

// AuthJWT validates the bearer token and stashes uid/role in the context.
// requireRole, when non-empty, additionally gates on the token's role claim.
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}
