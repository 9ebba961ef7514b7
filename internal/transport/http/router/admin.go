package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devhub/internal/core/auth"
	"devhub/internal/domain"
	"devhub/internal/transport/http/handler"
	mdw "devhub/internal/transport/http/middleware"
)

// NewAdminEngine builds the back-office engine. Login is public, everything
// under /admin/v1 requires an admin-role token.
func NewAdminEngine(l *zap.Logger, adminH *handler.AdminHandler, jwter *auth.JWTer) *gin.Engine {
	r := gin.New()

	r.Use(
		ginzap.Ginzap(l, time.RFC3339, true),
		ginzap.RecoveryWithZap(l, true),
		cors.Default(),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.POST("/admin/login", adminH.Login)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, domain.AdminRoleAdmin))
	MountAllAdmin(admin)

	return r
}
