package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devhub/internal/domain"
	"devhub/internal/identity"
	"devhub/internal/reconcile"
	"devhub/internal/transport/http/middleware"
)

// SyncHandler serves the session-scoped user endpoints: the manual sync
// fallback and the current-user lookup.
type SyncHandler struct {
	provider identity.Provider
	svc      *reconcile.Service
	users    domain.UserRepository
	authMW   gin.HandlerFunc
	log      *zap.Logger
}

func NewSyncHandler(provider identity.Provider, svc *reconcile.Service, users domain.UserRepository, authMW gin.HandlerFunc, log *zap.Logger) *SyncHandler {
	return &SyncHandler{provider: provider, svc: svc, users: users, authMW: authMW, log: log}
}

func (h *SyncHandler) MountAPI(g *gin.RouterGroup) {
	authed := g.Group("", h.authMW)
	authed.GET("/sync-user", h.SyncUser)
	authed.GET("/me", h.Me)
}

type syncUserView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// SyncUser guarantees a user row exists for the caller's session. The
// caller's session is the authentication; no signature checks here.
func (h *SyncHandler) SyncUser(c *gin.Context) {
	uid := c.GetString(middleware.KeyUserID)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	profile, err := h.provider.Profile(c.Request.Context(), uid)
	if err != nil {
		h.log.Error("profile fetch failed", zap.String("id", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch identity profile"})
		return
	}

	user, msg, err := h.svc.SyncUser(c.Request.Context(), uid, profile)
	if err != nil {
		// Detail stays in the log; the caller gets a generic message.
		h.log.Error("manual sync failed", zap.String("id", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msg,
		"user": syncUserView{
			ID:          user.ID,
			Email:       user.Email,
			Username:    user.Username,
			DisplayName: user.DisplayName,
		},
	})
}

func (h *SyncHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.KeyUserID)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	user, err := h.users.FindByID(c.Request.Context(), uid)
	if err != nil {
		h.log.Error("me lookup failed", zap.String("id", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if user == nil {
		// Row not reconciled yet; the client should call /sync-user.
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
