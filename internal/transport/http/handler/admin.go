package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devhub/internal/core/auth"
	"devhub/internal/domain"
	resp "devhub/internal/transport/http/response"
	"devhub/pkg/utils"
)

// AdminHandler is the back-office surface: local password login plus app-user
// management. Admin accounts are not identity-provider users and never pass
// through reconciliation.
type AdminHandler struct {
	users  domain.UserRepository
	admins domain.AdminRepository
	jwter  *auth.JWTer
	log    *zap.Logger
}

func NewAdminHandler(users domain.UserRepository, admins domain.AdminRepository, jwter *auth.JWTer, log *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, admins: admins, jwter: jwter, log: log}
}

func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	g.GET("/users", h.ListUsers)
	g.POST("/users/:id/role", h.SetRole)
	g.POST("/users/:id/points", h.AddPoints)
	g.DELETE("/users/:id", h.DeleteUser)
}

type loginIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	acct, err := h.admins.FindByEmail(c.Request.Context(), in.Email)
	if err != nil {
		h.log.Error("admin lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "login failed"))
		return
	}
	if acct == nil || !utils.CheckPassword(in.Password, acct.PasswordHash) {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid credentials"))
		return
	}
	tok, err := h.jwter.Issue(acct.ID, acct.Role)
	if err != nil {
		h.log.Error("issue admin token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "login failed"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{
		"token": tok,
		"admin": gin.H{"id": acct.ID, "email": acct.Email, "displayName": acct.DisplayName, "role": acct.Role},
	}))
}

type listQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var in listQ
	if err := c.ShouldBindQuery(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 20
	}
	users, total, err := h.users.List(c.Request.Context(), in.Q, in.Offset, in.Limit)
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "list users failed"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"total": total, "items": users}))
}

type setRoleIn struct {
	Role domain.Role `json:"role" binding:"required"`
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	id := c.Param("id")
	var in setRoleIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	if !in.Role.Valid() {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "unknown role"))
		return
	}
	err := h.users.Update(c.Request.Context(), id, domain.UserChanges{Role: &in.Role})
	if err == domain.ErrNotFound {
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, "user not found"))
		return
	}
	if err != nil {
		h.log.Error("set role failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "set role failed"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"id": id, "role": in.Role}))
}

type addPointsIn struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *AdminHandler) AddPoints(c *gin.Context) {
	id := c.Param("id")
	var in addPointsIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	user, err := h.users.AddPoints(c.Request.Context(), id, in.Delta)
	if err == domain.ErrNotFound {
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, "user not found"))
		return
	}
	if err != nil {
		h.log.Error("add points failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "add points failed"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"id": user.ID, "points": user.Points}))
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "missing id"))
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.log.Error("delete user failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "delete user failed"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"id": id}))
}
