package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"yatube/internal/middleware"
	"yatube/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// SignupReq 注册请求体
type SignupReq struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type LoginReq struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

type ChangePasswordReq struct {
	OldPassword string `form:"old_password" json:"old_password"`
	NewPassword string `form:"new_password" json:"new_password"`
}

type RefreshReq struct {
	Refresh string `form:"refresh" json:"refresh"`
}

func (h *UserHandler) SignupForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"form": SignupReq{}})
}

// Signup 注册成功后直接登录并回到首页
func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupReq
	if !bindForm(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if ve, ok := service.AsValidation(err); ok {
		req.Password = ""
		c.JSON(http.StatusBadRequest, gin.H{"form": req, "errors": ve.Fields})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := middleware.LoginSession(c, user); err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// LoginForm 登录页，next 原样带回
func (h *UserHandler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"form": LoginReq{Next: c.Query("next")}, "next": c.Query("next")})
}

// Login 登录接口（session）
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if !bindForm(c, &req) {
		return
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}

	user, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		req.Password = ""
		c.JSON(http.StatusBadRequest, gin.H{
			"form":   req,
			"errors": gin.H{"__all__": "Please enter a correct username and password."},
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := middleware.LoginSession(c, user); err != nil {
		respondError(c, err)
		return
	}
	log.WithField("user_id", user.ID).Info("[auth] session login")
	c.Redirect(http.StatusFound, safeNext(req.Next))
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := middleware.LogoutSession(c); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "logged out"})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if !bindForm(c, &req) {
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), middleware.UserID(c), req.OldPassword, req.NewPassword)
	if ve, ok := service.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": ve.Fields})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "change password successfully"})
}

// Token 用户名密码换取 JWT 令牌对
func (h *UserHandler) Token(c *gin.Context) {
	var req LoginReq
	if !bindForm(c, &req) {
		return
	}
	pair, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// TokenRefresh 利用refresh来更新access
func (h *UserHandler) TokenRefresh(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBind(&req); err != nil || req.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pair)
}
