package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/internal/service"
)

type EmailHandler struct {
	svc *service.EmailService
}

type SendCodeReq struct {
	Email string `form:"email" json:"email"`
}

type ResetReq struct {
	Email       string `form:"email" json:"email"`
	Code        string `form:"code" json:"code"`
	NewPassword string `form:"new_password" json:"new_password"`
}

func NewEmailHandler(svc *service.EmailService) *EmailHandler {
	return &EmailHandler{svc: svc}
}

// SendResetCode 未注册的邮箱同样返回成功
func (h *EmailHandler) SendResetCode(c *gin.Context) {
	var req SendCodeReq
	if !bindForm(c, &req) {
		return
	}

	err := h.svc.SendResetCode(c.Request.Context(), req.Email)
	if ve, ok := service.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": ve.Fields})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "if the address is registered, a code has been sent"})
}

// ResetPassword 校验验证码并设置新密码
func (h *EmailHandler) ResetPassword(c *gin.Context) {
	var req ResetReq
	if !bindForm(c, &req) {
		return
	}

	err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	if ve, ok := service.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": ve.Fields})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "reset password successfully"})
}
