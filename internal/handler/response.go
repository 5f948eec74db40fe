package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"yatube/internal/middleware"
	"yatube/internal/service"
)

// NotFound 未匹配的路由与不存在的资源共用
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"msg": "not found", "path": c.Request.URL.Path})
}

// respondError 处理校验错误以外的服务错误
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c)
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"msg": "forbidden"})
	default:
		_ = c.Error(err)
		log.WithError(err).WithField("request_id", c.GetString(middleware.ContextReqIDKey)).Error("[http] handler failed")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal server error"})
	}
}

// bindForm 请求体无法解析时直接返回 400，不再进入表单校验
func bindForm(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		log.WithError(err).WithField("request_id", c.GetString(middleware.ContextReqIDKey)).Debug("[http] bind failed")
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return false
	}
	return true
}

// paramID 非数字的 id 视为不存在
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		NotFound(c)
		return 0, false
	}
	return id, true
}

// safeNext 只允许站内相对地址
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

func postURL(id uint64) string {
	return "/posts/" + strconv.FormatUint(id, 10) + "/"
}
