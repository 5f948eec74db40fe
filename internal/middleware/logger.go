package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"yatube/internal/pkg"
)

const (
	RequestIDHeader = "X-Request-Id"
	ContextReqIDKey = "request_id"
)

// RequestID 沿用客户端传入的 X-Request-Id，缺失时生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = pkg.NewID()
		}
		c.Set(ContextReqIDKey, reqID)
		c.Header(RequestIDHeader, reqID)
		c.Next()
	}
}

// Logger 每个请求一条日志，5xx 记为 error
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": c.GetString(ContextReqIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"ip":         c.ClientIP(),
			"duration":   time.Since(start).Seconds(),
			"user_id":    UserID(c),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("[http] request failed")
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Warn("[http] request")
		default:
			entry.Info("[http] request")
		}
	}
}

// Recovery panic 转成 500 JSON
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(log.StandardLogger().WriterLevel(log.ErrorLevel), func(c *gin.Context, err any) {
		log.WithFields(log.Fields{
			"request_id": c.GetString(ContextReqIDKey),
			"panic":      err,
		}).Error("[http] panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "internal server error"})
	})
}
