package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/internal/service"
)

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage 整页缓存 GET 请求；只缓存 200 响应，命中时直接返回缓存内容
func CachePage(pc *service.PageCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !pc.Enabled() || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key := c.Request.URL.RequestURI()
		if page, ok := pc.Get(c.Request.Context(), key); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, page.ContentType, page.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Header("X-Cache", "MISS")
		c.Next()

		if c.Writer.Status() == http.StatusOK && !c.IsAborted() {
			pc.Put(c.Request.Context(), key, c.Writer.Header().Get("Content-Type"), rec.body.Bytes())
		}
	}
}
