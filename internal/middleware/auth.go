package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"yatube/internal/model"
	"yatube/internal/service"
)

const (
	ContextUserKey = "current_user"
	SessionUserKey = "user_id"
	LoginURL       = "/auth/login/"
)

// Authenticator 识别当前用户：优先 session，其次 Bearer 令牌
type Authenticator struct {
	Users *service.UserService
}

// Identify 不要求登录；携带非法 Bearer 令牌时返回 401
func (a *Authenticator) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := a.fromSession(c); user != nil {
			c.Set(ContextUserKey, user)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
			return
		}
		user, err := a.Users.ResolveToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			log.WithError(err).Debug("[auth] bearer rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func (a *Authenticator) fromSession(c *gin.Context) *model.User {
	s := sessions.Default(c)
	id, ok := s.Get(SessionUserKey).(uint64)
	if !ok || id == 0 {
		return nil
	}
	user, err := a.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		// 用户已被删除，清掉失效的 session
		s.Delete(SessionUserKey)
		_ = s.Save()
		return nil
	}
	return user
}

// LoginRequired 未登录时重定向到登录页，next 为原始请求地址
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaffRequired 需放在 LoginRequired 之后
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := CurrentUser(c); user == nil || !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"msg": "staff only"})
			return
		}
		c.Next()
	}
}

// LoginRedirect 登录地址，保留 next 中的 "/"
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// LoginSession 把用户写入 session
func LoginSession(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(SessionUserKey, user.ID)
	return s.Save()
}

// LogoutSession 清空 session 并让 cookie 立即过期
func LogoutSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}

// CurrentUser 匿名时返回 nil
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ContextUserKey); ok {
		if u, ok2 := v.(*model.User); ok2 {
			return u
		}
	}
	return nil
}

// UserID 匿名时返回 0
func UserID(c *gin.Context) uint64 {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return 0
}
