package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"yatube/internal/config"
	"yatube/internal/handler"
	"yatube/internal/middleware"
	"yatube/internal/pkg"
	"yatube/internal/repository/cache"
	"yatube/internal/service"
	"yatube/internal/storage"
)

const (
	sessionCookieName = "yatube_session"
	sessionMaxAge     = 14 * 24 * 3600
)

// Deps 路由依赖的外部资源，由 main 负责创建与关闭
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Store  cache.Store
	Media  storage.Storage
	Mailer pkg.Mailer
}

func InitRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logger())

	cookieStore := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	cookieStore.Options(sessions.Options{Path: "/", MaxAge: sessionMaxAge, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionCookieName, cookieStore))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/media/"})))

	// 服务
	issuer := pkg.NewTokenIssuer(cfg.JWT)
	listing := service.NewListingService(d.DB)
	users := service.NewUserService(d.DB, d.Store, issuer)
	follows := service.NewFollowService(d.DB, listing)
	posts := service.NewPostService(d.DB, d.Media)
	groups := service.NewGroupService(d.DB)
	emails := service.NewEmailService(users, d.Store, d.Mailer)
	pageCache := service.NewPageCache(d.Store, time.Duration(cfg.Cache.IndexSeconds)*time.Second)

	auth := &middleware.Authenticator{Users: users}
	post := handler.NewPostHandler(listing, posts)
	follow := handler.NewFollowHandler(follows)
	user := handler.NewUserHandler(users)
	email := handler.NewEmailHandler(emails)
	admin := handler.NewAdminHandler(groups, users, pageCache)

	r.NoRoute(handler.NotFound)
	if disk, ok := d.Media.(*storage.DiskStorage); ok {
		r.Static("/media", disk.BasePath)
	}

	site := r.Group("/")
	site.Use(auth.Identify())
	{
		site.GET("/", middleware.CachePage(pageCache), post.Index)
		site.GET("/group/:slug/", post.GroupPosts)
		site.GET("/profile/:username/", post.Profile)
		site.GET("/posts/:post_id/", post.PostDetail)
	}

	// 登录态接口
	authed := site.Group("/")
	authed.Use(middleware.LoginRequired())
	{
		authed.GET("/create/", post.CreateForm)
		authed.POST("/create/", post.CreatePost)
		authed.GET("/posts/:post_id/edit/", post.EditForm)
		authed.POST("/posts/:post_id/edit/", post.EditPost)
		authed.POST("/posts/:post_id/comment/", post.AddComment)
		authed.GET("/follow/", follow.FollowIndex)
		authed.GET("/profile/:username/follow/", follow.Follow)
		authed.POST("/profile/:username/follow/", follow.Follow)
		authed.GET("/profile/:username/unfollow/", follow.Unfollow)
		authed.POST("/profile/:username/unfollow/", follow.Unfollow)
	}

	// 账号相关接口
	account := site.Group("/auth")
	{
		account.GET("/signup/", user.SignupForm)
		account.POST("/signup/", user.Signup)
		account.GET("/login/", user.LoginForm)
		account.POST("/login/", user.Login)
		account.GET("/logout/", user.Logout)
		account.POST("/logout/", user.Logout)
		account.POST("/password_change/", middleware.LoginRequired(), user.ChangePassword)
		account.POST("/password_reset/", email.SendResetCode)
		account.POST("/reset/", email.ResetPassword)
	}

	// token相关接口
	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(cfg.Server.CORSOrigins),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: len(cfg.Server.CORSOrigins) > 0,
		MaxAge:           12 * time.Hour,
	}))
	{
		api.POST("/token/", user.Token)
		api.POST("/token/refresh/", user.TokenRefresh)
	}

	// 管理接口
	staff := site.Group("/admin")
	staff.Use(middleware.LoginRequired(), middleware.StaffRequired())
	{
		staff.GET("/groups/", admin.ListGroups)
		staff.POST("/groups/", admin.CreateGroup)
		staff.DELETE("/groups/:slug/", admin.DeleteGroup)
		staff.DELETE("/users/:username/", admin.DeleteUser)
		staff.POST("/cache/clear/", admin.ClearCache)
	}

	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
