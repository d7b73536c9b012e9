package server

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/handler"
	response "weekend-at-joes/backend/internal/infra/common"
	"weekend-at-joes/backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ArticleHandler *handler.ArticleHandler
	ForumHandler   *handler.ForumHandler
	BucketHandler  *handler.BucketHandler
	ChatHandler    *handler.ChatHandler
	HealthHandler  *handler.HealthHandler
	AuthMW         middleware.Authenticator
	IPGuard        *middleware.IPGuardMiddleware
	IPGuardHandler *handler.IPGuardHandler
	AdminUser      *handler.AdminUserHandler
	// AllowedOrigins 为额外允许的跨域来源，localhost 始终允许。
	AllowedOrigins []string
	RequestTimeout time.Duration
	// StaticFS 为前端构建产物，nil 时不托管前端。
	StaticFS http.FileSystem
}

// OriginAllowed 返回 CORS 与 websocket 共用的来源校验。
func OriginAllowed(allowed []string) func(origin string) bool {
	return func(origin string) bool {
		if origin == "" {
			return false
		}
		if origin == "null" {
			return true
		}
		if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// NewRouter 构建应用的 Gin Engine，汇总所有 REST 接口与公共中间件配置。
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// IP Guard 中间件会在最前层按照 IP 做限流与黑名单处理。
	if opts.IPGuard != nil {
		r.Use(opts.IPGuard.Handle())
	}

	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
		AllowOriginFunc:  OriginAllowed(opts.AllowedOrigins),
	}))
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: gin.LogFormatter(func(params gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s\" %d %s\n",
				params.ClientIP,
				params.TimeStamp.Format(time.RFC3339),
				params.Method,
				params.Path,
				params.StatusCode,
				params.Latency,
			)
		}),
		SkipPaths: []string{"/metrics", "/healthz"},
	}))
	r.Use(middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.HealthHandler != nil {
		r.GET("/healthz", opts.HealthHandler.Healthz)
	}

	auth := func(c *gin.Context) { c.Next() }
	optional := auth
	if opts.AuthMW != nil {
		auth = opts.AuthMW.Handle()
		optional = opts.AuthMW.Optional()
	}

	api := r.Group("/api")
	api.Use(middleware.RequestDeadline(opts.RequestTimeout))
	{
		if opts.IPGuard != nil && opts.IPGuard.HoneypotPath() != "" {
			// 蜜罐接口：正常客户端不会请求，命中即封禁该 IP。
			honeypotPath := strings.TrimLeft(opts.IPGuard.HoneypotPath(), "/")
			if honeypotPath != "" {
				api.Any("/"+honeypotPath, opts.IPGuard.HoneypotHandler())
			}
		}

		if h := opts.AuthHandler; h != nil {
			authGroup := api.Group("/auth")
			authGroup.GET("/captcha", h.Captcha)
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/refresh", h.Refresh)
			authGroup.POST("/logout", h.Logout)
		}

		if h := opts.UserHandler; h != nil {
			users := api.Group("/users")
			users.GET("/me", auth, h.Me)
			users.PUT("/me/display_name", auth, h.UpdateDisplayName)
			users.DELETE("/me", auth, h.Delete)
			users.GET("/:uuid", h.Get)
		}

		if h := opts.ArticleHandler; h != nil {
			articles := api.Group("/article")
			articles.GET("/articles/:index/:size", h.List)
			articles.GET("/users_unpublished", auth, h.Unpublished)
			articles.GET("/:uuid", optional, h.Get)
			articles.POST("/", auth, h.Create)
			articles.PUT("/", auth, h.Update)
			articles.PUT("/publish/:uuid", auth, h.Publish)
			articles.PUT("/unpublish/:uuid", auth, h.Unpublish)
			articles.DELETE("/:uuid", auth, h.Delete)
		}

		if h := opts.ForumHandler; h != nil {
			forums := api.Group("/forums")
			forums.GET("", h.ListForums)
			forums.GET("/:uuid", h.GetForum)
			forums.GET("/:uuid/threads/:index/:size", h.Threads)
			forums.POST("", auth, middleware.RequireRole(user.RoleAdmin), h.CreateForum)
			forums.DELETE("/:uuid", auth, middleware.RequireRole(user.RoleAdmin), h.DeleteForum)

			threads := api.Group("/threads")
			threads.POST("", auth, h.CreateThread)
			threads.GET("/:uuid", h.GetThread)
			moderator := middleware.RequireRole(user.RoleModerator)
			threads.PUT("/:uuid/lock", auth, moderator, h.LockThread)
			threads.PUT("/:uuid/unlock", auth, moderator, h.UnlockThread)
			threads.PUT("/:uuid/archive", auth, moderator, h.ArchiveThread)

			posts := api.Group("/posts")
			posts.POST("", auth, h.Reply)
			posts.PUT("", auth, h.EditPost)
			posts.PUT("/:uuid/censor", auth, moderator, h.CensorPost)
		}

		if h := opts.BucketHandler; h != nil {
			buckets := api.Group("/buckets")
			buckets.POST("", auth, h.Create)
			buckets.GET("/public", h.Public)
			buckets.GET("/mine", auth, h.Mine)
			buckets.GET("/:uuid", h.Get)
			buckets.POST("/:uuid/join", auth, h.Join)
			buckets.GET("/:uuid/users", auth, h.Participants)
			buckets.GET("/:uuid/pending", auth, h.Pending)
			buckets.GET("/:uuid/is_owner", auth, h.IsOwner)
			buckets.PUT("/:uuid/approve/:user_uuid", auth, h.Approve)
			buckets.DELETE("/:uuid/users/:user_uuid", auth, h.RemoveUser)
			buckets.GET("/:uuid/questions", auth, h.Questions)
			buckets.GET("/:uuid/questions/random", auth, h.RandomQuestion)

			questions := api.Group("/questions")
			questions.POST("", auth, h.CreateQuestion)
			questions.PUT("/:uuid/floor", auth, h.PutOnFloor)
			questions.PUT("/:uuid/unfloor", auth, h.TakeOffFloor)
			questions.DELETE("/:uuid", auth, h.DeleteQuestion)

			answers := api.Group("/answers")
			answers.POST("", auth, h.CreateAnswer)
			answers.GET("/:uuid", auth, h.GetAnswer)
			answers.DELETE("/:uuid", auth, h.DeleteAnswer)
		}

		if h := opts.ChatHandler; h != nil {
			chats := api.Group("/chats", auth)
			chats.POST("", h.Create)
			chats.GET("", h.List)
			chats.POST("/:uuid/users", h.AddUser)
			chats.GET("/:uuid/messages/:index", h.Messages)
			chats.POST("/:uuid/messages", h.Send)
			chats.GET("/:uuid/live", h.Live)
		}

		if h := opts.AdminUser; h != nil {
			admin := api.Group("/admin/users", auth, middleware.RequireRole(user.RoleAdmin))
			admin.GET("/:index/:size", h.List)
			admin.PUT("/:uuid/roles", h.SetRoles)
		}

		if opts.IPGuardHandler != nil {
			// 管理员可在此查看并解除封禁的 IP。
			ipguard := api.Group("/admin/ip-guard", auth, middleware.RequireRole(user.RoleAdmin))
			ipguard.GET("/bans", opts.IPGuardHandler.ListBans)
			ipguard.DELETE("/bans/:ip", opts.IPGuardHandler.RemoveBan)
		}
	}

	if opts.StaticFS != nil {
		r.NoRoute(frontendHandler(opts.StaticFS))
	} else {
		r.NoRoute(apiNotFound)
	}
	return r
}

func apiNotFound(c *gin.Context) {
	response.Fail(c, http.StatusNotFound, response.ErrNotFound, "route not found", nil)
}
