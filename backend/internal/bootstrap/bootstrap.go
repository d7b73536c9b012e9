package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"weekend-at-joes/backend/internal/app"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/handler"
	"weekend-at-joes/backend/internal/infra/captcha"
	"weekend-at-joes/backend/internal/infra/livechat"
	"weekend-at-joes/backend/internal/infra/metrics"
	"weekend-at-joes/backend/internal/infra/ratelimit"
	"weekend-at-joes/backend/internal/infra/token"
	"weekend-at-joes/backend/internal/middleware"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/backend/internal/server"
	"weekend-at-joes/backend/internal/service/adminuser"
	articlesvc "weekend-at-joes/backend/internal/service/article"
	authsvc "weekend-at-joes/backend/internal/service/auth"
	bucketsvc "weekend-at-joes/backend/internal/service/bucket"
	chatsvc "weekend-at-joes/backend/internal/service/chat"
	forumsvc "weekend-at-joes/backend/internal/service/forum"
	usersvc "weekend-at-joes/backend/internal/service/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	limiterPrefix = "joes:rl"
	banPrefix     = "joes:ban"
	refreshPrefix = "joes:refresh"
)

type Application struct {
	Resources *app.Resources
	AuthSvc   *authsvc.Service
	UserSvc   *usersvc.Service
	Broker    livechat.Broker
	Router    http.Handler
}

// BuildApplication 按配置组装仓储、服务、handler 与路由。
// 有 Redis 时限流、刷新令牌、验证码与聊天推送走 Redis，否则退回进程内实现。
func BuildApplication(ctx context.Context, logger *zap.SugaredLogger, resources *app.Resources) (*Application, error) {
	cfg := resources.Config.Server
	repos := repository.NewRepositories(resources.DBConn())

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if !resources.Config.IsLocal() {
			return nil, fmt.Errorf("JWT_SECRET is required in %s mode", resources.Config.Mode)
		}
		secret = uuid.NewString()
		logger.Infow("generated ephemeral jwt secret for local mode")
	}
	tokens := token.NewJWTManager(secret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	var (
		refreshStore token.RefreshStore
		limiter      ratelimit.Limiter
		bans         ratelimit.BanList
		broker       livechat.Broker
	)
	if resources.Redis != nil {
		refreshStore = token.NewRedisRefreshStore(resources.Redis, refreshPrefix)
		limiter = ratelimit.NewRedisLimiter(resources.Redis, limiterPrefix)
		bans = ratelimit.NewRedisBanList(resources.Redis, banPrefix)
		broker = livechat.NewRedisBroker(resources.Redis)
	} else {
		refreshStore = token.NewMemoryRefreshStore()
		limiter = ratelimit.NewMemoryLimiter()
		bans = ratelimit.NewMemoryBanList()
		broker = livechat.NewMemoryBroker()
		logger.Infow("redis not configured; using in-memory stores, state won't survive restarts")
	}

	captchaManager, err := initCaptchaManager(resources, limiter, logger)
	if err != nil {
		return nil, err
	}

	authOpts := authsvc.Options{
		Limiter:   limiter,
		LoginRule: ratelimit.Rule{Limit: cfg.Limits.LoginLimit, Window: cfg.Limits.LoginWindow},
	}
	if captchaManager != nil {
		authOpts.Captcha = captchaManager
	}
	authService := authsvc.NewService(repos.Users, tokens, refreshStore, authOpts)
	userService := usersvc.NewService(repos.Users)
	articleService := articlesvc.NewService(repos.Articles, cfg.Pagination.MaxPageSize)
	forumService := forumsvc.NewService(repos.Forums, repos.Threads, repos.Posts, limiter, forumsvc.Config{
		MaxPageSize: cfg.Pagination.MaxPageSize,
		PostRule:    ratelimit.Rule{Limit: cfg.Limits.PostLimit, Window: cfg.Limits.PostWindow},
	})
	adminUserService := adminuser.NewService(adminuser.Config{MaxPageSize: cfg.Pagination.MaxPageSize}, repos.Users, logger.With("component", "service.adminuser"))
	bucketService := bucketsvc.NewService(repos.Buckets, repos.Questions, repos.Answers)
	chatService := chatsvc.NewService(repos.Chats, repos.Messages, limiter,
		ratelimit.Rule{Limit: cfg.Limits.MessageLimit, Window: cfg.Limits.MessageWindow})

	authMiddleware, err := buildAuthenticator(ctx, resources, repos.Users, tokens, logger)
	if err != nil {
		return nil, err
	}

	var (
		ipGuard        *middleware.IPGuardMiddleware
		ipGuardHandler *handler.IPGuardHandler
	)
	if cfg.IPGuard.Enabled {
		ipGuard = middleware.NewIPGuardMiddleware(limiter, bans, middleware.IPGuardConfig{
			Enabled:      true,
			Window:       cfg.IPGuard.Window,
			MaxRequests:  cfg.IPGuard.MaxRequests,
			StrikeWindow: cfg.IPGuard.StrikeWindow,
			StrikeLimit:  cfg.IPGuard.StrikeLimit,
			BanTTL:       cfg.IPGuard.BanTTL,
			HoneypotPath: cfg.IPGuard.HoneypotPath,
		})
		ipGuardHandler = handler.NewIPGuardHandler(ipGuard)
	}

	originAllowed := server.OriginAllowed(cfg.CORS.AllowedOrigins)
	checkOrigin := func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// 非浏览器客户端不带 Origin
		return origin == "" || originAllowed(origin)
	}

	var staticFS http.FileSystem
	if cfg.FrontendDist != "" {
		staticFS = server.NewSPAFileSystem(cfg.FrontendDist)
		logger.Infow("serving frontend", "dir", cfg.FrontendDist)
	}

	metrics.MustRegister()

	router := server.NewRouter(server.RouterOptions{
		AuthHandler:    handler.NewAuthHandler(authService),
		UserHandler:    handler.NewUserHandler(userService),
		ArticleHandler: handler.NewArticleHandler(articleService),
		ForumHandler:   handler.NewForumHandler(forumService),
		BucketHandler:  handler.NewBucketHandler(bucketService),
		ChatHandler:    handler.NewChatHandler(chatService, broker, checkOrigin),
		HealthHandler:  handler.NewHealthHandler(resources.DBConn()),
		AuthMW:         authMiddleware,
		IPGuard:        ipGuard,
		IPGuardHandler: ipGuardHandler,
		AdminUser:      handler.NewAdminUserHandler(adminUserService),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		StaticFS:       staticFS,
	})

	return &Application{
		Resources: resources,
		AuthSvc:   authService,
		UserSvc:   userService,
		Broker:    broker,
		Router:    router,
	}, nil
}

// Close 释放进程内的推送资源，外部资源由 Resources 负责。
func (a *Application) Close() error {
	if a == nil {
		return nil
	}
	if mb, ok := a.Broker.(*livechat.MemoryBroker); ok {
		mb.Close()
	}
	return nil
}

func buildAuthenticator(ctx context.Context, resources *app.Resources, users *repository.UserRepository, tokens *token.JWTManager, logger *zap.SugaredLogger) (middleware.Authenticator, error) {
	if !resources.Config.IsLocal() {
		return middleware.NewAuthMiddleware(tokens), nil
	}
	local, err := app.EnsureLocalUser(ctx, users, resources.Config.Local)
	if err != nil {
		return nil, err
	}
	logger.Infow("local mode: all requests act as the offline user", "user", local.UserName)
	return middleware.NewOfflineAuthMiddleware(user.PrincipalOf(local)), nil
}

func initCaptchaManager(resources *app.Resources, limiter ratelimit.Limiter, logger *zap.SugaredLogger) (*captcha.Manager, error) {
	opts, err := captcha.LoadOptions()
	if err != nil {
		logger.Errorw("load captcha config failed", "error", err)
		return nil, err
	}
	if !opts.Enabled {
		return nil, nil
	}

	var store captcha.AnswerStore
	if resources.Redis != nil {
		store = captcha.NewRedisStore(resources.Redis, opts.Prefix, opts.TTL)
	} else {
		if !resources.Config.IsLocal() {
			logger.Warnw("captcha enabled without redis; answers are kept in memory")
		}
		store = captcha.NewMemoryStore(opts.TTL)
	}

	logger.Infow("captcha enabled", "prefix", opts.Prefix, "ttl", opts.TTL)
	return captcha.NewManager(store, limiter, opts), nil
}
