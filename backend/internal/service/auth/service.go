package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	domain "weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/infra/captcha"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/infra/metrics"
	"weekend-at-joes/backend/internal/infra/ratelimit"
	"weekend-at-joes/backend/internal/infra/token"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/pkg/ident"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNameTaken        = fmt.Errorf("%w: user name already taken", apperr.ErrConstraintViolation)
	ErrInvalidLogin         = fmt.Errorf("%w: invalid user name or password", apperr.ErrUnauthorized)
	ErrCaptchaRequired      = fmt.Errorf("%w: captcha is required", apperr.ErrBadRequest)
	ErrCaptchaInvalid       = fmt.Errorf("%w: captcha verification failed", apperr.ErrBadRequest)
	ErrCaptchaExpired       = fmt.Errorf("%w: captcha expired or not found", apperr.ErrBadRequest)
	ErrCaptchaDisabled      = fmt.Errorf("%w: captcha disabled", apperr.ErrNotFound)
	ErrCaptchaRateLimited   = fmt.Errorf("%w: captcha requests too frequent", apperr.ErrRateLimited)
	ErrLoginRateLimited     = fmt.Errorf("%w: too many login attempts", apperr.ErrRateLimited)
	ErrRefreshTokenRequired = fmt.Errorf("%w: refresh token is required", apperr.ErrBadRequest)
	ErrRefreshTokenInvalid  = fmt.Errorf("%w: refresh token is invalid", apperr.ErrUnauthorized)
	ErrRefreshTokenExpired  = fmt.Errorf("%w: refresh token expired", apperr.ErrUnauthorized)
	ErrRefreshTokenRevoked  = fmt.Errorf("%w: refresh token revoked", apperr.ErrUnauthorized)
)

// CaptchaManager 由 captcha.Manager 实现，未启用时注入 nil。
type CaptchaManager interface {
	Generate(ctx context.Context, ip string) (id string, b64 string, err error)
	Verify(ctx context.Context, id, answer string) error
}

// TokenManager 由 token.JWTManager 实现。
type TokenManager interface {
	Issue(subject token.Subject) (token.Pair, error)
	ParseRefreshToken(raw string) (token.RefreshClaims, error)
}

// Service 处理注册、登录、刷新与登出。
//
// 刷新令牌以 <user, jti> 的形式写入 RefreshStore：刷新时删除旧 jti 再写入新 jti（单次使用），
// 登出时直接删除。
type Service struct {
	users        *repository.UserRepository
	tokens       TokenManager
	refreshStore token.RefreshStore
	captcha      CaptchaManager
	limiter      ratelimit.Limiter
	loginRule    ratelimit.Rule
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// Options 可选依赖。
type Options struct {
	Captcha   CaptchaManager
	Limiter   ratelimit.Limiter
	LoginRule ratelimit.Rule
}

func NewService(users *repository.UserRepository, tokens TokenManager, store token.RefreshStore, opts Options) *Service {
	return &Service{
		users:        users,
		tokens:       tokens,
		refreshStore: store,
		captcha:      opts.Captcha,
		limiter:      opts.Limiter,
		loginRule:    opts.LoginRule,
		logger:       appLogger.Named("auth.service"),
		now:          time.Now,
	}
}

// RegisterParams 注册参数。
type RegisterParams struct {
	UserName    string
	DisplayName string
	Password    string
	CaptchaID   string
	CaptchaCode string
}

// LoginParams 登录参数。
type LoginParams struct {
	UserName string
	Password string
}

// Result 是注册/登录成功后返回给 handler 的用户与令牌。
type Result struct {
	User   domain.User
	Tokens token.Pair
}

func (s *Service) scope(operation string) *zap.SugaredLogger {
	return s.logger.With("operation", operation)
}

// Register 校验验证码（若启用）与用户名唯一性，保存 bcrypt 哈希后直接签发令牌。
func (s *Service) Register(ctx context.Context, params RegisterParams) (Result, error) {
	name := strings.TrimSpace(params.UserName)
	log := s.scope("register").With("user_name", name)

	if s.captcha != nil {
		if strings.TrimSpace(params.CaptchaID) == "" || strings.TrimSpace(params.CaptchaCode) == "" {
			log.Warn("captcha required but missing")
			return Result{}, ErrCaptchaRequired
		}
		if err := s.captcha.Verify(ctx, params.CaptchaID, params.CaptchaCode); err != nil {
			switch {
			case errors.Is(err, captcha.ErrCaptchaNotFound):
				return Result{}, ErrCaptchaExpired
			case errors.Is(err, captcha.ErrCaptchaMismatch):
				log.Warnw("captcha mismatch", "captcha_id", params.CaptchaID)
				return Result{}, ErrCaptchaInvalid
			default:
				return Result{}, fmt.Errorf("captcha verify: %w", err)
			}
		}
	}

	if _, err := s.users.GetByUserName(ctx, name); err == nil {
		log.Warn("user name already taken")
		metrics.RecordAuth("register", "conflict")
		return Result{}, ErrUserNameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Result{}, fmt.Errorf("check user name: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	display := strings.TrimSpace(params.DisplayName)
	if display == "" {
		display = name
	}
	created, err := s.users.Create(ctx, domain.User{
		UUID:         ident.New[ident.UserUUID](),
		UserName:     name,
		DisplayName:  display,
		PasswordHash: string(hash),
		Roles:        domain.EncodeRoles(),
	})
	if err != nil {
		// 并发注册同名用户时由唯一索引兜底。
		if errors.Is(err, repository.ErrConstraintViolation) {
			return Result{}, ErrUserNameTaken
		}
		return Result{}, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueAndStore(ctx, created)
	if err != nil {
		return Result{}, err
	}
	metrics.RecordAuth("register", "success")
	log.Infow("user registered", "user_uuid", created.UUID)
	return Result{User: created, Tokens: tokens}, nil
}

// Login 校验用户名与密码。用户不存在与密码错误返回同一个错误。
func (s *Service) Login(ctx context.Context, params LoginParams) (Result, error) {
	name := strings.TrimSpace(params.UserName)
	log := s.scope("login").With("user_name", name)

	if s.limiter != nil {
		decision, err := s.limiter.Allow(ctx, "login:"+strings.ToLower(name), s.loginRule)
		if err != nil {
			log.Warnw("login rate limit check failed", "error", err)
		} else if !decision.Allowed {
			metrics.RecordAuth("login", "rate_limited")
			return Result{}, ErrLoginRateLimited
		}
	}

	u, err := s.users.GetByUserName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordAuth("login", "invalid")
			return Result{}, ErrInvalidLogin
		}
		return Result{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(params.Password)); err != nil {
		log.Warn("password mismatch")
		metrics.RecordAuth("login", "invalid")
		return Result{}, ErrInvalidLogin
	}

	tokens, err := s.issueAndStore(ctx, u)
	if err != nil {
		return Result{}, err
	}
	metrics.RecordAuth("login", "success")
	log.Infow("login success", "user_uuid", u.UUID)
	return Result{User: u, Tokens: tokens}, nil
}

// Refresh 用刷新令牌换一对新令牌，旧 jti 立即作废。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Result, error) {
	log := s.scope("refresh")
	if strings.TrimSpace(refreshToken) == "" {
		return Result{}, ErrRefreshTokenRequired
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return Result{}, ErrRefreshTokenExpired
		}
		log.Warnw("parse refresh token failed", "error", err)
		return Result{}, ErrRefreshTokenInvalid
	}

	ok, err := s.refreshStore.Exists(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		return Result{}, fmt.Errorf("check refresh token: %w", err)
	}
	if !ok {
		log.Warnw("refresh token revoked", "user_uuid", claims.UserID)
		metrics.RecordAuth("refresh", "revoked")
		return Result{}, ErrRefreshTokenRevoked
	}

	u, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		// 用户已被删除时令牌同样失效。
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.refreshStore.Delete(ctx, claims.UserID, claims.TokenID)
			return Result{}, ErrRefreshTokenInvalid
		}
		return Result{}, fmt.Errorf("load user: %w", err)
	}

	if err := s.refreshStore.Delete(ctx, claims.UserID, claims.TokenID); err != nil {
		return Result{}, fmt.Errorf("delete refresh token: %w", err)
	}
	tokens, err := s.issueAndStore(ctx, u)
	if err != nil {
		return Result{}, err
	}
	metrics.RecordAuth("refresh", "success")
	return Result{User: u, Tokens: tokens}, nil
}

// Logout 撤销刷新令牌。令牌已过期也允许登出。
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrRefreshTokenRequired
	}
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return nil
		}
		return ErrRefreshTokenInvalid
	}
	if err := s.refreshStore.Delete(ctx, claims.UserID, claims.TokenID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	s.scope("logout").Infow("refresh token revoked", "user_uuid", claims.UserID)
	return nil
}

// CaptchaEnabled 是否启用了注册验证码。
func (s *Service) CaptchaEnabled() bool {
	return s != nil && s.captcha != nil
}

// GenerateCaptcha 返回验证码 ID 与 base64 图片。
func (s *Service) GenerateCaptcha(ctx context.Context, ip string) (string, string, error) {
	if !s.CaptchaEnabled() {
		return "", "", ErrCaptchaDisabled
	}
	id, b64, err := s.captcha.Generate(ctx, ip)
	if err != nil {
		if errors.Is(err, captcha.ErrRateLimited) {
			return "", "", ErrCaptchaRateLimited
		}
		return "", "", fmt.Errorf("generate captcha: %w", err)
	}
	return id, b64, nil
}

func (s *Service) issueAndStore(ctx context.Context, u domain.User) (token.Pair, error) {
	pair, err := s.tokens.Issue(token.Subject{UserID: u.UUID, UserName: u.UserName, Roles: u.RoleList()})
	if err != nil {
		return token.Pair{}, fmt.Errorf("issue tokens: %w", err)
	}
	if err := s.refreshStore.Save(ctx, u.UUID, pair.RefreshTokenID, pair.RefreshExpiresAt); err != nil {
		s.scope("issue_tokens").Errorw("save refresh token failed", "error", err, "user_uuid", u.UUID)
		return token.Pair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}
