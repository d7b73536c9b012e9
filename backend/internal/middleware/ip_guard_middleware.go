package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	response "weekend-at-joes/backend/internal/infra/common"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IPGuardConfig IP 限流与封禁参数。窗口内超限记一次 strike，strike 达到上限即封禁。
type IPGuardConfig struct {
	Enabled      bool
	Window       time.Duration
	MaxRequests  int
	StrikeWindow time.Duration
	StrikeLimit  int
	BanTTL       time.Duration
	HoneypotPath string
	ListLimit    int
}

// IPGuardMiddleware 在最外层按客户端 IP 限流，并维护临时黑名单。
type IPGuardMiddleware struct {
	limiter ratelimit.Limiter
	bans    ratelimit.BanList
	cfg     IPGuardConfig
	logger  *zap.SugaredLogger
}

func NewIPGuardMiddleware(limiter ratelimit.Limiter, bans ratelimit.BanList, cfg IPGuardConfig) *IPGuardMiddleware {
	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Second
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 120
	}
	if cfg.StrikeWindow <= 0 {
		cfg.StrikeWindow = 10 * time.Minute
	}
	if cfg.StrikeLimit <= 0 {
		cfg.StrikeLimit = 5
	}
	if cfg.BanTTL <= 0 {
		cfg.BanTTL = 30 * time.Minute
	}
	if cfg.HoneypotPath == "" {
		cfg.HoneypotPath = "__internal__/trace"
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 200
	}
	return &IPGuardMiddleware{
		limiter: limiter,
		bans:    bans,
		cfg:     cfg,
		logger:  appLogger.Named("middleware.ipguard"),
	}
}

// HoneypotPath 蜜罐接口路径（相对 /api）。
func (m *IPGuardMiddleware) HoneypotPath() string {
	return m.cfg.HoneypotPath
}

func (m *IPGuardMiddleware) active() bool {
	return m != nil && m.cfg.Enabled && m.limiter != nil && m.bans != nil
}

func (m *IPGuardMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := strings.TrimSpace(c.ClientIP())
		if !m.active() || ip == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		ttl, err := m.bans.Banned(ctx, ip)
		if err != nil {
			m.logger.Warnw("check ban failed", "ip", ip, "error", err)
		} else if ttl > 0 {
			m.logger.Infow("blocked by ipguard", "ip", ip, "ttl_seconds", int(ttl.Seconds()))
			response.Abort(c, http.StatusForbidden, response.ErrForbidden, "access temporarily denied")
			return
		}

		decision, err := m.limiter.Allow(ctx, "ipguard:cnt:"+ip, ratelimit.Rule{Limit: m.cfg.MaxRequests, Window: m.cfg.Window})
		if err != nil {
			// 限流存储不可用时放行，避免整站不可用。
			m.logger.Warnw("ip guard allow failed", "ip", ip, "error", err)
			c.Next()
			return
		}
		if !decision.Allowed {
			m.recordStrike(ctx, ip)
			if decision.RetryAfter > 0 {
				c.Header("Retry-After", fmt.Sprintf("%d", int(decision.RetryAfter.Seconds())))
			}
			response.Abort(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "request rate limited")
			return
		}
		c.Next()
	}
}

// HoneypotHandler 正常用户不会访问蜜罐路径，命中即封禁；统一返回 204 不暴露提示。
func (m *IPGuardMiddleware) HoneypotHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := strings.TrimSpace(c.ClientIP())
		if m.active() && ip != "" {
			if err := m.bans.Ban(c.Request.Context(), ip, m.cfg.BanTTL); err != nil {
				m.logger.Warnw("honeypot ban failed", "ip", ip, "error", err)
			} else {
				m.logger.Warnw("honeypot triggered", "ip", ip)
			}
		}
		c.Status(http.StatusNoContent)
	}
}

func (m *IPGuardMiddleware) recordStrike(ctx context.Context, ip string) {
	if m.cfg.StrikeLimit <= 1 {
		m.ban(ctx, ip)
		return
	}
	decision, err := m.limiter.Allow(ctx, "ipguard:str:"+ip, ratelimit.Rule{Limit: m.cfg.StrikeLimit - 1, Window: m.cfg.StrikeWindow})
	if err != nil {
		m.logger.Warnw("record strike failed", "ip", ip, "error", err)
		return
	}
	if !decision.Allowed {
		m.ban(ctx, ip)
	}
}

func (m *IPGuardMiddleware) ban(ctx context.Context, ip string) {
	if err := m.bans.Ban(ctx, ip, m.cfg.BanTTL); err != nil {
		m.logger.Warnw("ban failed", "ip", ip, "error", err)
		return
	}
	m.logger.Warnw("ip banned after repeated rate limit strikes", "ip", ip, "ban_ttl", m.cfg.BanTTL)
}

// ListBans 返回仍然有效的封禁，供管理员查看。
func (m *IPGuardMiddleware) ListBans(ctx context.Context) ([]ratelimit.Ban, error) {
	if m == nil || m.bans == nil {
		return nil, fmt.Errorf("ip guard not initialised")
	}
	return m.bans.List(ctx, m.cfg.ListLimit)
}

// RemoveBan 手动解除封禁。
func (m *IPGuardMiddleware) RemoveBan(ctx context.Context, ip string) error {
	if m == nil || m.bans == nil {
		return fmt.Errorf("ip guard not initialised")
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return fmt.Errorf("ip required")
	}
	return m.bans.Unban(ctx, ip)
}
