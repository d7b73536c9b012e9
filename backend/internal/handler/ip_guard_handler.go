package handler

import (
	"net/http"
	"strings"
	"time"

	response "weekend-at-joes/backend/internal/infra/common"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IPGuardHandler 提供黑名单查看与解封接口，路由层已限制为管理员。
type IPGuardHandler struct {
	guard  *middleware.IPGuardMiddleware
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewIPGuardHandler 构建 Handler，并复用统一日志实例。
func NewIPGuardHandler(guard *middleware.IPGuardMiddleware) *IPGuardHandler {
	return &IPGuardHandler{guard: guard, logger: appLogger.Named("handler.ipguard"), now: time.Now}
}

type banEntry struct {
	IP         string    `json:"ip"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTLSeconds int64     `json:"ttl_seconds"`
}

// ListBans 返回当前仍生效的封禁列表。
func (h *IPGuardHandler) ListBans(c *gin.Context) {
	if h.guard == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, "ip guard disabled", nil)
		return
	}
	bans, err := h.guard.ListBans(c.Request.Context())
	if err != nil {
		h.logger.Errorw("list bans failed", "error", err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list bans failed", nil)
		return
	}
	now := h.now()
	items := make([]banEntry, 0, len(bans))
	for _, b := range bans {
		items = append(items, banEntry{IP: b.Subject, ExpiresAt: b.ExpiresAt, TTLSeconds: b.TTLSeconds(now)})
	}
	response.Success(c, http.StatusOK, gin.H{"items": items}, nil)
}

// RemoveBan 手动解除给定 IP 的封禁。
func (h *IPGuardHandler) RemoveBan(c *gin.Context) {
	if h.guard == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, "ip guard disabled", nil)
		return
	}
	ip := strings.TrimSpace(c.Param("ip"))
	if ip == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "ip required", nil)
		return
	}
	if err := h.guard.RemoveBan(c.Request.Context(), ip); err != nil {
		h.logger.Errorw("remove ban failed", "ip", ip, "error", err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "remove ban failed", nil)
		return
	}
	h.logger.Infow("ban removed", "ip", ip)
	response.NoContent(c)
}
