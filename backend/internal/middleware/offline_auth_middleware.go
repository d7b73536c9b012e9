package middleware

import (
	"weekend-at-joes/backend/internal/domain/user"

	"github.com/gin-gonic/gin"
)

// OfflineAuthMiddleware 本地模式下直接注入固定用户，跳过 JWT 校验。
type OfflineAuthMiddleware struct {
	principal user.Principal
}

func NewOfflineAuthMiddleware(principal user.Principal) *OfflineAuthMiddleware {
	return &OfflineAuthMiddleware{principal: principal}
}

func (m *OfflineAuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		SetPrincipal(c, m.principal)
		c.Next()
	}
}

func (m *OfflineAuthMiddleware) Optional() gin.HandlerFunc {
	return m.Handle()
}
