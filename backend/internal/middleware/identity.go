package middleware

import (
	"weekend-at-joes/backend/internal/domain/user"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authenticator 抽象在线（JWT）与本地（固定用户）两种鉴权方式。
type Authenticator interface {
	// Handle 要求请求携带身份，缺失时返回 401。
	Handle() gin.HandlerFunc
	// Optional 有身份时写入上下文，没有也放行。
	Optional() gin.HandlerFunc
}

// SetPrincipal 把身份写入 gin 上下文。
func SetPrincipal(c *gin.Context, p user.Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal 读取当前请求的身份。
func CurrentPrincipal(c *gin.Context) (user.Principal, bool) {
	raw, ok := c.Get(principalKey)
	if !ok {
		return user.Principal{}, false
	}
	p, ok := raw.(user.Principal)
	return p, ok
}
