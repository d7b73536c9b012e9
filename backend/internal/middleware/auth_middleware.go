package middleware

import (
	"errors"
	"net/http"
	"strings"

	"weekend-at-joes/backend/internal/domain/user"
	response "weekend-at-joes/backend/internal/infra/common"
	"weekend-at-joes/backend/internal/infra/token"

	"github.com/gin-gonic/gin"
)

// AccessTokenParser 由 token.JWTManager 实现。
type AccessTokenParser interface {
	ParseAccessToken(raw string) (token.AccessClaims, error)
}

// AuthMiddleware 校验 Bearer 访问令牌，把用户身份写入上下文。
type AuthMiddleware struct {
	tokens AccessTokenParser
}

func NewAuthMiddleware(tokens AccessTokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing authorization header")
			return
		}
		principal, err := m.parse(raw)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, token.ErrTokenExpired) {
				msg = "token expired"
			}
			response.Abort(c, http.StatusUnauthorized, response.ErrUnauthorized, msg)
			return
		}
		SetPrincipal(c, principal)
		c.Next()
	}
}

// Optional 令牌无效时按匿名处理，不返回 401。
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if principal, err := m.parse(raw); err == nil {
				SetPrincipal(c, principal)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) parse(raw string) (user.Principal, error) {
	claims, err := m.tokens.ParseAccessToken(raw)
	if err != nil {
		return user.Principal{}, err
	}
	return user.Principal{UUID: claims.UserID, UserName: claims.UserName, Roles: claims.Roles}, nil
}

// bearerToken 读取 Authorization 头；浏览器无法给 websocket 握手加请求头，
// 因此 websocket 请求额外接受 ?access_token=。
func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		if c.IsWebsocket() {
			raw := strings.TrimSpace(c.Query("access_token"))
			return raw, raw != ""
		}
		return "", false
	}
	raw := strings.TrimSpace(header[7:])
	return raw, raw != ""
}

// RequireRole 必须挂在 Handle 之后；角色不足返回 403。
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.ErrUnauthorized, "authentication required")
			return
		}
		if !principal.HasRole(role) {
			response.Abort(c, http.StatusForbidden, response.ErrForbidden, role+" privilege required")
			return
		}
		c.Next()
	}
}
