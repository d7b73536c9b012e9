package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/infra/ratelimit"
	"weekend-at-joes/backend/internal/infra/token"
	"weekend-at-joes/pkg/ident"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	p, ok := CurrentPrincipal(c)
	if !ok {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, p.UserName)
}

func serve(r *gin.Engine, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.RemoteAddr = "10.1.1.1:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareRequiresValidToken(t *testing.T) {
	tokens := token.NewJWTManager("secret", time.Minute, time.Hour)
	pair, err := tokens.Issue(token.Subject{UserID: ident.New[ident.UserUUID](), UserName: "alice"})
	require.NoError(t, err)

	auth := NewAuthMiddleware(tokens)
	r := gin.New()
	r.GET("/me", auth.Handle(), whoAmI)
	r.GET("/maybe", auth.Optional(), whoAmI)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", pair.RefreshToken).Code)

	rec := serve(r, http.MethodGet, "/me", pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/maybe", "garbage").Body.String())
	assert.Equal(t, "alice", serve(r, http.MethodGet, "/maybe", pair.AccessToken).Body.String())
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	as := func(roles ...string) gin.HandlerFunc {
		return func(c *gin.Context) {
			SetPrincipal(c, user.Principal{UUID: ident.New[ident.UserUUID](), Roles: roles})
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/plain", as(), RequireRole(user.RoleModerator), ok)
	r.GET("/mod", as(user.RoleModerator), RequireRole(user.RoleModerator), ok)
	r.GET("/admin-as-mod", as(user.RoleAdmin), RequireRole(user.RoleModerator), ok)
	r.GET("/mod-as-admin", as(user.RoleModerator), RequireRole(user.RoleAdmin), ok)
	r.GET("/nobody", RequireRole(user.RoleAdmin), ok)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/plain", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/mod", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin-as-mod", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/mod-as-admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/nobody", "").Code)
}

func TestOfflineAuthInjectsFixedUser(t *testing.T) {
	offline := NewOfflineAuthMiddleware(user.Principal{UUID: ident.New[ident.UserUUID](), UserName: "joe"})
	r := gin.New()
	r.GET("/me", offline.Handle(), whoAmI)
	assert.Equal(t, "joe", serve(r, http.MethodGet, "/me", "").Body.String())
}

func TestRequestDeadlineSetsContextDeadline(t *testing.T) {
	r := gin.New()
	r.GET("/slow", RequestDeadline(50*time.Millisecond), func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		<-c.Request.Context().Done()
		assert.ErrorIs(t, c.Request.Context().Err(), context.DeadlineExceeded)
		c.Status(http.StatusServiceUnavailable)
	})
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/slow", "").Code)
}

func TestIPGuardRateLimitsThenBans(t *testing.T) {
	bans := ratelimit.NewMemoryBanList()
	guard := NewIPGuardMiddleware(ratelimit.NewMemoryLimiter(), bans, IPGuardConfig{
		Enabled:     true,
		Window:      time.Minute,
		MaxRequests: 2,
		StrikeLimit: 2,
		BanTTL:      time.Hour,
	})
	r := gin.New()
	r.Use(guard.Handle())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code)
	rec := serve(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/ping", "").Code)

	listed, err := guard.ListBans(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "10.1.1.1", listed[0].Subject)

	require.NoError(t, guard.RemoveBan(context.Background(), "10.1.1.1"))
	listed, err = guard.ListBans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestHoneypotBansCaller(t *testing.T) {
	bans := ratelimit.NewMemoryBanList()
	guard := NewIPGuardMiddleware(ratelimit.NewMemoryLimiter(), bans, IPGuardConfig{Enabled: true})
	r := gin.New()
	r.Use(guard.Handle())
	r.GET("/trap", guard.HoneypotHandler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/trap", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/ping", "").Code)
}
