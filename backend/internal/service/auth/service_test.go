package auth

import (
	"context"
	"testing"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	"weekend-at-joes/backend/internal/infra/captcha"
	"weekend-at-joes/backend/internal/infra/ratelimit"
	"weekend-at-joes/backend/internal/infra/token"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/backend/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaptcha struct {
	answer string
}

func (f *fakeCaptcha) Generate(context.Context, string) (string, string, error) {
	return "id-1", "data:image/png;base64,AAAA", nil
}

func (f *fakeCaptcha) Verify(_ context.Context, id, answer string) error {
	if id != "id-1" {
		return captcha.ErrCaptchaNotFound
	}
	if answer != f.answer {
		return captcha.ErrCaptchaMismatch
	}
	return nil
}

func newService(t *testing.T, opts Options) (*Service, *token.JWTManager) {
	t.Helper()
	db := repotest.NewDB(t)
	tokens := token.NewJWTManager("secret", time.Minute, time.Hour)
	return NewService(repository.NewUserRepository(db), tokens, token.NewMemoryRefreshStore(), opts), tokens
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	svc, tokens := newService(t, Options{})
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterParams{UserName: " alice ", Password: "hunter22hunter"})
	require.NoError(t, err)
	assert.Equal(t, "alice", reg.User.UserName)
	assert.Equal(t, "alice", reg.User.DisplayName)
	assert.NotEqual(t, "hunter22hunter", reg.User.PasswordHash)

	claims, err := tokens.ParseAccessToken(reg.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.UUID, claims.UserID)

	_, err = svc.Register(ctx, RegisterParams{UserName: "alice", Password: "whatever123"})
	assert.ErrorIs(t, err, ErrUserNameTaken)
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)

	_, err = svc.Login(ctx, LoginParams{UserName: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidLogin)
	_, err = svc.Login(ctx, LoginParams{UserName: "nobody", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidLogin)

	login, err := svc.Login(ctx, LoginParams{UserName: "alice", Password: "hunter22hunter"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Tokens.RefreshTokenID, refreshed.Tokens.RefreshTokenID)

	_, err = svc.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked, "rotated token cannot be reused")

	require.NoError(t, svc.Logout(ctx, refreshed.Tokens.RefreshToken))
	_, err = svc.Refresh(ctx, refreshed.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)

	_, err = svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrRefreshTokenRequired)
	_, err = svc.Refresh(ctx, login.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestRegisterWithCaptcha(t *testing.T) {
	svc, _ := newService(t, Options{Captcha: &fakeCaptcha{answer: "12345"}})
	ctx := context.Background()
	require.True(t, svc.CaptchaEnabled())

	_, err := svc.Register(ctx, RegisterParams{UserName: "bob", Password: "password123"})
	assert.ErrorIs(t, err, ErrCaptchaRequired)

	_, err = svc.Register(ctx, RegisterParams{UserName: "bob", Password: "password123", CaptchaID: "id-1", CaptchaCode: "00000"})
	assert.ErrorIs(t, err, ErrCaptchaInvalid)

	_, err = svc.Register(ctx, RegisterParams{UserName: "bob", Password: "password123", CaptchaID: "gone", CaptchaCode: "12345"})
	assert.ErrorIs(t, err, ErrCaptchaExpired)

	_, err = svc.Register(ctx, RegisterParams{UserName: "bob", Password: "password123", CaptchaID: "id-1", CaptchaCode: "12345"})
	assert.NoError(t, err)
}

func TestGenerateCaptchaDisabled(t *testing.T) {
	svc, _ := newService(t, Options{})
	_, _, err := svc.GenerateCaptcha(context.Background(), "10.0.0.1")
	assert.ErrorIs(t, err, ErrCaptchaDisabled)
}

func TestLoginRateLimited(t *testing.T) {
	svc, _ := newService(t, Options{
		Limiter:   ratelimit.NewMemoryLimiter(),
		LoginRule: ratelimit.Rule{Limit: 2, Window: time.Minute},
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, LoginParams{UserName: "Carol", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidLogin)
	}
	_, err := svc.Login(ctx, LoginParams{UserName: "carol", Password: "x"})
	assert.ErrorIs(t, err, ErrLoginRateLimited)
	assert.ErrorIs(t, err, apperr.ErrRateLimited)
}
