package captcha

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"weekend-at-joes/backend/internal/infra/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisManager(t *testing.T, opts Options) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, "captcha", time.Minute)
	return NewManager(store, ratelimit.NewRedisLimiter(client, "rl"), opts), mr
}

func TestGenerateStoresAnswerAndVerifyConsumesIt(t *testing.T) {
	m, mr := newRedisManager(t, Options{})
	ctx := context.Background()

	id, img, err := m.Generate(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	payload := img[strings.Index(img, ",")+1:]
	_, err = base64.StdEncoding.DecodeString(payload)
	assert.NoError(t, err)

	_, err = mr.Get("captcha:" + id)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Verify(ctx, id, "wrong"), ErrCaptchaMismatch)
	assert.ErrorIs(t, m.Verify(ctx, id, "wrong"), ErrCaptchaNotFound, "a failed attempt still consumes the answer")

	id, _, err = m.Generate(ctx, "10.0.0.1")
	require.NoError(t, err)
	answer, err := mr.Get("captcha:" + id)
	require.NoError(t, err)
	require.NoError(t, m.Verify(ctx, id, " "+strings.ToUpper(answer)+" "))
	assert.ErrorIs(t, m.Verify(ctx, id, answer), ErrCaptchaNotFound)
}

func TestVerifyMismatch(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	m := NewManager(store, nil, Options{})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", "12345"))
	assert.ErrorIs(t, m.Verify(ctx, "abc", "54321"), ErrCaptchaMismatch)
	assert.ErrorIs(t, m.Verify(ctx, "", "1"), ErrCaptchaNotFound)
}

func TestGenerateRateLimitedPerIP(t *testing.T) {
	m, _ := newRedisManager(t, Options{RateLimit: 2, RateWindow: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := m.Generate(ctx, "10.0.0.2")
		require.NoError(t, err)
	}
	_, _, err := m.Generate(ctx, "10.0.0.2")
	assert.ErrorIs(t, err, ErrRateLimited)

	_, _, err = m.Generate(ctx, "10.0.0.3")
	assert.NoError(t, err)
}
