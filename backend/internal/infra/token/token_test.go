package token

import (
	"context"
	"testing"
	"time"

	"weekend-at-joes/pkg/ident"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	userID := ident.New[ident.UserUUID]()

	pair, err := m.Issue(Subject{UserID: userID, UserName: "alice", Roles: []string{"moderator"}})
	require.NoError(t, err)
	assert.EqualValues(t, 60, pair.ExpiresIn)
	assert.NotEmpty(t, pair.RefreshTokenID)

	access, err := m.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, access.UserID)
	assert.Equal(t, []string{"moderator"}, access.Roles)

	refresh, err := m.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, refresh.UserID)
	assert.Equal(t, pair.RefreshTokenID, refresh.TokenID)

	_, err = m.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = m.ParseRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredAndForeignTokensRejected(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	pair, err := m.Issue(Subject{UserID: ident.New[ident.UserUUID]()})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.ParseAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewJWTManager("other-secret", time.Minute, time.Hour)
	_, err = other.ParseRefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshStores(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stores := map[string]RefreshStore{
		"redis":  NewRedisRefreshStore(client, ""),
		"memory": NewMemoryRefreshStore(),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := ident.New[ident.UserUUID]()

			require.NoError(t, store.Save(ctx, userID, "jti-1", time.Now().Add(time.Hour)))
			ok, err := store.Exists(ctx, userID, "jti-1")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = store.Exists(ctx, ident.New[ident.UserUUID](), "jti-1")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Delete(ctx, userID, "jti-1"))
			ok, err = store.Exists(ctx, userID, "jti-1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}
