package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanLists(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lists := map[string]BanList{
		"redis":  NewRedisBanList(client, "guard"),
		"memory": NewMemoryBanList(),
	}
	for name, list := range lists {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ttl, err := list.Banned(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.Zero(t, ttl)

			require.NoError(t, list.Ban(ctx, "10.0.0.1", time.Minute))
			require.NoError(t, list.Ban(ctx, "10.0.0.2", time.Minute))

			ttl, err = list.Banned(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.Greater(t, ttl, time.Duration(0))

			bans, err := list.List(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, bans, 2)

			bans, err = list.List(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, bans, 1)

			require.NoError(t, list.Unban(ctx, "10.0.0.1"))
			ttl, err = list.Banned(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.Zero(t, ttl)
		})
	}
}

func TestBanTTLSecondsRoundsUp(t *testing.T) {
	now := time.Now()
	b := Ban{ExpiresAt: now.Add(1500 * time.Millisecond)}
	assert.EqualValues(t, 2, b.TTLSeconds(now))
	assert.EqualValues(t, 0, b.TTLSeconds(now.Add(time.Hour)))
}
