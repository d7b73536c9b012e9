package livechat

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

func receive(t *testing.T, sub Subscription) []byte {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func exerciseBroker(t *testing.T, b Broker) {
	ctx := context.Background()
	chatA := ident.New[ident.ChatUUID]()
	chatB := ident.New[ident.ChatUUID]()

	subA, err := b.Subscribe(ctx, chatA)
	require.NoError(t, err)
	subB, err := b.Subscribe(ctx, chatB)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, chatA, []byte(`{"n":1}`)))
	require.NoError(t, b.Publish(ctx, chatB, []byte(`{"n":2}`)))

	assert.JSONEq(t, `{"n":1}`, string(receive(t, subA)))
	assert.JSONEq(t, `{"n":2}`, string(receive(t, subB)))

	require.NoError(t, subA.Close())
	require.NoError(t, subA.Close())
	require.Eventually(t, func() bool {
		_, ok := <-subA.C()
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, subB.Close())
}

func TestMemoryBroker(t *testing.T) {
	b := NewMemoryBroker()
	exerciseBroker(t, b)

	sub, err := b.Subscribe(context.Background(), ident.New[ident.ChatUUID]())
	require.NoError(t, err)
	b.Close()
	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.ErrorIs(t, b.Publish(context.Background(), ident.New[ident.ChatUUID](), nil), ErrClosed)
}

func TestRedisBroker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseBroker(t, NewRedisBroker(client))
}

func TestChannelName(t *testing.T) {
	id := ident.MustParse[ident.ChatUUID]("11111111-2222-4333-8444-555555555555")
	assert.Equal(t, "chat:11111111-2222-4333-8444-555555555555", Channel(id))
}
