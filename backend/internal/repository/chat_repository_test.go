package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	"weekend-at-joes/backend/internal/domain/chat"
	"weekend-at-joes/pkg/ident"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMembershipAndMessagePaging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)
	leader := seedUser(t, db, "leader")
	friend := seedUser(t, db, "friend")
	stranger := seedUser(t, db, "stranger")

	c, err := chats.CreateWithLeader(ctx, chat.Chat{UUID: ident.New[ident.ChatUUID](), LeaderUUID: leader.UUID})
	require.NoError(t, err)
	require.NoError(t, chats.AddUser(ctx, c.UUID, friend.UUID))
	assert.ErrorIs(t, chats.AddUser(ctx, c.UUID, friend.UUID), apperr.ErrConstraintViolation)

	member, err := chats.IsMember(ctx, c.UUID, friend.UUID)
	require.NoError(t, err)
	assert.True(t, member)
	member, err = chats.IsMember(ctx, c.UUID, stranger.UUID)
	require.NoError(t, err)
	assert.False(t, member)

	members, err := chats.Members(ctx, c.UUID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		_, err := messages.Create(ctx, chat.Message{
			UUID:       ident.New[ident.MessageUUID](),
			ChatUUID:   c.UUID,
			AuthorUUID: leader.UUID,
			Content:    fmt.Sprintf("m%02d", i),
			CreateDate: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	first, err := messages.PageForChat(ctx, c.UUID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 30, first.TotalCount)
	require.Len(t, first.Items, chat.MessagePageSize)
	assert.Equal(t, "m29", first.Items[0].Message.Content)
	assert.Equal(t, "leader", first.Items[0].User.UserName)

	second, err := messages.PageForChat(ctx, c.UUID, 1)
	require.NoError(t, err)
	require.Len(t, second.Items, 5)
	assert.Equal(t, "m00", second.Items[4].Message.Content)

	_, err = messages.Delete(ctx, first.Items[0].Message.UUID)
	assert.ErrorIs(t, err, ErrUnsupported)
}
