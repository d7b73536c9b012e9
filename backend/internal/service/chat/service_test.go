package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	domain "weekend-at-joes/backend/internal/domain/chat"
	"weekend-at-joes/backend/internal/infra/ratelimit"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/backend/internal/repository/repotest"
	"weekend-at-joes/pkg/ident"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMembershipAndMessages(t *testing.T) {
	db := repotest.NewDB(t)
	repos := repository.NewRepositories(db)
	svc := NewService(repos.Chats, repos.Messages, ratelimit.NewMemoryLimiter(), ratelimit.Rule{})
	ctx := context.Background()
	_, leader := repotest.SeedUser(t, db, "leader")
	_, friend := repotest.SeedUser(t, db, "friend")
	_, stranger := repotest.SeedUser(t, db, "stranger")

	name := " weekend "
	c, err := svc.Create(ctx, leader, &name)
	require.NoError(t, err)
	require.NotNil(t, c.ChatName)
	assert.Equal(t, "weekend", *c.ChatName)

	assert.ErrorIs(t, svc.AddUser(ctx, friend, c.UUID, friend.UUID), ErrNotLeader)
	require.NoError(t, svc.AddUser(ctx, leader, c.UUID, friend.UUID))
	assert.ErrorIs(t, svc.AddUser(ctx, leader, c.UUID, friend.UUID), apperr.ErrConstraintViolation)
	assert.ErrorIs(t, svc.AddUser(ctx, leader, ident.New[ident.ChatUUID](), friend.UUID), ErrNotLeader)

	chats, err := svc.ForUser(ctx, friend)
	require.NoError(t, err)
	assert.Len(t, chats, 1)

	members, err := svc.Members(ctx, friend, c.UUID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = svc.Send(ctx, friend, c.UUID, SendParams{AuthorUUID: leader.UUID, Content: "spoof"})
	assert.ErrorIs(t, err, ErrAuthorMismatch)
	_, err = svc.Send(ctx, stranger, c.UUID, SendParams{AuthorUUID: stranger.UUID, Content: "hi"})
	assert.ErrorIs(t, err, ErrNotMember)
	_, err = svc.Messages(ctx, stranger, c.UUID, 0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	first, err := svc.Send(ctx, leader, c.UUID, SendParams{AuthorUUID: leader.UUID, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "leader", first.User.UserName)

	reply := first.Message.UUID
	second, err := svc.Send(ctx, friend, c.UUID, SendParams{AuthorUUID: friend.UUID, ReplyUUID: &reply, Content: "hey"})
	require.NoError(t, err)
	require.NotNil(t, second.Message.ReplyUUID)

	other, err := svc.Create(ctx, friend, nil)
	require.NoError(t, err)
	_, err = svc.Send(ctx, friend, other.UUID, SendParams{AuthorUUID: friend.UUID, ReplyUUID: &reply, Content: "x"})
	assert.ErrorIs(t, err, ErrReplyMismatch)
}

func TestMessagesPageNewestFirst(t *testing.T) {
	db := repotest.NewDB(t)
	repos := repository.NewRepositories(db)
	svc := NewService(repos.Chats, repos.Messages, nil, ratelimit.Rule{})
	ctx := context.Background()
	_, leader := repotest.SeedUser(t, db, "leader")
	c, err := svc.Create(ctx, leader, nil)
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < domain.MessagePageSize+5; i++ {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		_, err := svc.Send(ctx, leader, c.UUID, SendParams{AuthorUUID: leader.UUID, Content: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	page, err := svc.Messages(ctx, leader, c.UUID, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, domain.MessagePageSize)
	assert.EqualValues(t, domain.MessagePageSize+5, page.TotalCount)
	assert.Equal(t, fmt.Sprintf("m%d", domain.MessagePageSize+4), page.Items[0].Message.Content)

	page, err = svc.Messages(ctx, leader, c.UUID, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, "m0", page.Items[4].Message.Content)
}

func TestMessageRateLimit(t *testing.T) {
	db := repotest.NewDB(t)
	repos := repository.NewRepositories(db)
	svc := NewService(repos.Chats, repos.Messages, ratelimit.NewMemoryLimiter(), ratelimit.Rule{Limit: 1, Window: time.Minute})
	ctx := context.Background()
	_, leader := repotest.SeedUser(t, db, "leader")
	c, err := svc.Create(ctx, leader, nil)
	require.NoError(t, err)

	_, err = svc.Send(ctx, leader, c.UUID, SendParams{AuthorUUID: leader.UUID, Content: "1"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, leader, c.UUID, SendParams{AuthorUUID: leader.UUID, Content: "2"})
	assert.ErrorIs(t, err, ErrMessageRateLimited)
}
