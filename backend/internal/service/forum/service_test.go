package forum

import (
	"context"
	"testing"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	domain "weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/infra/ratelimit"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/backend/internal/repository/repotest"
	"weekend-at-joes/pkg/ident"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T, cfg Config) (*Service, *gorm.DB) {
	t.Helper()
	db := repotest.NewDB(t)
	repos := repository.NewRepositories(db)
	return NewService(repos.Forums, repos.Threads, repos.Posts, ratelimit.NewMemoryLimiter(), cfg), db
}

func TestForumAdministration(t *testing.T) {
	svc, db := newService(t, Config{})
	ctx := context.Background()
	_, admin := repotest.SeedUser(t, db, "admin", user.RoleAdmin)
	_, joe := repotest.SeedUser(t, db, "joe")

	_, err := svc.CreateForum(ctx, joe, "General", "")
	assert.ErrorIs(t, err, ErrAdminRequired)

	general, err := svc.CreateForum(ctx, admin, "General", "chit chat")
	require.NoError(t, err)
	_, err = svc.CreateForum(ctx, admin, "Announcements", "")
	require.NoError(t, err)
	_, err = svc.CreateForum(ctx, admin, "General", "dup")
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)

	forums, err := svc.ListForums(ctx)
	require.NoError(t, err)
	require.Len(t, forums, 2)
	assert.Equal(t, "Announcements", forums[0].Title)

	_, err = svc.CreateThread(ctx, joe, general.UUID, "hi", "first")
	require.NoError(t, err)
	err = svc.DeleteForum(ctx, admin, general.UUID)
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation, "forum with threads cannot be deleted")
	assert.ErrorIs(t, svc.DeleteForum(ctx, joe, general.UUID), ErrAdminRequired)
}

func TestThreadRepliesAndModeration(t *testing.T) {
	svc, db := newService(t, Config{})
	ctx := context.Background()
	_, admin := repotest.SeedUser(t, db, "admin", user.RoleAdmin)
	_, mod := repotest.SeedUser(t, db, "mod", user.RoleModerator)
	_, joe := repotest.SeedUser(t, db, "joe")

	f, err := svc.CreateForum(ctx, admin, "General", "")
	require.NoError(t, err)
	thread, err := svc.CreateThread(ctx, joe, f.UUID, "Hello", "first post")
	require.NoError(t, err)
	assert.Equal(t, thread.Thread.UUID, thread.Post.ThreadUUID)

	root := thread.Post.UUID
	reply, err := svc.Reply(ctx, mod, thread.Thread.UUID, &root, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "mod", reply.User.UserName)

	full, err := svc.GetThread(ctx, thread.Thread.UUID)
	require.NoError(t, err)
	require.Len(t, full.Posts, 1)
	require.Len(t, full.Posts[0].Children, 1)
	assert.Equal(t, reply.Post.UUID, full.Posts[0].Children[0].Post.UUID)

	content := "edited"
	_, err = svc.EditPost(ctx, joe, domain.PostChangeset{UUID: reply.Post.UUID, Content: &content})
	assert.ErrorIs(t, err, ErrNotPostOwner)
	edited, err := svc.EditPost(ctx, mod, domain.PostChangeset{UUID: reply.Post.UUID, Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Post.Content)
	assert.NotNil(t, edited.Post.ModifiedDate)

	_, err = svc.CensorPost(ctx, joe, root)
	assert.ErrorIs(t, err, ErrModeratorRequired)
	censored, err := svc.CensorPost(ctx, admin, root)
	require.NoError(t, err)
	assert.True(t, censored.Post.Censored)

	_, err = svc.LockThread(ctx, joe, thread.Thread.UUID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	locked, err := svc.LockThread(ctx, mod, thread.Thread.UUID)
	require.NoError(t, err)
	assert.True(t, locked.Thread.Locked)

	_, err = svc.Reply(ctx, joe, thread.Thread.UUID, nil, "too late")
	assert.ErrorIs(t, err, ErrThreadLocked)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = svc.UnlockThread(ctx, mod, thread.Thread.UUID)
	require.NoError(t, err)
	_, err = svc.ArchiveThread(ctx, mod, thread.Thread.UUID)
	require.NoError(t, err)
	page, err := svc.ThreadsInForum(ctx, f.UUID, repository.PageRequest{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	_, err = svc.Reply(ctx, joe, thread.Thread.UUID, nil, "archived")
	assert.ErrorIs(t, err, ErrThreadArchived)
}

func TestReplyRejectsForeignParent(t *testing.T) {
	svc, db := newService(t, Config{})
	ctx := context.Background()
	_, admin := repotest.SeedUser(t, db, "admin", user.RoleAdmin)
	f, err := svc.CreateForum(ctx, admin, "General", "")
	require.NoError(t, err)
	a, err := svc.CreateThread(ctx, admin, f.UUID, "A", "a")
	require.NoError(t, err)
	b, err := svc.CreateThread(ctx, admin, f.UUID, "B", "b")
	require.NoError(t, err)

	parent := a.Post.UUID
	_, err = svc.Reply(ctx, admin, b.Thread.UUID, &parent, "cross")
	assert.ErrorIs(t, err, ErrParentMismatch)

	missing := ident.New[ident.PostUUID]()
	_, err = svc.Reply(ctx, admin, b.Thread.UUID, &missing, "ghost")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = svc.CreateThread(ctx, admin, ident.New[ident.ForumUUID](), "x", "y")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPostRateLimit(t *testing.T) {
	svc, db := newService(t, Config{PostRule: ratelimit.Rule{Limit: 2, Window: time.Minute}})
	ctx := context.Background()
	_, admin := repotest.SeedUser(t, db, "admin", user.RoleAdmin)
	f, err := svc.CreateForum(ctx, admin, "General", "")
	require.NoError(t, err)

	thread, err := svc.CreateThread(ctx, admin, f.UUID, "A", "a")
	require.NoError(t, err)
	_, err = svc.Reply(ctx, admin, thread.Thread.UUID, nil, "1")
	require.NoError(t, err)
	_, err = svc.Reply(ctx, admin, thread.Thread.UUID, nil, "2")
	assert.ErrorIs(t, err, ErrPostRateLimited)
	assert.ErrorIs(t, err, apperr.ErrRateLimited)
}
