package repository

import (
	"context"
	"testing"
	"time"

	"weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/pkg/ident"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersFiltersByName(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedUser(t, db, "malice")

	page, err := repo.ListUsers(ctx, " alice ", PageRequest{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)
	assert.Len(t, page.Items, 2)

	page, err = repo.ListUsers(ctx, "", PageRequest{Index: 1, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalCount)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.PageCount())
}

func TestCountContentByAuthors(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	writer := seedUser(t, db, "writer")
	lurker := seedUser(t, db, "lurker")

	now := time.Now().UTC()
	seedArticle(t, db, writer.UUID, "One", &now)
	seedArticle(t, db, writer.UUID, "Two", nil)

	f := seedForum(t, db, "General")
	_, err := NewThreadRepository(db).CreateWithInitialPost(ctx,
		forum.Thread{UUID: ident.New[ident.ThreadUUID](), ForumUUID: f.UUID, AuthorUUID: writer.UUID, CreatedDate: now, Title: "hi"},
		forum.Post{UUID: ident.New[ident.PostUUID](), AuthorUUID: writer.UUID, CreatedDate: now, Content: "first"},
	)
	require.NoError(t, err)

	counts, err := repo.CountContentByAuthors(ctx, []ident.UserUUID{writer.UUID, lurker.UUID})
	require.NoError(t, err)
	assert.Equal(t, UserContentCounts{Articles: 2, PublishedArticles: 1, Threads: 1, Posts: 1}, counts[writer.UUID])
	_, ok := counts[lurker.UUID]
	assert.False(t, ok)

	empty, err := repo.CountContentByAuthors(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateRoles(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	u := seedUser(t, db, "mod")

	updated, err := repo.Update(context.Background(), user.Changeset{UUID: u.UUID, Roles: []string{user.RoleModerator}})
	require.NoError(t, err)
	assert.True(t, updated.HasRole(user.RoleModerator))
	assert.False(t, updated.HasRole(user.RoleAdmin))

	cleared, err := repo.Update(context.Background(), user.Changeset{UUID: u.UUID, Roles: []string{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.RoleList())
}
