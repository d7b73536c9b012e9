package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	"weekend-at-joes/backend/internal/domain/article"
	"weekend-at-joes/pkg/ident"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleCreateThenGetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "alice")
	created := seedArticle(t, db, author.UUID, "Hello World", nil)

	got, err := NewArticleRepository(db).Get(context.Background(), created.UUID)
	require.NoError(t, err)
	assert.Equal(t, created.UUID, got.UUID)
	assert.Equal(t, created.AuthorUUID, got.AuthorUUID)
	assert.Equal(t, "Hello World", got.Title)
	assert.Equal(t, "hello-world", got.Slug)
	assert.Equal(t, created.Body, got.Body)
	assert.Nil(t, got.PublishDate)
}

func TestArticleGetMissingIsNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := NewArticleRepository(db).Get(context.Background(), ident.New[ident.ArticleUUID]())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestArticleUpdateAppliesOnlyPresentFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	author := seedUser(t, db, "alice")
	created := seedArticle(t, db, author.UUID, "Original", nil)

	updated, err := repo.Update(context.Background(), article.Changeset{UUID: created.UUID, Title: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, created.Body, updated.Body)

	_, err = repo.Update(context.Background(), article.Changeset{UUID: ident.New[ident.ArticleUUID](), Body: ptr("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetPublishStatusRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	created := seedArticle(t, db, author.UUID, "Draft", nil)

	published, err := repo.SetPublishStatus(ctx, created.UUID, true, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, published.PublishDate)

	page, err := repo.PublishedPage(ctx, PageRequest{Index: 0, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.UUID, page.Items[0].Article.UUID)
	assert.Equal(t, author.UUID, page.Items[0].User.UUID)

	unpublished, err := repo.SetPublishStatus(ctx, created.UUID, false, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, unpublished.PublishDate)

	page, err = repo.PublishedPage(ctx, PageRequest{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalCount)

	drafts, err := repo.UnpublishedForUser(ctx, author.UUID)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, created.UUID, drafts[0].UUID)
}

func TestPublishedPagesAreDisjointAndExhaustive(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 23; i++ {
		// 每三篇共享同一发布时间，验证 uuid 兜底排序。
		published := base.Add(time.Duration(i/3) * time.Hour)
		seedArticle(t, db, author.UUID, fmt.Sprintf("Post %02d", i), &published)
	}
	seedArticle(t, db, author.UUID, "Unpublished", nil)

	seen := map[ident.ArticleUUID]bool{}
	pageCount := -1
	for index := 0; ; index++ {
		page, err := repo.PublishedPage(ctx, PageRequest{Index: index, Size: 5})
		require.NoError(t, err)
		assert.EqualValues(t, 23, page.TotalCount)
		assert.LessOrEqual(t, len(page.Items), 5)
		pageCount = page.PageCount()
		if len(page.Items) == 0 {
			break
		}
		for _, item := range page.Items {
			assert.False(t, seen[item.Article.UUID], "article returned twice")
			seen[item.Article.UUID] = true
			assert.NotNil(t, item.Article.PublishDate)
		}
	}
	assert.Len(t, seen, 23)
	assert.Equal(t, 5, pageCount)

	beyond, err := repo.PublishedPage(ctx, PageRequest{Index: 40, Size: 5})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.EqualValues(t, 23, beyond.TotalCount)
}

func TestPublishedPageHugeIndexIsEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	now := time.Now().UTC()
	seedArticle(t, db, author.UUID, "Only", &now)

	// Index*Size 溢出后会回绕到 0，不能因此返回第一页。
	for _, req := range []PageRequest{
		{Index: 1 << 62, Size: 4},
		{Index: math.MaxInt, Size: 2},
		{Index: 1, Size: math.MaxInt},
	} {
		page, err := repo.PublishedPage(ctx, req)
		require.NoError(t, err)
		assert.Empty(t, page.Items, "index %d size %d", req.Index, req.Size)
		assert.EqualValues(t, 1, page.TotalCount)
		assert.Equal(t, 1, page.PageCount())
	}
}

func TestPageRequestInRange(t *testing.T) {
	assert.True(t, PageRequest{Index: 0, Size: 5}.InRange(1))
	assert.True(t, PageRequest{Index: 4, Size: 5}.InRange(23))
	assert.False(t, PageRequest{Index: 5, Size: 5}.InRange(23))
	assert.False(t, PageRequest{Index: 0, Size: 5}.InRange(0))
	assert.False(t, PageRequest{Index: math.MaxInt, Size: math.MaxInt}.InRange(10))
	assert.True(t, PageRequest{Index: 0, Size: math.MaxInt}.InRange(10))
}

func TestPublishedPageRejectsNonPositiveSize(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)

	_, err := repo.PublishedPage(context.Background(), PageRequest{Index: 0, Size: 0})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = repo.PublishedPage(context.Background(), PageRequest{Index: -1, Size: 3})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestDeletingUserCascadesToArticles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	created := seedArticle(t, db, author.UUID, "Doomed", nil)

	_, err := NewUserRepository(db).Delete(ctx, author.UUID)
	require.NoError(t, err)

	_, err = NewArticleRepository(db).Get(ctx, created.UUID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestArticleForMissingAuthorViolatesConstraint(t *testing.T) {
	db := newTestDB(t)
	_, err := NewArticleRepository(db).Create(context.Background(), article.Article{
		UUID:       ident.New[ident.ArticleUUID](),
		AuthorUUID: ident.New[ident.UserUUID](),
		Title:      "Orphan",
		Slug:       "orphan",
	})
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)
}
