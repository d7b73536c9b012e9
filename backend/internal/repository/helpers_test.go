package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"weekend-at-joes/backend/internal/domain/article"
	"weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/pkg/ident"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) user.User {
	t.Helper()
	u, err := NewUserRepository(db).Create(context.Background(), user.User{
		UUID:         ident.New[ident.UserUUID](),
		UserName:     name,
		DisplayName:  strings.ToUpper(name),
		PasswordHash: "hash",
		Roles:        user.EncodeRoles(),
	})
	require.NoError(t, err)
	return u
}

func seedArticle(t *testing.T, db *gorm.DB, author ident.UserUUID, title string, published *time.Time) article.Article {
	t.Helper()
	a, err := NewArticleRepository(db).Create(context.Background(), article.Article{
		UUID:        ident.New[ident.ArticleUUID](),
		AuthorUUID:  author,
		Title:       title,
		Slug:        strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Body:        "body of " + title,
		PublishDate: published,
	})
	require.NoError(t, err)
	return a
}

func seedForum(t *testing.T, db *gorm.DB, title string) forum.Forum {
	t.Helper()
	f, err := NewForumRepository(db).Create(context.Background(), forum.Forum{
		UUID:  ident.New[ident.ForumUUID](),
		Title: title,
	})
	require.NoError(t, err)
	return f
}

func ptr[T any](v T) *T { return &v }
