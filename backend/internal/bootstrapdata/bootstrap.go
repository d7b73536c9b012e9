// Package bootstrapdata 向空库写入演示数据：管理员、论坛与线程、一篇已发布文章。
package bootstrapdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	"weekend-at-joes/backend/internal/domain/article"
	"weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/repository"
	articlesvc "weekend-at-joes/backend/internal/service/article"
	"weekend-at-joes/pkg/ident"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	envDataDir      = "SEED_DATA_DIR"
	fixtureFilename = "fixtures.json"
)

// Options 描述种子数据导入参数。
type Options struct {
	// DataDir 下存在 fixtures.json 时替换内置数据。
	DataDir       string
	AdminName     string
	AdminPassword string
	Logger        *zap.SugaredLogger
	Now           func() time.Time
}

// Fixtures 是可由 JSON 覆盖的演示数据。
type Fixtures struct {
	Forums  []ForumSeed  `json:"forums"`
	Article *ArticleSeed `json:"article"`
}

type ForumSeed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Threads     []ThreadSeed `json:"threads"`
}

type ThreadSeed struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ArticleSeed struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Summary 记录本次实际写入的数量，已存在的记录不计入。
type Summary struct {
	AdminCreated bool
	Forums       int
	Threads      int
	Articles     int
}

// DefaultFixtures 两个论坛各三个线程，外加一篇文章。
func DefaultFixtures() Fixtures {
	return Fixtures{
		Forums: []ForumSeed{
			{
				Title:       "General",
				Description: "Anything goes, within reason.",
				Threads: []ThreadSeed{
					{Title: "Welcome to Joe's", Content: "Say hello and tell us what brought you here."},
					{Title: "House rules", Content: "Be kind. Moderators may lock or archive threads."},
					{Title: "Weekend plans", Content: "What is everyone up to this weekend?"},
				},
			},
			{
				Title:       "Meta",
				Description: "Feedback about the site itself.",
				Threads: []ThreadSeed{
					{Title: "Feature requests", Content: "Post ideas for new features here."},
					{Title: "Bug reports", Content: "Found something broken? Describe how to reproduce it."},
					{Title: "Changelog discussion", Content: "Talk about the latest changes."},
				},
			},
		},
		Article: &ArticleSeed{
			Title: "Hello from Joe's",
			Body:  "This is the first article on the site. Drafts stay private until their author publishes them.",
		},
	}
}

// ResolveDataDir 优先使用显式目录，其次读取 SEED_DATA_DIR。
func ResolveDataDir(dir string) string {
	if strings.TrimSpace(dir) != "" {
		return strings.TrimSpace(dir)
	}
	return strings.TrimSpace(os.Getenv(envDataDir))
}

// LoadFixtures 读取 dataDir/fixtures.json，文件不存在时返回内置数据。
func LoadFixtures(dataDir string) (Fixtures, error) {
	if dataDir == "" {
		return DefaultFixtures(), nil
	}
	path := filepath.Join(dataDir, fixtureFilename)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultFixtures(), nil
	}
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures: %w", err)
	}
	var out Fixtures
	if err := json.Unmarshal(raw, &out); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return out, nil
}

// Seed 写入管理员与演示数据。同名论坛已存在时整组跳过，可重复执行。
func Seed(ctx context.Context, repos repository.Repositories, opts Options) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.AdminName == "" {
		opts.AdminName = "admin"
	}
	if opts.AdminPassword == "" {
		return Summary{}, errors.New("admin password is required")
	}

	fixtures, err := LoadFixtures(ResolveDataDir(opts.DataDir))
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	admin, created, err := ensureAdmin(ctx, repos.Users, opts.AdminName, opts.AdminPassword)
	if err != nil {
		return summary, err
	}
	summary.AdminCreated = created

	existing, err := repos.Forums.List(ctx)
	if err != nil {
		return summary, err
	}
	titles := make(map[string]struct{}, len(existing))
	for _, f := range existing {
		titles[f.Title] = struct{}{}
	}

	for _, seed := range fixtures.Forums {
		if _, ok := titles[seed.Title]; ok {
			logger.Infow("forum exists, skip", "title", seed.Title)
			continue
		}
		f, err := repos.Forums.Create(ctx, forum.Forum{
			UUID:        ident.New[ident.ForumUUID](),
			Title:       seed.Title,
			Description: seed.Description,
		})
		if err != nil {
			return summary, fmt.Errorf("seed forum %q: %w", seed.Title, err)
		}
		summary.Forums++

		for _, ts := range seed.Threads {
			at := now().UTC()
			_, err := repos.Threads.CreateWithInitialPost(ctx, forum.Thread{
				UUID:        ident.New[ident.ThreadUUID](),
				ForumUUID:   f.UUID,
				AuthorUUID:  admin.UUID,
				CreatedDate: at,
				Title:       ts.Title,
			}, forum.Post{
				UUID:        ident.New[ident.PostUUID](),
				AuthorUUID:  admin.UUID,
				CreatedDate: at,
				Content:     ts.Content,
			})
			if err != nil {
				return summary, fmt.Errorf("seed thread %q: %w", ts.Title, err)
			}
			summary.Threads++
		}
	}

	if fixtures.Article != nil && summary.Forums > 0 {
		id := ident.New[ident.ArticleUUID]()
		a, err := repos.Articles.Create(ctx, article.Article{
			UUID:       id,
			AuthorUUID: admin.UUID,
			Title:      fixtures.Article.Title,
			Slug:       articlesvc.Slugify(fixtures.Article.Title, id),
			Body:       fixtures.Article.Body,
		})
		if err != nil {
			return summary, fmt.Errorf("seed article: %w", err)
		}
		if _, err := repos.Articles.SetPublishStatus(ctx, a.UUID, true, now().UTC()); err != nil {
			return summary, fmt.Errorf("publish seed article: %w", err)
		}
		summary.Articles++
	}

	logger.Infow("seed finished",
		"admin_created", summary.AdminCreated,
		"forums", summary.Forums,
		"threads", summary.Threads,
		"articles", summary.Articles,
	)
	return summary, nil
}

func ensureAdmin(ctx context.Context, users *repository.UserRepository, name, password string) (user.User, bool, error) {
	existing, err := users.GetByUserName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return user.User{}, false, fmt.Errorf("load admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, false, fmt.Errorf("hash admin password: %w", err)
	}
	created, err := users.Create(ctx, user.User{
		UUID:         ident.New[ident.UserUUID](),
		UserName:     name,
		DisplayName:  name,
		PasswordHash: string(hash),
		Roles:        user.EncodeRoles(user.RoleAdmin),
	})
	if err != nil {
		return user.User{}, false, fmt.Errorf("create admin: %w", err)
	}
	return created, true, nil
}
