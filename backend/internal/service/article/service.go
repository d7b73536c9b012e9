package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	domain "weekend-at-joes/backend/internal/domain/article"
	"weekend-at-joes/backend/internal/domain/user"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/infra/metrics"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/pkg/ident"

	"go.uber.org/zap"
)

var (
	ErrTitleRequired   = fmt.Errorf("%w: title is required", apperr.ErrBadRequest)
	ErrAuthorMismatch  = fmt.Errorf("%w: author must be the requesting user", apperr.ErrForbidden)
	ErrNotArticleOwner = fmt.Errorf("%w: not the article author", apperr.ErrForbidden)
	ErrPageTooLarge    = fmt.Errorf("%w: page size too large", apperr.ErrBadRequest)
)

// Service 处理文章的增删改查与发布状态切换。
type Service struct {
	articles    *repository.ArticleRepository
	maxPageSize int
	logger      *zap.SugaredLogger
	now         func() time.Time
}

func NewService(articles *repository.ArticleRepository, maxPageSize int) *Service {
	return &Service{
		articles:    articles,
		maxPageSize: maxPageSize,
		logger:      appLogger.Named("article.service"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateParams 新建文章参数，AuthorUUID 必须与请求者一致。
type CreateParams struct {
	AuthorUUID ident.UserUUID
	Title      string
	Body       string
}

// Get 返回文章与作者。未发布的文章只对作者可见，其他人看到的是 404。
func (s *Service) Get(ctx context.Context, viewer *user.Principal, id ident.ArticleUUID) (domain.ArticleData, error) {
	data, err := s.articles.GetArticleData(ctx, id)
	if err != nil {
		return domain.ArticleData{}, fmt.Errorf("get article: %w", err)
	}
	if !data.Article.Published() && (viewer == nil || viewer.UUID != data.Article.AuthorUUID) {
		return domain.ArticleData{}, apperr.NotFound("article %s", id)
	}
	return data, nil
}

// Published 分页返回已发布文章。
func (s *Service) Published(ctx context.Context, req repository.PageRequest) (repository.Page[domain.ArticleData], error) {
	if s.maxPageSize > 0 && req.Size > s.maxPageSize {
		return repository.Page[domain.ArticleData]{}, ErrPageTooLarge
	}
	page, err := s.articles.PublishedPage(ctx, req)
	if err != nil {
		return page, fmt.Errorf("list published articles: %w", err)
	}
	return page, nil
}

// Unpublished 返回请求者自己的草稿。
func (s *Service) Unpublished(ctx context.Context, requester user.Principal) ([]domain.Article, error) {
	articles, err := s.articles.UnpublishedForUser(ctx, requester.UUID)
	if err != nil {
		return nil, fmt.Errorf("list unpublished articles: %w", err)
	}
	return articles, nil
}

// Create 新建未发布的文章。
func (s *Service) Create(ctx context.Context, requester user.Principal, params CreateParams) (domain.Article, error) {
	if params.AuthorUUID != requester.UUID {
		return domain.Article{}, ErrAuthorMismatch
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return domain.Article{}, ErrTitleRequired
	}
	id := ident.New[ident.ArticleUUID]()
	created, err := s.articles.Create(ctx, domain.Article{
		UUID:       id,
		AuthorUUID: requester.UUID,
		Title:      title,
		Slug:       Slugify(title, id),
		Body:       params.Body,
	})
	if err != nil {
		return domain.Article{}, fmt.Errorf("create article: %w", err)
	}
	s.logger.Infow("article created", "article_uuid", created.UUID, "author_uuid", requester.UUID)
	return created, nil
}

// Update 修改标题或正文，slug 保持不变。
func (s *Service) Update(ctx context.Context, requester user.Principal, cs domain.Changeset) (domain.Article, error) {
	if err := s.authorize(ctx, requester, cs.UUID); err != nil {
		return domain.Article{}, err
	}
	if cs.Title != nil {
		title := strings.TrimSpace(*cs.Title)
		if title == "" {
			return domain.Article{}, ErrTitleRequired
		}
		cs.Title = &title
	}
	updated, err := s.articles.Update(ctx, cs)
	if err != nil {
		return domain.Article{}, fmt.Errorf("update article: %w", err)
	}
	return updated, nil
}

// SetPublished 发布或撤回文章。
func (s *Service) SetPublished(ctx context.Context, requester user.Principal, id ident.ArticleUUID, publish bool) error {
	if err := s.authorize(ctx, requester, id); err != nil {
		return err
	}
	if _, err := s.articles.SetPublishStatus(ctx, id, publish, s.now()); err != nil {
		return fmt.Errorf("set publish status: %w", err)
	}
	if publish {
		metrics.RecordEvent(metrics.EventArticlePublished)
	} else {
		metrics.RecordEvent(metrics.EventArticleUnpublished)
	}
	s.logger.Infow("article publish status changed", "article_uuid", id, "published", publish)
	return nil
}

// Delete 删除文章。
func (s *Service) Delete(ctx context.Context, requester user.Principal, id ident.ArticleUUID) error {
	if err := s.authorize(ctx, requester, id); err != nil {
		return err
	}
	if _, err := s.articles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// authorize 在修改前取出文章比对作者，文章不存在同样返回 403。
func (s *Service) authorize(ctx context.Context, requester user.Principal, id ident.ArticleUUID) error {
	a, err := s.articles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrNotArticleOwner
		}
		return fmt.Errorf("load article: %w", err)
	}
	if a.AuthorUUID != requester.UUID {
		return ErrNotArticleOwner
	}
	return nil
}
