package repository

import (
	"context"
	"time"

	"weekend-at-joes/backend/internal/domain/article"
	"weekend-at-joes/pkg/ident"

	"gorm.io/gorm"
)

// ArticleRepository 负责文章的持久化与已发布列表查询。
type ArticleRepository struct {
	db    *gorm.DB
	users *UserRepository
	crud[article.Article, ident.ArticleUUID]
}

var _ Repository[article.Article, ident.ArticleUUID, article.Changeset] = (*ArticleRepository)(nil)

// NewArticleRepository 构造文章仓储。
func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{
		db:    db,
		users: NewUserRepository(db),
		crud:  newCrud[article.Article, ident.ArticleUUID](db, "article"),
	}
}

func (r *ArticleRepository) Get(ctx context.Context, id ident.ArticleUUID) (article.Article, error) {
	return r.get(ctx, id)
}

func (r *ArticleRepository) Create(ctx context.Context, a article.Article) (article.Article, error) {
	return r.create(ctx, a)
}

func (r *ArticleRepository) Update(ctx context.Context, cs article.Changeset) (article.Article, error) {
	columns := map[string]any{}
	if cs.Title != nil {
		columns["title"] = *cs.Title
	}
	if cs.Body != nil {
		columns["body"] = *cs.Body
	}
	return r.update(ctx, cs.UUID, columns)
}

func (r *ArticleRepository) Delete(ctx context.Context, id ident.ArticleUUID) (article.Article, error) {
	return r.delete(ctx, id)
}

// GetBySlug 通过 slug 查找文章。
func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (article.Article, error) {
	var a article.Article
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&a).Error
	return a, translate("get article by slug", err)
}

// GetArticleData 先取文章再取作者，两步之间不加事务；
// 作者在此期间被删除时返回 ErrNotFound。
func (r *ArticleRepository) GetArticleData(ctx context.Context, id ident.ArticleUUID) (article.ArticleData, error) {
	a, err := r.get(ctx, id)
	if err != nil {
		return article.ArticleData{}, err
	}
	author, err := r.users.Get(ctx, a.AuthorUUID)
	if err != nil {
		return article.ArticleData{}, err
	}
	return article.ArticleData{Article: a, User: author}, nil
}

// PublishedPage 分页列出已发布文章及作者，按发布时间倒序。
func (r *ArticleRepository) PublishedPage(ctx context.Context, req PageRequest) (Page[article.ArticleData], error) {
	base := r.db.Model(&article.Article{}).Where("articles.publish_date IS NOT NULL")
	page, err := Paginate[article.Article](ctx, base, req, func(tx *gorm.DB) *gorm.DB {
		return tx.InnerJoins("Author").Order("articles.publish_date DESC, articles.uuid ASC")
	})
	if err != nil {
		return Page[article.ArticleData]{}, err
	}
	return mapPage(page, func(a article.Article) article.ArticleData {
		return article.ArticleData{Article: a, User: a.Author}
	}), nil
}

// UnpublishedForUser 返回某用户全部未发布的文章。
func (r *ArticleRepository) UnpublishedForUser(ctx context.Context, author ident.UserUUID) ([]article.Article, error) {
	articles := make([]article.Article, 0)
	err := r.db.WithContext(ctx).
		Where("author_uuid = ? AND publish_date IS NULL", author).
		Order("title ASC, uuid ASC").
		Find(&articles).Error
	return articles, translate("list unpublished articles", err)
}

// SetPublishStatus 发布时写入当前时间，撤回时清空为 NULL。
func (r *ArticleRepository) SetPublishStatus(ctx context.Context, id ident.ArticleUUID, publish bool, now time.Time) (article.Article, error) {
	var value any
	if publish {
		value = now
	}
	return r.update(ctx, id, map[string]any{"publish_date": value})
}

func mapPage[T, U any](page Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, fn(item))
	}
	return Page[U]{Items: items, TotalCount: page.TotalCount, Index: page.Index, Size: page.Size}
}
