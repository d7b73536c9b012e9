package repository

import (
	"context"
	"strings"

	"weekend-at-joes/backend/internal/domain/article"
	"weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/pkg/ident"

	"gorm.io/gorm"
)

// UserRepository 封装用户相关的数据访问方法，基于 GORM 实现。
type UserRepository struct {
	db *gorm.DB
	crud[user.User, ident.UserUUID]
}

var _ Repository[user.User, ident.UserUUID, user.Changeset] = (*UserRepository)(nil)

// NewUserRepository 创建用户仓储实例，接收共享的 *gorm.DB。
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, crud: newCrud[user.User, ident.UserUUID](db, "user")}
}

func (r *UserRepository) Get(ctx context.Context, id ident.UserUUID) (user.User, error) {
	return r.get(ctx, id)
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	return r.create(ctx, u)
}

func (r *UserRepository) Update(ctx context.Context, cs user.Changeset) (user.User, error) {
	columns := map[string]any{}
	if cs.DisplayName != nil {
		columns["display_name"] = *cs.DisplayName
	}
	if cs.Roles != nil {
		columns["roles"] = user.EncodeRoles(cs.Roles...)
	}
	return r.update(ctx, cs.UUID, columns)
}

// Delete 删除用户，其文章、线程、帖子等依赖数据由外键级联删除。
func (r *UserRepository) Delete(ctx context.Context, id ident.UserUUID) (user.User, error) {
	return r.delete(ctx, id)
}

// GetByUserName 通过登录名查找用户。
func (r *UserRepository) GetByUserName(ctx context.Context, name string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("user_name = ?", name).First(&u).Error
	return u, translate("get user by name", err)
}

// GetByUUIDs 批量查询用户，结果顺序不保证。
func (r *UserRepository) GetByUUIDs(ctx context.Context, ids []ident.UserUUID) ([]user.User, error) {
	users := make([]user.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("uuid IN ?", ids).Find(&users).Error
	return users, translate("get users", err)
}

// ListUsers 按注册时间分页列出用户，query 非空时按登录名或展示名模糊匹配。
func (r *UserRepository) ListUsers(ctx context.Context, query string, req PageRequest) (Page[user.User], error) {
	base := r.db.Model(&user.User{})
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + q + "%"
		base = base.Where("user_name LIKE ? OR display_name LIKE ?", like, like)
	}
	return Paginate[user.User](ctx, base, req, func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC").Order("uuid ASC")
	})
}

// UserContentCounts 是单个用户名下的内容数量。
type UserContentCounts struct {
	Articles          int64
	PublishedArticles int64
	Threads           int64
	Posts             int64
}

type authorCountRow struct {
	AuthorUUID ident.UserUUID
	Total      int64
	Published  int64
}

// CountContentByAuthors 按作者聚合文章、线程与帖子数量，没有任何内容的用户不会出现在结果里。
func (r *UserRepository) CountContentByAuthors(ctx context.Context, ids []ident.UserUUID) (map[ident.UserUUID]UserContentCounts, error) {
	out := make(map[ident.UserUUID]UserContentCounts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var articles []authorCountRow
	err := r.db.WithContext(ctx).Model(&article.Article{}).
		Select("author_uuid, COUNT(*) AS total, COUNT(publish_date) AS published").
		Where("author_uuid IN ?", ids).
		Group("author_uuid").
		Scan(&articles).Error
	if err != nil {
		return nil, translate("count articles by author", err)
	}
	for _, row := range articles {
		c := out[row.AuthorUUID]
		c.Articles, c.PublishedArticles = row.Total, row.Published
		out[row.AuthorUUID] = c
	}

	threads, err := r.countByAuthor(ctx, &forum.Thread{}, ids)
	if err != nil {
		return nil, translate("count threads by author", err)
	}
	for _, row := range threads {
		c := out[row.AuthorUUID]
		c.Threads = row.Total
		out[row.AuthorUUID] = c
	}

	posts, err := r.countByAuthor(ctx, &forum.Post{}, ids)
	if err != nil {
		return nil, translate("count posts by author", err)
	}
	for _, row := range posts {
		c := out[row.AuthorUUID]
		c.Posts = row.Total
		out[row.AuthorUUID] = c
	}
	return out, nil
}

func (r *UserRepository) countByAuthor(ctx context.Context, model any, ids []ident.UserUUID) ([]authorCountRow, error) {
	var rows []authorCountRow
	err := r.db.WithContext(ctx).Model(model).
		Select("author_uuid, COUNT(*) AS total").
		Where("author_uuid IN ?", ids).
		Group("author_uuid").
		Scan(&rows).Error
	return rows, err
}
