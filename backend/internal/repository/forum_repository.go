package repository

import (
	"context"

	"weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/pkg/ident"

	"gorm.io/gorm"
)

// ForumChangeset 预留给泛型接口；论坛创建后不可修改。
type ForumChangeset struct {
	UUID ident.ForumUUID
}

// ForumRepository 负责论坛的读写。
type ForumRepository struct {
	db *gorm.DB
	crud[forum.Forum, ident.ForumUUID]
}

var _ Repository[forum.Forum, ident.ForumUUID, ForumChangeset] = (*ForumRepository)(nil)

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{db: db, crud: newCrud[forum.Forum, ident.ForumUUID](db, "forum")}
}

func (r *ForumRepository) Get(ctx context.Context, id ident.ForumUUID) (forum.Forum, error) {
	return r.get(ctx, id)
}

func (r *ForumRepository) Create(ctx context.Context, f forum.Forum) (forum.Forum, error) {
	return r.create(ctx, f)
}

func (r *ForumRepository) Update(context.Context, ForumChangeset) (forum.Forum, error) {
	return forum.Forum{}, unsupported("update", "forum")
}

// Delete 在论坛下仍有线程时返回 ErrConstraintViolation。
func (r *ForumRepository) Delete(ctx context.Context, id ident.ForumUUID) (forum.Forum, error) {
	return r.delete(ctx, id)
}

// List 按标题返回全部论坛。
func (r *ForumRepository) List(ctx context.Context) ([]forum.Forum, error) {
	forums := make([]forum.Forum, 0)
	err := r.db.WithContext(ctx).Order("title ASC").Find(&forums).Error
	return forums, translate("list forums", err)
}
