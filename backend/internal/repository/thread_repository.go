package repository

import (
	"context"

	"weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/pkg/ident"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThreadRepository 负责线程及其首帖的持久化。
type ThreadRepository struct {
	db    *gorm.DB
	users *UserRepository
	crud[forum.Thread, ident.ThreadUUID]
}

var _ Repository[forum.Thread, ident.ThreadUUID, forum.ThreadChangeset] = (*ThreadRepository)(nil)

func NewThreadRepository(db *gorm.DB) *ThreadRepository {
	return &ThreadRepository{
		db:    db,
		users: NewUserRepository(db),
		crud:  newCrud[forum.Thread, ident.ThreadUUID](db, "thread"),
	}
}

func (r *ThreadRepository) Get(ctx context.Context, id ident.ThreadUUID) (forum.Thread, error) {
	return r.get(ctx, id)
}

func (r *ThreadRepository) Create(ctx context.Context, t forum.Thread) (forum.Thread, error) {
	return r.create(ctx, t)
}

func (r *ThreadRepository) Update(ctx context.Context, cs forum.ThreadChangeset) (forum.Thread, error) {
	columns := map[string]any{}
	if cs.Title != nil {
		columns["title"] = *cs.Title
	}
	if cs.Locked != nil {
		columns["locked"] = *cs.Locked
	}
	if cs.Archived != nil {
		columns["archived"] = *cs.Archived
	}
	return r.update(ctx, cs.UUID, columns)
}

func (r *ThreadRepository) Delete(ctx context.Context, id ident.ThreadUUID) (forum.Thread, error) {
	return r.delete(ctx, id)
}

// CreateWithInitialPost 在同一事务中写入线程与首帖，任一步失败都会整体回滚。
func (r *ThreadRepository) CreateWithInitialPost(ctx context.Context, thread forum.Thread, post forum.Post) (forum.ThreadData, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&thread).Error; err != nil {
			return err
		}
		post.ThreadUUID = thread.UUID
		return tx.Omit(clause.Associations).Create(&post).Error
	})
	if err != nil {
		return forum.ThreadData{}, translate("create thread with post", err)
	}
	author, err := r.users.Get(ctx, thread.AuthorUUID)
	if err != nil {
		return forum.ThreadData{}, err
	}
	return forum.ThreadData{Thread: thread, Post: post, User: author}, nil
}

// GetMinimal 返回线程与作者。
func (r *ThreadRepository) GetMinimal(ctx context.Context, id ident.ThreadUUID) (forum.MinimalThreadData, error) {
	var t forum.Thread
	err := r.db.WithContext(ctx).InnerJoins("Author").Where("threads.uuid = ?", id).First(&t).Error
	if err != nil {
		return forum.MinimalThreadData{}, translate("get thread", err)
	}
	return forum.MinimalThreadData{Thread: t, User: t.Author}, nil
}

// InForum 分页列出论坛内未归档的线程，按创建时间倒序。
func (r *ThreadRepository) InForum(ctx context.Context, forumID ident.ForumUUID, req PageRequest) (Page[forum.MinimalThreadData], error) {
	base := r.db.Model(&forum.Thread{}).
		Where("threads.forum_uuid = ? AND threads.archived = ?", forumID, false)
	page, err := Paginate[forum.Thread](ctx, base, req, func(tx *gorm.DB) *gorm.DB {
		return tx.InnerJoins("Author").Order("threads.created_date DESC, threads.uuid ASC")
	})
	if err != nil {
		return Page[forum.MinimalThreadData]{}, err
	}
	return mapPage(page, func(t forum.Thread) forum.MinimalThreadData {
		return forum.MinimalThreadData{Thread: t, User: t.Author}
	}), nil
}
