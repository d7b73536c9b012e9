package repository

import (
	"context"
	"time"

	"weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/pkg/ident"

	"gorm.io/gorm"
)

// PostRepository 负责帖子与回复树。
type PostRepository struct {
	db  *gorm.DB
	now func() time.Time
	crud[forum.Post, ident.PostUUID]
}

var _ Repository[forum.Post, ident.PostUUID, forum.PostChangeset] = (*PostRepository)(nil)

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{
		db:   db,
		now:  time.Now,
		crud: newCrud[forum.Post, ident.PostUUID](db, "post"),
	}
}

func (r *PostRepository) Get(ctx context.Context, id ident.PostUUID) (forum.Post, error) {
	return r.get(ctx, id)
}

func (r *PostRepository) Create(ctx context.Context, p forum.Post) (forum.Post, error) {
	return r.create(ctx, p)
}

// Update 修改正文并记录 modified_date。
func (r *PostRepository) Update(ctx context.Context, cs forum.PostChangeset) (forum.Post, error) {
	columns := map[string]any{}
	if cs.Content != nil {
		columns["content"] = *cs.Content
		columns["modified_date"] = r.now().UTC()
	}
	return r.update(ctx, cs.UUID, columns)
}

func (r *PostRepository) Delete(ctx context.Context, id ident.PostUUID) (forum.Post, error) {
	return r.delete(ctx, id)
}

// Censor 将帖子标记为已屏蔽，正文保留但不再对外展示。
func (r *PostRepository) Censor(ctx context.Context, id ident.PostUUID) (forum.Post, error) {
	return r.update(ctx, id, map[string]any{"censored": true})
}

// GetData 返回帖子与作者（无子节点）。
func (r *PostRepository) GetData(ctx context.Context, id ident.PostUUID) (forum.PostData, error) {
	var p forum.Post
	err := r.db.WithContext(ctx).InnerJoins("Author").Where("posts.uuid = ?", id).First(&p).Error
	if err != nil {
		return forum.PostData{}, translate("get post", err)
	}
	return forum.PostData{Post: p, User: p.Author}, nil
}

// TreeForThread 一次查出线程内全部帖子，再在内存里按 parent 组装成树。
// 父节点缺失的帖子被当作根节点，保证不会丢数据。
func (r *PostRepository) TreeForThread(ctx context.Context, threadID ident.ThreadUUID) ([]forum.PostData, error) {
	var posts []forum.Post
	err := r.db.WithContext(ctx).
		InnerJoins("Author").
		Where("posts.thread_uuid = ?", threadID).
		Order("posts.created_date ASC, posts.uuid ASC").
		Find(&posts).Error
	if err != nil {
		return nil, translate("list thread posts", err)
	}
	return BuildPostTree(posts), nil
}

// BuildPostTree 按 created_date 顺序保持兄弟节点次序。
func BuildPostTree(posts []forum.Post) []forum.PostData {
	present := make(map[ident.PostUUID]bool, len(posts))
	for _, p := range posts {
		present[p.UUID] = true
	}
	children := make(map[ident.PostUUID][]forum.Post, len(posts))
	roots := make([]forum.Post, 0)
	for _, p := range posts {
		if p.ParentUUID != nil && present[*p.ParentUUID] && *p.ParentUUID != p.UUID {
			children[*p.ParentUUID] = append(children[*p.ParentUUID], p)
			continue
		}
		roots = append(roots, p)
	}

	var build func(p forum.Post) forum.PostData
	build = func(p forum.Post) forum.PostData {
		node := forum.PostData{Post: p, User: p.Author, Children: make([]forum.PostData, 0, len(children[p.UUID]))}
		for _, child := range children[p.UUID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	tree := make([]forum.PostData, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree
}
