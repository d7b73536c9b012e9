package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	domain "weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/backend/internal/domain/user"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/infra/metrics"
	"weekend-at-joes/backend/internal/infra/ratelimit"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/pkg/ident"

	"go.uber.org/zap"
)

var (
	ErrAdminRequired     = fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	ErrModeratorRequired = fmt.Errorf("%w: moderator role required", apperr.ErrForbidden)
	ErrNotPostOwner      = fmt.Errorf("%w: not the post author", apperr.ErrForbidden)
	ErrThreadLocked      = fmt.Errorf("%w: thread is locked", apperr.ErrBadRequest)
	ErrThreadArchived    = fmt.Errorf("%w: thread is archived", apperr.ErrBadRequest)
	ErrParentMismatch    = fmt.Errorf("%w: parent post belongs to another thread", apperr.ErrBadRequest)
	ErrEmptyContent      = fmt.Errorf("%w: content is required", apperr.ErrBadRequest)
	ErrEmptyTitle        = fmt.Errorf("%w: title is required", apperr.ErrBadRequest)
	ErrPostRateLimited   = fmt.Errorf("%w: posting too fast", apperr.ErrRateLimited)
	ErrPageTooLarge      = fmt.Errorf("%w: page size too large", apperr.ErrBadRequest)
)

// Config 服务层可调参数。
type Config struct {
	MaxPageSize int
	PostRule    ratelimit.Rule
}

// Service 聚合论坛、线程与帖子的业务规则。
type Service struct {
	forums  *repository.ForumRepository
	threads *repository.ThreadRepository
	posts   *repository.PostRepository
	limiter ratelimit.Limiter
	cfg     Config
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewService(forums *repository.ForumRepository, threads *repository.ThreadRepository, posts *repository.PostRepository, limiter ratelimit.Limiter, cfg Config) *Service {
	return &Service{
		forums:  forums,
		threads: threads,
		posts:   posts,
		limiter: limiter,
		cfg:     cfg,
		logger:  appLogger.Named("forum.service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListForums 按标题返回全部论坛。
func (s *Service) ListForums(ctx context.Context) ([]domain.Forum, error) {
	forums, err := s.forums.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forums: %w", err)
	}
	return forums, nil
}

func (s *Service) GetForum(ctx context.Context, id ident.ForumUUID) (domain.Forum, error) {
	f, err := s.forums.Get(ctx, id)
	if err != nil {
		return domain.Forum{}, fmt.Errorf("get forum: %w", err)
	}
	return f, nil
}

// CreateForum 仅管理员可用，标题重复返回 409。
func (s *Service) CreateForum(ctx context.Context, requester user.Principal, title, description string) (domain.Forum, error) {
	if !requester.HasRole(user.RoleAdmin) {
		return domain.Forum{}, ErrAdminRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Forum{}, ErrEmptyTitle
	}
	f, err := s.forums.Create(ctx, domain.Forum{
		UUID:        ident.New[ident.ForumUUID](),
		Title:       title,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return domain.Forum{}, fmt.Errorf("create forum: %w", err)
	}
	s.logger.Infow("forum created", "forum_uuid", f.UUID, "admin", requester.UserName)
	return f, nil
}

// DeleteForum 仅管理员可用；论坛下仍有线程时返回 409。
func (s *Service) DeleteForum(ctx context.Context, requester user.Principal, id ident.ForumUUID) error {
	if !requester.HasRole(user.RoleAdmin) {
		return ErrAdminRequired
	}
	if _, err := s.forums.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete forum: %w", err)
	}
	return nil
}

// ThreadsInForum 分页列出未归档线程。
func (s *Service) ThreadsInForum(ctx context.Context, forumID ident.ForumUUID, req repository.PageRequest) (repository.Page[domain.MinimalThreadData], error) {
	if s.cfg.MaxPageSize > 0 && req.Size > s.cfg.MaxPageSize {
		return repository.Page[domain.MinimalThreadData]{}, ErrPageTooLarge
	}
	if _, err := s.forums.Get(ctx, forumID); err != nil {
		return repository.Page[domain.MinimalThreadData]{}, fmt.Errorf("get forum: %w", err)
	}
	page, err := s.threads.InForum(ctx, forumID, req)
	if err != nil {
		return page, fmt.Errorf("list threads: %w", err)
	}
	return page, nil
}

// CreateThread 在一个事务里创建线程与首帖。
func (s *Service) CreateThread(ctx context.Context, requester user.Principal, forumID ident.ForumUUID, title, content string) (domain.ThreadData, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.ThreadData{}, ErrEmptyTitle
	}
	if strings.TrimSpace(content) == "" {
		return domain.ThreadData{}, ErrEmptyContent
	}
	if _, err := s.forums.Get(ctx, forumID); err != nil {
		return domain.ThreadData{}, fmt.Errorf("get forum: %w", err)
	}
	if err := s.allowPost(ctx, requester); err != nil {
		return domain.ThreadData{}, err
	}

	now := s.now()
	data, err := s.threads.CreateWithInitialPost(ctx,
		domain.Thread{
			UUID:        ident.New[ident.ThreadUUID](),
			ForumUUID:   forumID,
			AuthorUUID:  requester.UUID,
			CreatedDate: now,
			Title:       title,
		},
		domain.Post{
			UUID:        ident.New[ident.PostUUID](),
			AuthorUUID:  requester.UUID,
			CreatedDate: now,
			Content:     content,
		},
	)
	if err != nil {
		return domain.ThreadData{}, fmt.Errorf("create thread: %w", err)
	}
	metrics.RecordEvent(metrics.EventThreadCreated)
	s.logger.Infow("thread created", "thread_uuid", data.Thread.UUID, "forum_uuid", forumID)
	return data, nil
}

// GetThread 返回线程、作者与整棵回复树。
func (s *Service) GetThread(ctx context.Context, id ident.ThreadUUID) (domain.FullThreadData, error) {
	minimal, err := s.threads.GetMinimal(ctx, id)
	if err != nil {
		return domain.FullThreadData{}, fmt.Errorf("get thread: %w", err)
	}
	tree, err := s.posts.TreeForThread(ctx, id)
	if err != nil {
		return domain.FullThreadData{}, fmt.Errorf("get thread posts: %w", err)
	}
	return domain.FullThreadData{Thread: minimal.Thread, User: minimal.User, Posts: tree}, nil
}

func (s *Service) LockThread(ctx context.Context, requester user.Principal, id ident.ThreadUUID) (domain.MinimalThreadData, error) {
	locked := true
	return s.moderateThread(ctx, requester, domain.ThreadChangeset{UUID: id, Locked: &locked})
}

func (s *Service) UnlockThread(ctx context.Context, requester user.Principal, id ident.ThreadUUID) (domain.MinimalThreadData, error) {
	locked := false
	return s.moderateThread(ctx, requester, domain.ThreadChangeset{UUID: id, Locked: &locked})
}

// ArchiveThread 归档后线程不再出现在论坛列表中，也不能回复。
func (s *Service) ArchiveThread(ctx context.Context, requester user.Principal, id ident.ThreadUUID) (domain.MinimalThreadData, error) {
	archived := true
	return s.moderateThread(ctx, requester, domain.ThreadChangeset{UUID: id, Archived: &archived})
}

func (s *Service) moderateThread(ctx context.Context, requester user.Principal, cs domain.ThreadChangeset) (domain.MinimalThreadData, error) {
	if !requester.HasRole(user.RoleModerator) {
		return domain.MinimalThreadData{}, ErrModeratorRequired
	}
	if _, err := s.threads.Update(ctx, cs); err != nil {
		return domain.MinimalThreadData{}, fmt.Errorf("update thread: %w", err)
	}
	data, err := s.threads.GetMinimal(ctx, cs.UUID)
	if err != nil {
		return domain.MinimalThreadData{}, fmt.Errorf("reload thread: %w", err)
	}
	s.logger.Infow("thread moderated", "thread_uuid", cs.UUID, "moderator", requester.UserName,
		"locked", data.Thread.Locked, "archived", data.Thread.Archived)
	return data, nil
}

// Reply 回复线程或某条帖子。锁定或归档的线程拒绝回复。
func (s *Service) Reply(ctx context.Context, requester user.Principal, threadID ident.ThreadUUID, parent *ident.PostUUID, content string) (domain.PostData, error) {
	if strings.TrimSpace(content) == "" {
		return domain.PostData{}, ErrEmptyContent
	}
	thread, err := s.threads.Get(ctx, threadID)
	if err != nil {
		return domain.PostData{}, fmt.Errorf("get thread: %w", err)
	}
	switch {
	case thread.Archived:
		return domain.PostData{}, ErrThreadArchived
	case thread.Locked:
		return domain.PostData{}, ErrThreadLocked
	}
	if parent != nil {
		p, err := s.posts.Get(ctx, *parent)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return domain.PostData{}, apperr.BadRequest("parent post %s does not exist", *parent)
			}
			return domain.PostData{}, fmt.Errorf("get parent post: %w", err)
		}
		if p.ThreadUUID != threadID {
			return domain.PostData{}, ErrParentMismatch
		}
	}
	if err := s.allowPost(ctx, requester); err != nil {
		return domain.PostData{}, err
	}

	created, err := s.posts.Create(ctx, domain.Post{
		UUID:        ident.New[ident.PostUUID](),
		ThreadUUID:  threadID,
		AuthorUUID:  requester.UUID,
		ParentUUID:  parent,
		CreatedDate: s.now(),
		Content:     content,
	})
	if err != nil {
		return domain.PostData{}, fmt.Errorf("create post: %w", err)
	}
	metrics.RecordEvent(metrics.EventPostCreated)
	data, err := s.posts.GetData(ctx, created.UUID)
	if err != nil {
		return domain.PostData{}, fmt.Errorf("reload post: %w", err)
	}
	return data, nil
}

// EditPost 仅作者可改；帖子不存在同样返回 403。
func (s *Service) EditPost(ctx context.Context, requester user.Principal, cs domain.PostChangeset) (domain.PostData, error) {
	p, err := s.posts.Get(ctx, cs.UUID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return domain.PostData{}, ErrNotPostOwner
		}
		return domain.PostData{}, fmt.Errorf("load post: %w", err)
	}
	if p.AuthorUUID != requester.UUID {
		return domain.PostData{}, ErrNotPostOwner
	}
	if cs.Content != nil && strings.TrimSpace(*cs.Content) == "" {
		return domain.PostData{}, ErrEmptyContent
	}
	if _, err := s.posts.Update(ctx, cs); err != nil {
		return domain.PostData{}, fmt.Errorf("update post: %w", err)
	}
	data, err := s.posts.GetData(ctx, cs.UUID)
	if err != nil {
		return domain.PostData{}, fmt.Errorf("reload post: %w", err)
	}
	return data, nil
}

// CensorPost 仅版主可用。
func (s *Service) CensorPost(ctx context.Context, requester user.Principal, id ident.PostUUID) (domain.PostData, error) {
	if !requester.HasRole(user.RoleModerator) {
		return domain.PostData{}, ErrModeratorRequired
	}
	if _, err := s.posts.Censor(ctx, id); err != nil {
		return domain.PostData{}, fmt.Errorf("censor post: %w", err)
	}
	s.logger.Infow("post censored", "post_uuid", id, "moderator", requester.UserName)
	data, err := s.posts.GetData(ctx, id)
	if err != nil {
		return domain.PostData{}, fmt.Errorf("reload post: %w", err)
	}
	return data, nil
}

func (s *Service) allowPost(ctx context.Context, requester user.Principal) error {
	if s.limiter == nil || s.cfg.PostRule.Disabled() {
		return nil
	}
	decision, err := s.limiter.Allow(ctx, ratelimit.Key("post", requester.UUID), s.cfg.PostRule)
	if err != nil {
		// 限流存储不可用时放行，只记录日志。
		s.logger.Warnw("post rate limit check failed", "error", err)
		return nil
	}
	if !decision.Allowed {
		return ErrPostRateLimited
	}
	return nil
}
