// Package adminuser 为管理员提供用户总览与角色分配。
package adminuser

import (
	"context"
	"fmt"
	"slices"

	"weekend-at-joes/backend/internal/apperr"
	domain "weekend-at-joes/backend/internal/domain/user"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/pkg/ident"

	"go.uber.org/zap"
)

// Config 描述管理员用户总览服务的运行参数。
type Config struct {
	MaxPageSize int
}

var (
	// ErrUnknownRole 表示请求中出现了系统不认识的角色。
	ErrUnknownRole = fmt.Errorf("%w: unknown role", apperr.ErrBadRequest)
	// ErrSelfDemotion 管理员不能撤销自己的 admin 角色，避免系统里不剩管理员。
	ErrSelfDemotion = fmt.Errorf("%w: cannot remove own admin role", apperr.ErrBadRequest)
	// ErrPageTooLarge 页大小超过配置上限。
	ErrPageTooLarge = fmt.Errorf("%w: page size too large", apperr.ErrBadRequest)
)

var knownRoles = []string{domain.RoleAdmin, domain.RoleModerator}

// Service 聚合用户与其内容数量，支撑管理员用户总览页面。
type Service struct {
	cfg    Config
	users  *repository.UserRepository
	logger *zap.SugaredLogger
}

// ListParams 描述管理员用户总览列表的查询参数。
type ListParams struct {
	Page  repository.PageRequest
	Query string
}

// OverviewItem 表示单个用户的聚合信息。
type OverviewItem struct {
	User   domain.User
	Counts repository.UserContentCounts
}

// NewService 构造管理员用户总览服务。
func NewService(cfg Config, users *repository.UserRepository, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = appLogger.Named("service.adminuser")
	}
	return &Service{cfg: cfg, users: users, logger: logger}
}

// ListOverview 分页列出用户并附带各自的文章、线程、帖子数量。
// 计数查询失败只记录日志，列表仍然返回，计数为零。
func (s *Service) ListOverview(ctx context.Context, params ListParams) (repository.Page[OverviewItem], error) {
	if s.cfg.MaxPageSize > 0 && params.Page.Size > s.cfg.MaxPageSize {
		return repository.Page[OverviewItem]{}, ErrPageTooLarge
	}

	users, err := s.users.ListUsers(ctx, params.Query, params.Page)
	if err != nil {
		return repository.Page[OverviewItem]{}, fmt.Errorf("list admin overview: %w", err)
	}

	ids := make([]ident.UserUUID, 0, len(users.Items))
	for _, u := range users.Items {
		ids = append(ids, u.UUID)
	}
	counts, err := s.users.CountContentByAuthors(ctx, ids)
	if err != nil {
		s.logger.Warnw("count content by authors failed", "error", err)
		counts = nil
	}

	items := make([]OverviewItem, 0, len(users.Items))
	for _, u := range users.Items {
		items = append(items, OverviewItem{User: u, Counts: counts[u.UUID]})
	}
	return repository.Page[OverviewItem]{
		Items:      items,
		TotalCount: users.TotalCount,
		Index:      users.Index,
		Size:       users.Size,
	}, nil
}

// SetRoles 用 roles 整体替换目标用户的角色。新角色要等目标用户重新登录拿到新令牌后生效。
func (s *Service) SetRoles(ctx context.Context, actor domain.Principal, target ident.UserUUID, roles []string) (domain.User, error) {
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		if !slices.Contains(knownRoles, role) {
			return domain.User{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}
		if !slices.Contains(normalized, role) {
			normalized = append(normalized, role)
		}
	}
	slices.Sort(normalized)

	if target == actor.UUID && !slices.Contains(normalized, domain.RoleAdmin) {
		return domain.User{}, ErrSelfDemotion
	}

	u, err := s.users.Update(ctx, domain.Changeset{UUID: target, Roles: normalized})
	if err != nil {
		return domain.User{}, fmt.Errorf("set roles: %w", err)
	}
	s.logger.Infow("roles updated", "actor", actor.UUID, "target", target, "roles", normalized)
	return u, nil
}
