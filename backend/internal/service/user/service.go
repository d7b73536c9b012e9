package user

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"weekend-at-joes/backend/internal/apperr"
	domain "weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/pkg/ident"
)

// MaxDisplayNameLength 与 users.display_name 列宽一致。
const MaxDisplayNameLength = 64

// ErrDisplayNameInvalid 表示展示名称为空或过长。
var ErrDisplayNameInvalid = fmt.Errorf("%w: display name must be 1-%d characters", apperr.ErrBadRequest, MaxDisplayNameLength)

// Service 负责用户资料的查询、改名与注销。
type Service struct {
	users *repository.UserRepository
}

// NewService 构造用户服务层实例。
func NewService(users *repository.UserRepository) *Service {
	return &Service{users: users}
}

// Get 返回指定用户。
func (s *Service) Get(ctx context.Context, id ident.UserUUID) (domain.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateDisplayName 只允许修改自己的展示名称。
func (s *Service) UpdateDisplayName(ctx context.Context, requester domain.Principal, displayName string) (domain.User, error) {
	name := strings.TrimSpace(displayName)
	if name == "" || utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return domain.User{}, ErrDisplayNameInvalid
	}
	u, err := s.users.Update(ctx, domain.Changeset{UUID: requester.UUID, DisplayName: &name})
	if err != nil {
		return domain.User{}, fmt.Errorf("update display name: %w", err)
	}
	return u, nil
}

// Delete 注销当前用户，文章、帖子等通过外键级联删除。
func (s *Service) Delete(ctx context.Context, requester domain.Principal) (domain.User, error) {
	u, err := s.users.Delete(ctx, requester.UUID)
	if err != nil {
		return domain.User{}, fmt.Errorf("delete user: %w", err)
	}
	return u, nil
}

// Lookup 按 UUID 批量取用户，缺失的 UUID 不出现在结果中。
func (s *Service) Lookup(ctx context.Context, ids []ident.UserUUID) (map[ident.UserUUID]domain.User, error) {
	users, err := s.users.GetByUUIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup users: %w", err)
	}
	out := make(map[ident.UserUUID]domain.User, len(users))
	for _, u := range users {
		out[u.UUID] = u
	}
	return out, nil
}
