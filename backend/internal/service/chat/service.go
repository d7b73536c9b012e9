package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weekend-at-joes/backend/internal/apperr"
	domain "weekend-at-joes/backend/internal/domain/chat"
	"weekend-at-joes/backend/internal/domain/user"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/infra/metrics"
	"weekend-at-joes/backend/internal/infra/ratelimit"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/pkg/ident"

	"go.uber.org/zap"
)

var (
	ErrNotLeader          = fmt.Errorf("%w: chat leader required", apperr.ErrForbidden)
	ErrNotMember          = fmt.Errorf("%w: chat membership required", apperr.ErrForbidden)
	ErrAuthorMismatch     = fmt.Errorf("%w: author must be the requesting user", apperr.ErrForbidden)
	ErrEmptyMessage       = fmt.Errorf("%w: message content is required", apperr.ErrBadRequest)
	ErrReplyMismatch      = fmt.Errorf("%w: replied message belongs to another chat", apperr.ErrBadRequest)
	ErrMessageRateLimited = fmt.Errorf("%w: sending messages too fast", apperr.ErrRateLimited)
)

// Service 处理聊天室成员与消息。
type Service struct {
	chats    *repository.ChatRepository
	messages *repository.MessageRepository
	limiter  ratelimit.Limiter
	rule     ratelimit.Rule
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewService(chats *repository.ChatRepository, messages *repository.MessageRepository, limiter ratelimit.Limiter, rule ratelimit.Rule) *Service {
	return &Service{
		chats:    chats,
		messages: messages,
		limiter:  limiter,
		rule:     rule,
		logger:   appLogger.Named("chat.service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SendParams 发送消息参数。
type SendParams struct {
	AuthorUUID ident.UserUUID
	ReplyUUID  *ident.MessageUUID
	Content    string
}

// Create 创建聊天室，请求者成为 leader 与第一个成员。
func (s *Service) Create(ctx context.Context, requester user.Principal, name *string) (domain.Chat, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		name = &trimmed
		if trimmed == "" {
			name = nil
		}
	}
	c, err := s.chats.CreateWithLeader(ctx, domain.Chat{
		UUID:       ident.New[ident.ChatUUID](),
		ChatName:   name,
		LeaderUUID: requester.UUID,
	})
	if err != nil {
		return domain.Chat{}, fmt.Errorf("create chat: %w", err)
	}
	return c, nil
}

// ForUser 列出请求者参与的聊天室。
func (s *Service) ForUser(ctx context.Context, requester user.Principal) ([]domain.Chat, error) {
	chats, err := s.chats.ForUser(ctx, requester.UUID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

// AddUser 仅 leader 可拉人；聊天室不存在同样返回 403。
func (s *Service) AddUser(ctx context.Context, requester user.Principal, chatID ident.ChatUUID, target ident.UserUUID) error {
	c, err := s.chats.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrNotLeader
		}
		return fmt.Errorf("load chat: %w", err)
	}
	if c.LeaderUUID != requester.UUID {
		return ErrNotLeader
	}
	if err := s.chats.AddUser(ctx, chatID, target); err != nil {
		return fmt.Errorf("add chat user: %w", err)
	}
	s.logger.Infow("chat user added", "chat_uuid", chatID, "user_uuid", target)
	return nil
}

// Members 返回聊天室成员，仅成员可见。
func (s *Service) Members(ctx context.Context, requester user.Principal, chatID ident.ChatUUID) ([]user.User, error) {
	if err := s.RequireMember(ctx, requester, chatID); err != nil {
		return nil, err
	}
	users, err := s.chats.Members(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list chat members: %w", err)
	}
	return users, nil
}

// RequireMember 非成员（含聊天室不存在）返回 ErrNotMember，websocket 订阅前也会调用。
func (s *Service) RequireMember(ctx context.Context, requester user.Principal, chatID ident.ChatUUID) error {
	ok, err := s.chats.IsMember(ctx, chatID, requester.UUID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

// Messages 按页返回消息，每页固定 25 条，最新的在前。
func (s *Service) Messages(ctx context.Context, requester user.Principal, chatID ident.ChatUUID, index int) (repository.Page[domain.MessageData], error) {
	if err := s.RequireMember(ctx, requester, chatID); err != nil {
		return repository.Page[domain.MessageData]{}, err
	}
	page, err := s.messages.PageForChat(ctx, chatID, index)
	if err != nil {
		return page, fmt.Errorf("list messages: %w", err)
	}
	return page, nil
}

// Send 发送消息；作者必须是请求者本人，且是聊天室成员。
func (s *Service) Send(ctx context.Context, requester user.Principal, chatID ident.ChatUUID, params SendParams) (domain.MessageData, error) {
	if params.AuthorUUID != requester.UUID {
		return domain.MessageData{}, ErrAuthorMismatch
	}
	if strings.TrimSpace(params.Content) == "" {
		return domain.MessageData{}, ErrEmptyMessage
	}
	if err := s.RequireMember(ctx, requester, chatID); err != nil {
		return domain.MessageData{}, err
	}
	if params.ReplyUUID != nil {
		replied, err := s.messages.Get(ctx, *params.ReplyUUID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return domain.MessageData{}, apperr.BadRequest("replied message %s does not exist", *params.ReplyUUID)
			}
			return domain.MessageData{}, fmt.Errorf("load replied message: %w", err)
		}
		if replied.ChatUUID != chatID {
			return domain.MessageData{}, ErrReplyMismatch
		}
	}
	if s.limiter != nil && !s.rule.Disabled() {
		decision, err := s.limiter.Allow(ctx, ratelimit.Key("message", requester.UUID), s.rule)
		if err != nil {
			s.logger.Warnw("message rate limit check failed", "error", err)
		} else if !decision.Allowed {
			return domain.MessageData{}, ErrMessageRateLimited
		}
	}

	m, err := s.messages.Create(ctx, domain.Message{
		UUID:       ident.New[ident.MessageUUID](),
		ChatUUID:   chatID,
		AuthorUUID: requester.UUID,
		ReplyUUID:  params.ReplyUUID,
		Content:    params.Content,
		CreateDate: s.now(),
	})
	if err != nil {
		return domain.MessageData{}, fmt.Errorf("create message: %w", err)
	}
	metrics.RecordEvent(metrics.EventMessageSent)
	data, err := s.messages.GetData(ctx, m.UUID)
	if err != nil {
		return domain.MessageData{}, fmt.Errorf("reload message: %w", err)
	}
	return data, nil
}
