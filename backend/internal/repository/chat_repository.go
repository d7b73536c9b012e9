package repository

import (
	"context"

	"weekend-at-joes/backend/internal/domain/chat"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/pkg/ident"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository 负责聊天室与成员关系。
type ChatRepository struct {
	db *gorm.DB
	crud[chat.Chat, ident.ChatUUID]
}

var _ Repository[chat.Chat, ident.ChatUUID, chat.Changeset] = (*ChatRepository)(nil)

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db, crud: newCrud[chat.Chat, ident.ChatUUID](db, "chat")}
}

func (r *ChatRepository) Get(ctx context.Context, id ident.ChatUUID) (chat.Chat, error) {
	return r.get(ctx, id)
}

func (r *ChatRepository) Create(ctx context.Context, c chat.Chat) (chat.Chat, error) {
	return r.create(ctx, c)
}

func (r *ChatRepository) Update(ctx context.Context, cs chat.Changeset) (chat.Chat, error) {
	columns := map[string]any{}
	if cs.ChatName != nil {
		columns["chat_name"] = *cs.ChatName
	}
	return r.update(ctx, cs.UUID, columns)
}

func (r *ChatRepository) Delete(ctx context.Context, id ident.ChatUUID) (chat.Chat, error) {
	return r.delete(ctx, id)
}

// CreateWithLeader 创建聊天室，Leader 同时成为第一个成员。
func (r *ChatRepository) CreateWithLeader(ctx context.Context, c chat.Chat) (chat.Chat, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&c).Error; err != nil {
			return err
		}
		member := chat.ChatUser{ChatUUID: c.UUID, UserUUID: c.LeaderUUID}
		return tx.Omit(clause.Associations).Create(&member).Error
	})
	return c, translate("create chat", err)
}

// AddUser 添加成员；重复添加返回 ErrConstraintViolation。
func (r *ChatRepository) AddUser(ctx context.Context, chatID ident.ChatUUID, userID ident.UserUUID) error {
	member := chat.ChatUser{ChatUUID: chatID, UserUUID: userID}
	return translate("add chat user", r.db.WithContext(ctx).Omit(clause.Associations).Create(&member).Error)
}

// IsMember 判断用户是否属于聊天室。
func (r *ChatRepository) IsMember(ctx context.Context, chatID ident.ChatUUID, userID ident.UserUUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&chat.ChatUser{}).
		Where("chat_uuid = ? AND user_uuid = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		return false, translate("check chat membership", err)
	}
	return count > 0, nil
}

// ForUser 列出用户参与的聊天室。
func (r *ChatRepository) ForUser(ctx context.Context, userID ident.UserUUID) ([]chat.Chat, error) {
	chats := make([]chat.Chat, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_users ON chat_users.chat_uuid = chats.uuid").
		Where("chat_users.user_uuid = ?", userID).
		Order("chats.uuid ASC").
		Find(&chats).Error
	return chats, translate("list user chats", err)
}

// Members 列出聊天室全部成员。
func (r *ChatRepository) Members(ctx context.Context, chatID ident.ChatUUID) ([]user.User, error) {
	users := make([]user.User, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_users ON chat_users.user_uuid = users.uuid").
		Where("chat_users.chat_uuid = ?", chatID).
		Order("users.user_name ASC").
		Find(&users).Error
	return users, translate("list chat members", err)
}

// MessageRepository 负责聊天消息。
type MessageRepository struct {
	db *gorm.DB
	crud[chat.Message, ident.MessageUUID]
}

// MessageChangeset 只支持标记已读。
type MessageChangeset struct {
	UUID     ident.MessageUUID
	ReadFlag *bool
}

var _ Repository[chat.Message, ident.MessageUUID, MessageChangeset] = (*MessageRepository)(nil)

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db, crud: newCrud[chat.Message, ident.MessageUUID](db, "message")}
}

func (r *MessageRepository) Get(ctx context.Context, id ident.MessageUUID) (chat.Message, error) {
	return r.get(ctx, id)
}

func (r *MessageRepository) Create(ctx context.Context, m chat.Message) (chat.Message, error) {
	return r.create(ctx, m)
}

func (r *MessageRepository) Update(ctx context.Context, cs MessageChangeset) (chat.Message, error) {
	columns := map[string]any{}
	if cs.ReadFlag != nil {
		columns["read_flag"] = *cs.ReadFlag
	}
	return r.update(ctx, cs.UUID, columns)
}

func (r *MessageRepository) Delete(context.Context, ident.MessageUUID) (chat.Message, error) {
	return chat.Message{}, unsupported("delete", "message")
}

// GetData 返回消息与作者。
func (r *MessageRepository) GetData(ctx context.Context, id ident.MessageUUID) (chat.MessageData, error) {
	var m chat.Message
	err := r.db.WithContext(ctx).InnerJoins("Author").Where("messages.uuid = ?", id).First(&m).Error
	if err != nil {
		return chat.MessageData{}, translate("get message", err)
	}
	return chat.MessageData{Message: m, User: m.Author}, nil
}

// PageForChat 按固定页大小分页，最新消息在前。
func (r *MessageRepository) PageForChat(ctx context.Context, chatID ident.ChatUUID, index int) (Page[chat.MessageData], error) {
	base := r.db.Model(&chat.Message{}).Where("messages.chat_uuid = ?", chatID)
	page, err := Paginate[chat.Message](ctx, base, PageRequest{Index: index, Size: chat.MessagePageSize}, func(tx *gorm.DB) *gorm.DB {
		return tx.InnerJoins("Author").Order("messages.create_date DESC, messages.uuid DESC")
	})
	if err != nil {
		return Page[chat.MessageData]{}, err
	}
	return mapPage(page, func(m chat.Message) chat.MessageData {
		return chat.MessageData{Message: m, User: m.Author}
	}), nil
}
