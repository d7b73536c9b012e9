package chat

import (
	"time"

	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/pkg/ident"
)

// MessagePageSize 是聊天消息分页的固定大小。
const MessagePageSize = 25

// Chat 是一个聊天室，Leader 可以拉人。
type Chat struct {
	UUID       ident.ChatUUID `gorm:"primaryKey;type:varchar(36)"`
	ChatName   *string        `gorm:"size:128"`
	LeaderUUID ident.UserUUID `gorm:"type:varchar(36);index;not null"`

	Leader user.User `gorm:"foreignKey:LeaderUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

func (Chat) TableName() string {
	return "chats"
}

// ChatUser 记录聊天成员关系。
type ChatUser struct {
	ChatUUID ident.ChatUUID `gorm:"primaryKey;type:varchar(36)"`
	UserUUID ident.UserUUID `gorm:"primaryKey;type:varchar(36)"`

	Chat Chat      `gorm:"foreignKey:ChatUUID;references:UUID;constraint:OnDelete:CASCADE"`
	User user.User `gorm:"foreignKey:UserUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

func (ChatUser) TableName() string {
	return "chat_users"
}

// Message 是聊天中的一条消息。
type Message struct {
	UUID       ident.MessageUUID  `gorm:"primaryKey;type:varchar(36)"`
	ChatUUID   ident.ChatUUID     `gorm:"type:varchar(36);index:idx_messages_chat_date,priority:1;not null"`
	AuthorUUID ident.UserUUID     `gorm:"type:varchar(36);index;not null"`
	ReplyUUID  *ident.MessageUUID `gorm:"type:varchar(36)"`
	Content    string             `gorm:"column:message_content;type:text;not null"`
	ReadFlag   bool               `gorm:"not null;default:false"`
	CreateDate time.Time          `gorm:"index:idx_messages_chat_date,priority:2;not null"`

	Chat   Chat      `gorm:"foreignKey:ChatUUID;references:UUID;constraint:OnDelete:CASCADE"`
	Author user.User `gorm:"foreignKey:AuthorUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageData 是消息与作者。
type MessageData struct {
	Message Message
	User    user.User
}

// Changeset 允许修改聊天名称。
type Changeset struct {
	UUID     ident.ChatUUID
	ChatName *string
}
