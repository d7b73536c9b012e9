package wire

import (
	"time"

	"weekend-at-joes/pkg/ident"
)

type ChatResponse struct {
	UUID       ident.ChatUUID `json:"uuid"`
	ChatName   *string        `json:"chat_name"`
	LeaderUUID ident.UserUUID `json:"leader_uuid"`
}

type NewChatRequest struct {
	ChatName *string `json:"chat_name"`
}

type AddUserToChatRequest struct {
	UserUUID ident.UserUUID `json:"user_uuid" binding:"required"`
}

type MessageResponse struct {
	UUID       ident.MessageUUID  `json:"uuid"`
	ChatUUID   ident.ChatUUID     `json:"chat_uuid"`
	Author     UserResponse       `json:"author"`
	ReplyUUID  *ident.MessageUUID `json:"reply_uuid"`
	Content    string             `json:"message_content"`
	ReadFlag   bool               `json:"read_flag"`
	CreateDate time.Time          `json:"create_date"`
}

// NewMessageRequest 中的 AuthorUUID 必须与请求者一致。
type NewMessageRequest struct {
	AuthorUUID ident.UserUUID     `json:"author_uuid" binding:"required"`
	ReplyUUID  *ident.MessageUUID `json:"reply_uuid,omitempty"`
	Content    string             `json:"message_content" binding:"required,max=4096"`
}
