package wire

import (
	"time"

	"weekend-at-joes/pkg/ident"
)

type ForumResponse struct {
	UUID        ident.ForumUUID `json:"uuid"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
}

type NewForumRequest struct {
	Title       string `json:"title" binding:"required,max=128"`
	Description string `json:"description"`
}

// MinimalThreadResponse 不包含帖子内容，列表与锁定/归档接口返回它。
type MinimalThreadResponse struct {
	UUID        ident.ThreadUUID `json:"uuid"`
	ForumUUID   ident.ForumUUID  `json:"forum_uuid"`
	Title       string           `json:"title"`
	Author      UserResponse     `json:"author"`
	CreatedDate time.Time        `json:"created_date"`
	Locked      bool             `json:"locked"`
	Archived    bool             `json:"archived"`
}

// ThreadResponse 附带首帖，创建线程后返回。
type ThreadResponse struct {
	MinimalThreadResponse
	InitialPost PostResponse `json:"initial_post"`
}

// FullThreadResponse 附带整棵回复树。
type FullThreadResponse struct {
	MinimalThreadResponse
	Posts []PostResponse `json:"posts"`
}

type NewThreadRequest struct {
	ForumUUID ident.ForumUUID `json:"forum_uuid" binding:"required"`
	Title     string          `json:"title" binding:"required,max=255"`
	Content   string          `json:"content" binding:"required"`
}

type PostResponse struct {
	UUID         ident.PostUUID   `json:"uuid"`
	ThreadUUID   ident.ThreadUUID `json:"thread_uuid"`
	ParentUUID   *ident.PostUUID  `json:"parent_uuid"`
	Author       UserResponse     `json:"author"`
	CreatedDate  time.Time        `json:"created_date"`
	ModifiedDate *time.Time       `json:"modified_date"`
	Content      string           `json:"content"`
	Censored     bool             `json:"censored"`
	Children     []PostResponse   `json:"children"`
}

type NewPostRequest struct {
	ThreadUUID ident.ThreadUUID `json:"thread_uuid" binding:"required"`
	ParentUUID *ident.PostUUID  `json:"parent_uuid,omitempty"`
	Content    string           `json:"content" binding:"required"`
}

type EditPostRequest struct {
	UUID    ident.PostUUID `json:"uuid" binding:"required"`
	Content *string        `json:"content,omitempty"`
}
