package wire

import (
	"time"

	"weekend-at-joes/pkg/ident"
)

type ArticleResponse struct {
	UUID        ident.ArticleUUID `json:"uuid"`
	AuthorUUID  ident.UserUUID    `json:"author_uuid"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Body        string            `json:"body"`
	PublishDate *time.Time        `json:"publish_date"`
}

type MinimalArticleResponse struct {
	UUID        ident.ArticleUUID `json:"uuid"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	PublishDate *time.Time        `json:"publish_date"`
}

// FullArticleResponse 附带作者信息，详情页使用。
type FullArticleResponse struct {
	UUID        ident.ArticleUUID `json:"uuid"`
	Author      UserResponse      `json:"author"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Body        string            `json:"body"`
	PublishDate *time.Time        `json:"publish_date"`
}

// ArticlePreviewResponse 是列表页的投影，正文被截断。
type ArticlePreviewResponse struct {
	UUID        ident.ArticleUUID `json:"uuid"`
	Author      UserResponse      `json:"author"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	BodyPreview string            `json:"body_preview"`
	PublishDate *time.Time        `json:"publish_date"`
}

type NewArticleRequest struct {
	AuthorUUID ident.UserUUID `json:"author_uuid" binding:"required"`
	Title      string         `json:"title" binding:"required,max=255"`
	Body       string         `json:"body"`
}

type UpdateArticleRequest struct {
	UUID  ident.ArticleUUID `json:"uuid" binding:"required"`
	Title *string           `json:"title,omitempty"`
	Body  *string           `json:"body,omitempty"`
}
