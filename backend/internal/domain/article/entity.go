package article

import (
	"time"

	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/pkg/ident"
)

// Article 是一篇博客文章。PublishDate 非空即视为已发布，这是唯一的发布标记。
type Article struct {
	UUID        ident.ArticleUUID `gorm:"primaryKey;type:varchar(36)"`     // 主键
	AuthorUUID  ident.UserUUID    `gorm:"type:varchar(36);index;not null"` // 作者
	Title       string            `gorm:"size:255;not null"`               // 标题
	Slug        string            `gorm:"size:255;uniqueIndex;not null"`   // URL 友好标识（唯一）
	Body        string            `gorm:"type:text;not null"`              // 正文
	PublishDate *time.Time        `gorm:"index"`                           // 发布时间，NULL 表示未发布

	Author user.User `gorm:"foreignKey:AuthorUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

func (Article) TableName() string {
	return "articles"
}

// Published 判断文章是否处于发布状态。
func (a Article) Published() bool {
	return a.PublishDate != nil
}

// ArticleData 是文章与作者的组合视图。
type ArticleData struct {
	Article Article
	User    user.User
}

// Changeset 描述文章的部分更新。
type Changeset struct {
	UUID  ident.ArticleUUID
	Title *string
	Body  *string
}
