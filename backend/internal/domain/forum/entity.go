package forum

import (
	"time"

	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/pkg/ident"
)

// Forum 是线程的容器，有线程时不允许删除。
type Forum struct {
	UUID        ident.ForumUUID `gorm:"primaryKey;type:varchar(36)"`   // 主键
	Title       string          `gorm:"size:128;uniqueIndex;not null"` // 标题（唯一）
	Description string          `gorm:"type:text"`                     // 简介
}

func (Forum) TableName() string {
	return "forums"
}

// Thread 是论坛中的讨论串；Locked 后不能回复，Archived 后不出现在列表中。
type Thread struct {
	UUID        ident.ThreadUUID `gorm:"primaryKey;type:varchar(36)"`
	ForumUUID   ident.ForumUUID  `gorm:"type:varchar(36);index;not null"`
	AuthorUUID  ident.UserUUID   `gorm:"type:varchar(36);index;not null"`
	CreatedDate time.Time        `gorm:"index;not null"`
	Locked      bool             `gorm:"not null;default:false"`
	Archived    bool             `gorm:"not null;default:false"`
	Title       string           `gorm:"size:255;not null"`

	Forum  Forum     `gorm:"foreignKey:ForumUUID;references:UUID;constraint:OnDelete:RESTRICT"`
	Author user.User `gorm:"foreignKey:AuthorUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

func (Thread) TableName() string {
	return "threads"
}

// Post 是线程中的一条回复，ParentUUID 为空表示首帖或直接回复线程。
type Post struct {
	UUID         ident.PostUUID   `gorm:"primaryKey;type:varchar(36)"`
	ThreadUUID   ident.ThreadUUID `gorm:"type:varchar(36);index;not null"`
	AuthorUUID   ident.UserUUID   `gorm:"type:varchar(36);index;not null"`
	ParentUUID   *ident.PostUUID  `gorm:"type:varchar(36);index"`
	CreatedDate  time.Time        `gorm:"not null"`
	ModifiedDate *time.Time
	Content      string `gorm:"type:text;not null"`
	Censored     bool   `gorm:"not null;default:false"`

	Thread Thread    `gorm:"foreignKey:ThreadUUID;references:UUID;constraint:OnDelete:CASCADE"`
	Author user.User `gorm:"foreignKey:AuthorUUID;references:UUID;constraint:OnDelete:CASCADE"`
	Parent *Post     `gorm:"foreignKey:ParentUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string {
	return "posts"
}

// MinimalThreadData 是线程与作者，锁定/归档/列表接口使用。
type MinimalThreadData struct {
	Thread Thread
	User   user.User
}

// ThreadData 是新建线程的结果，附带首帖。
type ThreadData struct {
	Thread Thread
	Post   Post
	User   user.User
}

// PostData 是组装好的回复树节点。
type PostData struct {
	Post     Post
	User     user.User
	Children []PostData
}

// FullThreadData 是线程详情：线程、作者与回复树。
type FullThreadData struct {
	Thread Thread
	User   user.User
	Posts  []PostData
}

// PostChangeset 描述帖子的部分更新。
type PostChangeset struct {
	UUID    ident.PostUUID
	Content *string
}

// ThreadChangeset 描述线程状态位的部分更新。
type ThreadChangeset struct {
	UUID     ident.ThreadUUID
	Title    *string
	Locked   *bool
	Archived *bool
}
