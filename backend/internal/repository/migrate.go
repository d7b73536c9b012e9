package repository

import (
	"fmt"

	"weekend-at-joes/backend/internal/domain/article"
	"weekend-at-joes/backend/internal/domain/bucket"
	"weekend-at-joes/backend/internal/domain/chat"
	"weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/backend/internal/domain/user"

	"gorm.io/gorm"
)

// Models 返回需要迁移的全部实体，按外键依赖排列。
func Models() []any {
	return []any{
		&user.User{},
		&article.Article{},
		&forum.Forum{},
		&forum.Thread{},
		&forum.Post{},
		&bucket.Bucket{},
		&bucket.BucketUser{},
		&bucket.Question{},
		&bucket.Answer{},
		&chat.Chat{},
		&chat.ChatUser{},
		&chat.Message{},
	}
}

// AutoMigrate 建表并创建外键约束。
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
