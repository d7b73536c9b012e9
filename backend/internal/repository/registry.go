package repository

import "gorm.io/gorm"

// Repositories 汇总所有实体仓储，共享同一个连接池。
type Repositories struct {
	Users     *UserRepository
	Articles  *ArticleRepository
	Forums    *ForumRepository
	Threads   *ThreadRepository
	Posts     *PostRepository
	Buckets   *BucketRepository
	Questions *QuestionRepository
	Answers   *AnswerRepository
	Chats     *ChatRepository
	Messages  *MessageRepository
}

// NewRepositories 用同一个 *gorm.DB 构造全部仓储。
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:     NewUserRepository(db),
		Articles:  NewArticleRepository(db),
		Forums:    NewForumRepository(db),
		Threads:   NewThreadRepository(db),
		Posts:     NewPostRepository(db),
		Buckets:   NewBucketRepository(db),
		Questions: NewQuestionRepository(db),
		Answers:   NewAnswerRepository(db),
		Chats:     NewChatRepository(db),
		Messages:  NewMessageRepository(db),
	}
}
