package bucket

import (
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/pkg/ident"
)

// Bucket 是一个问答房间，参与者需经所有者批准。
type Bucket struct {
	UUID           ident.BucketUUID `gorm:"primaryKey;type:varchar(36)"`
	BucketName     string           `gorm:"size:128;not null"`
	IsPublic       bool             `gorm:"not null;default:false;index"`
	IsPrivateShown bool             `gorm:"not null;default:false"`
}

func (Bucket) TableName() string {
	return "buckets"
}

// BucketUser 是 bucket 与用户的关联；创建者 IsOwner 且自动批准。
type BucketUser struct {
	BucketUUID ident.BucketUUID `gorm:"primaryKey;type:varchar(36)"`
	UserUUID   ident.UserUUID   `gorm:"primaryKey;type:varchar(36)"`
	IsOwner    bool             `gorm:"not null;default:false"`
	Approved   bool             `gorm:"not null;default:false"`

	Bucket Bucket    `gorm:"foreignKey:BucketUUID;references:UUID;constraint:OnDelete:CASCADE"`
	User   user.User `gorm:"foreignKey:UserUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

func (BucketUser) TableName() string {
	return "bucket_users"
}

// Question 属于某个 bucket；OnFloor 表示当前可被随机抽取。
type Question struct {
	UUID         ident.QuestionUUID `gorm:"primaryKey;type:varchar(36)"`
	BucketUUID   ident.BucketUUID   `gorm:"type:varchar(36);index;not null"`
	AuthorUUID   ident.UserUUID     `gorm:"type:varchar(36);index;not null"`
	QuestionText string             `gorm:"type:text;not null"`
	OnFloor      bool               `gorm:"not null;default:true"`

	Bucket Bucket    `gorm:"foreignKey:BucketUUID;references:UUID;constraint:OnDelete:CASCADE"`
	Author user.User `gorm:"foreignKey:AuthorUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

// Answer 是对问题的回答，AnswerText 允许为空（仅表态）。
type Answer struct {
	UUID         ident.AnswerUUID   `gorm:"primaryKey;type:varchar(36)"`
	QuestionUUID ident.QuestionUUID `gorm:"type:varchar(36);index;not null"`
	AuthorUUID   ident.UserUUID     `gorm:"type:varchar(36);index;not null"`
	AnswerText   *string            `gorm:"type:text"`

	Question Question  `gorm:"foreignKey:QuestionUUID;references:UUID;constraint:OnDelete:CASCADE"`
	Author   user.User `gorm:"foreignKey:AuthorUUID;references:UUID;constraint:OnDelete:CASCADE"`
}

func (Answer) TableName() string {
	return "answers"
}

// AnswerData 是回答与作者。
type AnswerData struct {
	Answer Answer
	User   user.User
}

// QuestionData 是问题、作者与全部回答。
type QuestionData struct {
	Question Question
	User     user.User
	Answers  []AnswerData
}

// Changeset 目前只允许修改名称与可见性。
type Changeset struct {
	UUID       ident.BucketUUID
	BucketName *string
	IsPublic   *bool
}

// QuestionChangeset 描述问题的部分更新。
type QuestionChangeset struct {
	UUID         ident.QuestionUUID
	QuestionText *string
	OnFloor      *bool
}
