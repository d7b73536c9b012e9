// Package ident 提供按实体区分的强类型主键。
//
// 每种实体都有自己的 UUID 类型，编译期即可阻止把 ArticleUUID 传给需要 UserUUID 的地方。
// 底层统一为 google/uuid，数据库中以 varchar(36) 存储。
package ident

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// UUID 是带实体标记 K 的 uuid；K 只在类型层面存在。
type UUID[K any] uuid.UUID

// Key 约束所有实体主键类型，供泛型仓储使用；driver.Valuer 保证能直接作为查询参数。
type Key interface {
	comparable
	fmt.Stringer
	driver.Valuer
	IsZero() bool
}

type (
	userKind     struct{}
	articleKind  struct{}
	forumKind    struct{}
	threadKind   struct{}
	postKind     struct{}
	bucketKind   struct{}
	questionKind struct{}
	answerKind   struct{}
	chatKind     struct{}
	messageKind  struct{}
)

type (
	UserUUID     = UUID[userKind]
	ArticleUUID  = UUID[articleKind]
	ForumUUID    = UUID[forumKind]
	ThreadUUID   = UUID[threadKind]
	PostUUID     = UUID[postKind]
	BucketUUID   = UUID[bucketKind]
	QuestionUUID = UUID[questionKind]
	AnswerUUID   = UUID[answerKind]
	ChatUUID     = UUID[chatKind]
	MessageUUID  = UUID[messageKind]
)

// New 生成一个随机 (v4) 主键，T 为具体的主键类型，如 New[UserUUID]()。
func New[T ~[16]byte]() T {
	return T(uuid.New())
}

// Parse 解析字符串形式的主键。
func Parse[T ~[16]byte](raw string) (T, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("parse uuid %q: %w", raw, err)
	}
	return T(id), nil
}

// MustParse 仅用于测试与固定数据。
func MustParse[T ~[16]byte](raw string) T {
	return T(uuid.MustParse(raw))
}

func (u UUID[K]) String() string {
	return uuid.UUID(u).String()
}

// IsZero 判断是否为零值（未赋值）。
func (u UUID[K]) IsZero() bool {
	return uuid.UUID(u) == uuid.Nil
}

func (u UUID[K]) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UUID[K]) UnmarshalText(text []byte) error {
	id, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*u = UUID[K](id)
	return nil
}

// Scan 实现 sql.Scanner，兼容 string / []byte 两种驱动返回值。
func (u *UUID[K]) Scan(src any) error {
	var raw uuid.UUID
	if err := raw.Scan(src); err != nil {
		return err
	}
	*u = UUID[K](raw)
	return nil
}

// Value 实现 driver.Valuer，统一以 36 位字符串落库。
func (u UUID[K]) Value() (driver.Value, error) {
	return u.String(), nil
}

// GormDataType 让 AutoMigrate 使用固定长度的字符串列。
func (UUID[K]) GormDataType() string {
	return "varchar(36)"
}
