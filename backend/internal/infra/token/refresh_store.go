package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"weekend-at-joes/pkg/ident"

	"github.com/redis/go-redis/v9"
)

const defaultRefreshPrefix = "auth:refresh"

// RefreshStore 保存仍然有效的刷新令牌 jti，刷新时先删后写实现轮换，登出时删除。
type RefreshStore interface {
	Save(ctx context.Context, userID ident.UserUUID, tokenID string, expiresAt time.Time) error
	Delete(ctx context.Context, userID ident.UserUUID, tokenID string) error
	Exists(ctx context.Context, userID ident.UserUUID, tokenID string) (bool, error)
}

// RedisRefreshStore 把 <user, jti> 写入 Redis，TTL 与令牌 exp 一致，多实例共享。
type RedisRefreshStore struct {
	client *redis.Client
	prefix string
}

func NewRedisRefreshStore(client *redis.Client, prefix string) *RedisRefreshStore {
	if prefix == "" {
		prefix = defaultRefreshPrefix
	}
	return &RedisRefreshStore{client: client, prefix: prefix}
}

func (s *RedisRefreshStore) key(userID ident.UserUUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, userID, tokenID)
}

// Save 已过期的令牌仍写入 1 秒，保证 key 立即失效而不是永久存在。
func (s *RedisRefreshStore) Save(ctx context.Context, userID ident.UserUUID, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token id required")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, s.key(userID, tokenID), "1", ttl).Err()
}

func (s *RedisRefreshStore) Delete(ctx context.Context, userID ident.UserUUID, tokenID string) error {
	if tokenID == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(userID, tokenID)).Err()
}

func (s *RedisRefreshStore) Exists(ctx context.Context, userID ident.UserUUID, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	count, err := s.client.Exists(ctx, s.key(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// MemoryRefreshStore 是进程内实现，本地模式与测试使用；重启后所有刷新令牌失效。
type MemoryRefreshStore struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[string]time.Time
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{now: time.Now, tokens: make(map[string]time.Time)}
}

func memoryKey(userID ident.UserUUID, tokenID string) string {
	return userID.String() + ":" + tokenID
}

func (s *MemoryRefreshStore) Save(_ context.Context, userID ident.UserUUID, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[memoryKey(userID, tokenID)] = expiresAt
	return nil
}

func (s *MemoryRefreshStore) Delete(_ context.Context, userID ident.UserUUID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, memoryKey(userID, tokenID))
	return nil
}

// Exists 访问时顺带清理已过期条目。
func (s *MemoryRefreshStore) Exists(_ context.Context, userID ident.UserUUID, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey(userID, tokenID)
	expiresAt, ok := s.tokens[key]
	if !ok {
		return false, nil
	}
	if !s.now().Before(expiresAt) {
		delete(s.tokens, key)
		return false, nil
	}
	return true, nil
}
