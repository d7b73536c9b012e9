package captcha

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mojocn/base64Captcha"
	"github.com/redis/go-redis/v9"
)

// AnswerStore 保存验证码答案。Take 读取后立即删除，答案不存在时返回 ErrCaptchaNotFound。
type AnswerStore interface {
	Save(ctx context.Context, id, answer string) error
	Take(ctx context.Context, id string) (string, error)
}

// RedisStore 多实例部署使用。
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "captcha"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

func (s *RedisStore) Save(ctx context.Context, id, answer string) error {
	return s.client.Set(ctx, s.key(id), answer, s.ttl).Err()
}

func (s *RedisStore) Take(ctx context.Context, id string) (string, error) {
	answer, err := s.client.GetDel(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCaptchaNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get captcha: %w", err)
	}
	return answer, nil
}

// MemoryStore 包装 base64Captcha 自带的内存存储，本地模式使用。
type MemoryStore struct {
	inner base64Captcha.Store
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryStore{inner: base64Captcha.NewMemoryStore(base64Captcha.GCLimitNumber, ttl)}
}

func (s *MemoryStore) Save(_ context.Context, id, answer string) error {
	return s.inner.Set(id, answer)
}

func (s *MemoryStore) Take(_ context.Context, id string) (string, error) {
	answer := s.inner.Get(id, true)
	if answer == "" {
		return "", ErrCaptchaNotFound
	}
	return answer, nil
}
