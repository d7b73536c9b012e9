package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule 描述一个固定窗口限流规则：Window 内最多 Limit 次。
type Rule struct {
	Limit  int
	Window time.Duration
}

// Disabled 表示不限流。
func (r Rule) Disabled() bool {
	return r.Limit <= 0
}

func (r Rule) window() time.Duration {
	if r.Window <= 0 {
		return time.Minute
	}
	return r.Window
}

// Decision 是一次限流判断的结果。
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter 定义限流器的通用能力，key 由调用方拼接，如 "post:<user uuid>"。
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Decision, error)
}

// Key 拼接限流 key，scope 区分业务，subject 通常是用户或 IP。
func Key(scope string, subject fmt.Stringer) string {
	return scope + ":" + subject.String()
}

// RedisLimiter 使用 Redis INCR + EXPIRE 实现多实例共享的固定窗口计数。
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string, rule Rule) (Decision, error) {
	if rule.Disabled() || r == nil || r.client == nil {
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	namespaced := r.prefix + ":" + key
	count64, err := r.client.Incr(ctx, namespaced).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	count := int(count64)
	// 仅在窗口首次计数时设置过期时间，避免每次请求都把窗口往后推。
	if count == 1 {
		if err := r.client.Expire(ctx, namespaced, rule.window()).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if count <= rule.Limit {
		return Decision{Allowed: true, Remaining: rule.Limit - count}, nil
	}

	ttl, err := r.client.TTL(ctx, namespaced).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl < 0 {
		// 过期时间丢失时补设，防止 key 永久存在。
		ttl = rule.window()
		_ = r.client.Expire(ctx, namespaced, ttl).Err()
	}
	return Decision{Allowed: false, RetryAfter: ttl}, nil
}

// MemoryLimiter 是单进程实现，用于本地模式与单元测试。
type MemoryLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]window
}

type window struct {
	count   int
	expires time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{now: time.Now, windows: make(map[string]window)}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string, rule Rule) (Decision, error) {
	if rule.Disabled() || m == nil {
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.expires) {
		w = window{expires: now.Add(rule.window())}
	}
	w.count++
	m.windows[key] = w

	if w.count > rule.Limit {
		return Decision{Allowed: false, RetryAfter: w.expires.Sub(now)}, nil
	}
	return Decision{Allowed: true, Remaining: rule.Limit - w.count}, nil
}
