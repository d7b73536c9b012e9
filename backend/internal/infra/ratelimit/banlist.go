package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ban 是一条仍然有效的封禁记录。
type Ban struct {
	Subject   string    `json:"ip"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TTLSeconds 剩余秒数，向上取整。
func (b Ban) TTLSeconds(now time.Time) int64 {
	remaining := b.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	secs := remaining / time.Second
	if remaining%time.Second != 0 {
		secs++
	}
	return int64(secs)
}

// BanList 保存临时封禁的主体（通常是 IP）。
type BanList interface {
	Ban(ctx context.Context, subject string, ttl time.Duration) error
	// Banned 返回剩余封禁时长，未封禁时为 0。
	Banned(ctx context.Context, subject string) (time.Duration, error)
	Unban(ctx context.Context, subject string) error
	List(ctx context.Context, limit int) ([]Ban, error)
}

// RedisBanList 使用 <prefix>:ban:<subject> 键，TTL 即封禁时长。
type RedisBanList struct {
	client *redis.Client
	prefix string
}

func NewRedisBanList(client *redis.Client, prefix string) *RedisBanList {
	if prefix == "" {
		prefix = "ipguard"
	}
	return &RedisBanList{client: client, prefix: prefix}
}

func (l *RedisBanList) key(subject string) string {
	return fmt.Sprintf("%s:ban:%s", l.prefix, subject)
}

func (l *RedisBanList) Ban(ctx context.Context, subject string, ttl time.Duration) error {
	return l.client.Set(ctx, l.key(subject), "1", ttl).Err()
}

func (l *RedisBanList) Banned(ctx context.Context, subject string) (time.Duration, error) {
	ttl, err := l.client.TTL(ctx, l.key(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	// -2 不存在，-1 无过期时间；后者不是本模块写入的，忽略。
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (l *RedisBanList) Unban(ctx context.Context, subject string) error {
	return l.client.Del(ctx, l.key(subject)).Err()
}

// List 通过 SCAN 遍历封禁键，limit<=0 表示不限。
func (l *RedisBanList) List(ctx context.Context, limit int) ([]Ban, error) {
	pattern := l.key("*")
	prefix := l.key("")
	now := time.Now().UTC()
	bans := make([]Ban, 0)

	var cursor uint64
	for {
		keys, next, err := l.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			ttl, err := l.client.TTL(ctx, key).Result()
			if err != nil {
				return nil, err
			}
			if ttl <= 0 {
				continue
			}
			bans = append(bans, Ban{Subject: strings.TrimPrefix(key, prefix), ExpiresAt: now.Add(ttl)})
			if limit > 0 && len(bans) >= limit {
				return bans, nil
			}
		}
		cursor = next
		if cursor == 0 {
			return bans, nil
		}
	}
}

// MemoryBanList 单进程实现。
type MemoryBanList struct {
	mu   sync.Mutex
	now  func() time.Time
	bans map[string]time.Time
}

func NewMemoryBanList() *MemoryBanList {
	return &MemoryBanList{now: time.Now, bans: make(map[string]time.Time)}
}

func (l *MemoryBanList) Ban(_ context.Context, subject string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bans[subject] = l.now().Add(ttl)
	return nil
}

func (l *MemoryBanList) Banned(_ context.Context, subject string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.bans[subject]
	if !ok {
		return 0, nil
	}
	remaining := until.Sub(l.now())
	if remaining <= 0 {
		delete(l.bans, subject)
		return 0, nil
	}
	return remaining, nil
}

func (l *MemoryBanList) Unban(_ context.Context, subject string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.bans, subject)
	return nil
}

func (l *MemoryBanList) List(_ context.Context, limit int) ([]Ban, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	bans := make([]Ban, 0, len(l.bans))
	for subject, until := range l.bans {
		if !until.After(now) {
			delete(l.bans, subject)
			continue
		}
		bans = append(bans, Ban{Subject: subject, ExpiresAt: until})
	}
	sort.Slice(bans, func(i, j int) bool { return bans[i].Subject < bans[j].Subject })
	if limit > 0 && len(bans) > limit {
		bans = bans[:limit]
	}
	return bans, nil
}
