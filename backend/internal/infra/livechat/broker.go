// Package livechat 把新消息扇出给 websocket 订阅者。
//
// 线上模式走 Redis Pub/Sub（频道 chat:<uuid>），多实例之间共享；本地模式用进程内广播。
package livechat

import (
	"context"
	"errors"
	"sync"

	"weekend-at-joes/pkg/ident"

	"github.com/redis/go-redis/v9"
)

// ErrClosed 表示 broker 已关闭。
var ErrClosed = errors.New("livechat: broker closed")

const subscriberBuffer = 32

// Broker 负责发布与订阅某个聊天室的消息。payload 为已编码的 JSON。
type Broker interface {
	Publish(ctx context.Context, chatID ident.ChatUUID, payload []byte) error
	Subscribe(ctx context.Context, chatID ident.ChatUUID) (Subscription, error)
}

// Subscription 是一个订阅，C 在 Close 或底层连接断开后关闭。
type Subscription interface {
	C() <-chan []byte
	Close() error
}

// Channel 返回聊天室对应的 Redis 频道名。
func Channel(chatID ident.ChatUUID) string {
	return "chat:" + chatID.String()
}

// RedisBroker 基于 go-redis 的 Pub/Sub。
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, chatID ident.ChatUUID, payload []byte) error {
	return b.client.Publish(ctx, Channel(chatID), payload).Err()
}

// Subscribe 等待订阅确认后才返回，之后发布的消息不会丢。
func (b *RedisBroker) Subscribe(ctx context.Context, chatID ident.ChatUUID) (Subscription, error) {
	ps := b.client.Subscribe(ctx, Channel(chatID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	sub := &redisSubscription{ps: ps, out: make(chan []byte, subscriberBuffer), done: make(chan struct{})}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		select {
		case s.out <- []byte(msg.Payload):
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) C() <-chan []byte {
	return s.out
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

// MemoryBroker 是进程内广播，订阅者处理不过来时丢弃消息而不阻塞发布方。
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[ident.ChatUUID]map[*memorySubscription]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[ident.ChatUUID]map[*memorySubscription]struct{})}
}

func (b *MemoryBroker) Publish(_ context.Context, chatID ident.ChatUUID, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for sub := range b.subs[chatID] {
		select {
		case sub.out <- payload:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, chatID ident.ChatUUID) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	sub := &memorySubscription{broker: b, chatID: chatID, out: make(chan []byte, subscriberBuffer)}
	if b.subs[chatID] == nil {
		b.subs[chatID] = make(map[*memorySubscription]struct{})
	}
	b.subs[chatID][sub] = struct{}{}
	return sub, nil
}

// Close 关闭全部订阅。
func (b *MemoryBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, set := range b.subs {
		for sub := range set {
			close(sub.out)
		}
	}
	b.subs = nil
}

func (b *MemoryBroker) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[sub.chatID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.out)
	if len(set) == 0 {
		delete(b.subs, sub.chatID)
	}
}

type memorySubscription struct {
	broker *MemoryBroker
	chatID ident.ChatUUID
	out    chan []byte
}

func (s *memorySubscription) C() <-chan []byte {
	return s.out
}

func (s *memorySubscription) Close() error {
	s.broker.remove(s)
	return nil
}
