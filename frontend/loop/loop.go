// Package loop 实现前端组件的消息队列：单个 goroutine 顺序处理消息，
// Update 返回新状态与副作用，副作用在各自的 goroutine 里执行后把结果消息投回队列。
package loop

import (
	"context"
	"sync"
)

// Effect 是一次异步操作，返回的消息会重新进入队列。返回 nil 表示没有后续消息。
type Effect[M any] func(ctx context.Context) *M

// Update 是纯函数：根据当前状态与消息计算新状态与需要执行的副作用。
type Update[S, M any] func(state S, msg M) (S, []Effect[M])

// Loop 持有组件状态。消息按入队顺序处理；副作用完成顺序不保证。
type Loop[S, M any] struct {
	update   Update[S, M]
	queue    chan M
	onChange func(S)

	mu    sync.RWMutex
	state S

	effects sync.WaitGroup
}

// Option 配置 Loop。
type Option[S, M any] func(*Loop[S, M])

// WithOnChange 每处理完一条消息后回调一次，组件在这里触发重新渲染。
func WithOnChange[S, M any](fn func(S)) Option[S, M] {
	return func(l *Loop[S, M]) { l.onChange = fn }
}

// WithQueueSize 设置队列容量，默认 64。
func WithQueueSize[S, M any](n int) Option[S, M] {
	return func(l *Loop[S, M]) {
		if n > 0 {
			l.queue = make(chan M, n)
		}
	}
}

func New[S, M any](initial S, update Update[S, M], opts ...Option[S, M]) *Loop[S, M] {
	l := &Loop[S, M]{
		update: update,
		queue:  make(chan M, 64),
		state:  initial,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State 返回最近一次处理后的状态。
func (l *Loop[S, M]) State() S {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Send 投递一条消息。ctx 结束后放弃投递并返回 false。
func (l *Loop[S, M]) Send(ctx context.Context, msg M) bool {
	select {
	case l.queue <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run 阻塞处理消息直到 ctx 结束，返回前等待已启动的副作用退出。
func (l *Loop[S, M]) Run(ctx context.Context) {
	defer l.effects.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-l.queue:
			l.Step(ctx, msg)
		}
	}
}

// Step 同步处理一条消息并启动其副作用。Run 内部使用，测试也可以直接调用。
func (l *Loop[S, M]) Step(ctx context.Context, msg M) S {
	l.mu.Lock()
	next, effects := l.update(l.state, msg)
	l.state = next
	l.mu.Unlock()

	if l.onChange != nil {
		l.onChange(next)
	}

	for _, eff := range effects {
		if eff == nil {
			continue
		}
		l.effects.Add(1)
		go func(eff Effect[M]) {
			defer l.effects.Done()
			if out := eff(ctx); out != nil {
				l.Send(ctx, *out)
			}
		}(eff)
	}
	return next
}

// Emit 把消息包装成 Effect 的返回值。
func Emit[M any](msg M) *M {
	return &msg
}
