// Package loadable 描述一次远程读取在界面上的四种状态：未加载、加载中、已加载、失败。
//
// 每个槽位只保留一个在途请求的句柄。新的请求不会取消旧请求，
// 先发后到的结果会覆盖后发先到的结果（按到达顺序最后写入者生效）。
package loadable

import "sync/atomic"

// State 是 Loadable 所处的状态。
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultErrorText 是失败且没有消息时展示的文本。
const DefaultErrorText = "Request Failed"

var handleSeq atomic.Uint64

// Handle 标识一次在途请求，不能被复制到克隆值里。
type Handle struct {
	id uint64
}

// NewHandle 分配一个新的请求句柄。
func NewHandle() *Handle {
	return &Handle{id: handleSeq.Add(1)}
}

// ID 仅用于日志与测试。
func (h *Handle) ID() uint64 {
	if h == nil {
		return 0
	}
	return h.id
}

// Loadable 是一个读操作的状态槽。零值为 Unloaded。
type Loadable[T any] struct {
	state  State
	value  T
	errMsg *string
	handle *Handle
}

// Unloaded 返回初始状态。
func Unloaded[T any]() Loadable[T] {
	return Loadable[T]{}
}

// Loading 返回持有句柄的加载中状态。
func Loading[T any](h *Handle) Loadable[T] {
	return Loadable[T]{state: StateLoading, handle: h}
}

// Loaded 返回已加载状态。
func Loaded[T any](v T) Loadable[T] {
	return Loadable[T]{state: StateLoaded, value: v}
}

// Failed 返回失败状态，msg 为 nil 时渲染默认文本。
func Failed[T any](msg *string) Loadable[T] {
	return Loadable[T]{state: StateFailed, errMsg: msg}
}

// FailedWith 是 Failed 的便捷形式。
func FailedWith[T any](msg string) Loadable[T] {
	return Failed[T](&msg)
}

// FromResult 把一次请求的结果转成 Loaded 或 Failed。
func FromResult[T any](v T, err error) Loadable[T] {
	if err != nil {
		return FailedWith[T](err.Error())
	}
	return Loaded(v)
}

func (l Loadable[T]) State() State { return l.state }

func (l Loadable[T]) IsUnloaded() bool { return l.state == StateUnloaded }
func (l Loadable[T]) IsLoading() bool  { return l.state == StateLoading }
func (l Loadable[T]) IsLoaded() bool   { return l.state == StateLoaded }
func (l Loadable[T]) IsFailed() bool   { return l.state == StateFailed }

// Value 只有 Loaded 时第二个返回值为 true。
func (l Loadable[T]) Value() (T, bool) {
	if l.state != StateLoaded {
		var zero T
		return zero, false
	}
	return l.value, true
}

// ErrorMessage 返回失败消息，可能为 nil。
func (l Loadable[T]) ErrorMessage() *string {
	if l.state != StateFailed {
		return nil
	}
	return l.errMsg
}

// ErrorText 返回用于展示的错误文本，没有消息时为 DefaultErrorText。
func (l Loadable[T]) ErrorText() string {
	if msg := l.ErrorMessage(); msg != nil {
		return *msg
	}
	return DefaultErrorText
}

// Handle 返回在途请求句柄，非 Loading 时为 nil。
func (l Loadable[T]) Handle() *Handle {
	if l.state != StateLoading {
		return nil
	}
	return l.handle
}

// Clone 复制当前值。Loading 持有的句柄不可复制，克隆结果退化为 Unloaded。
func (l Loadable[T]) Clone() Loadable[T] {
	if l.state == StateLoading {
		return Unloaded[T]()
	}
	out := l
	if l.errMsg != nil {
		msg := *l.errMsg
		out.errMsg = &msg
	}
	return out
}

// Map 在 Loaded 时转换值，其余状态原样保留。
func Map[T, U any](l Loadable[T], fn func(T) U) Loadable[U] {
	switch l.state {
	case StateLoaded:
		return Loaded(fn(l.value))
	case StateLoading:
		return Loading[U](l.handle)
	case StateFailed:
		return Failed[U](l.errMsg)
	default:
		return Unloaded[U]()
	}
}
