package loadable

// Uploadable 是写操作（提交、删除等）的状态槽，状态机与 Loadable 相同，
// 单独成型以免把读结果与写结果混用。零值为 Unloaded。
type Uploadable[T any] struct {
	inner Loadable[T]
}

func Idle[T any]() Uploadable[T] {
	return Uploadable[T]{}
}

func Uploading[T any](h *Handle) Uploadable[T] {
	return Uploadable[T]{inner: Loading[T](h)}
}

func Uploaded[T any](v T) Uploadable[T] {
	return Uploadable[T]{inner: Loaded(v)}
}

func UploadFailed[T any](msg *string) Uploadable[T] {
	return Uploadable[T]{inner: Failed[T](msg)}
}

// UploadResult 把一次写请求的结果转成 Uploaded 或 UploadFailed。
func UploadResult[T any](v T, err error) Uploadable[T] {
	return Uploadable[T]{inner: FromResult(v, err)}
}

func (u Uploadable[T]) State() State          { return u.inner.State() }
func (u Uploadable[T]) IsUnloaded() bool      { return u.inner.IsUnloaded() }
func (u Uploadable[T]) IsLoading() bool       { return u.inner.IsLoading() }
func (u Uploadable[T]) IsLoaded() bool        { return u.inner.IsLoaded() }
func (u Uploadable[T]) IsFailed() bool        { return u.inner.IsFailed() }
func (u Uploadable[T]) Value() (T, bool)      { return u.inner.Value() }
func (u Uploadable[T]) ErrorMessage() *string { return u.inner.ErrorMessage() }
func (u Uploadable[T]) ErrorText() string     { return u.inner.ErrorText() }
func (u Uploadable[T]) Handle() *Handle       { return u.inner.Handle() }

// Clone 与 Loadable.Clone 相同，进行中的上传克隆后为 Unloaded。
func (u Uploadable[T]) Clone() Uploadable[T] {
	return Uploadable[T]{inner: u.inner.Clone()}
}
