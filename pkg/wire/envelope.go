package wire

// ErrorBody 与后端统一错误结构保持一致。
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Pagination 描述分页元信息，后端放在响应的 meta 字段中。
type Pagination struct {
	Page         int `json:"page"`
	PageSize     int `json:"page_size"`
	TotalItems   int `json:"total_items"`
	TotalPages   int `json:"total_pages"`
	CurrentCount int `json:"current_count"`
}

// Envelope 是前端解码后端响应时使用的泛型外壳。
type Envelope[T any] struct {
	Success bool        `json:"success"`
	Data    T           `json:"data"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Pagination `json:"meta,omitempty"`
}

// Page 是分页列表在客户端侧的组合视图。
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// HasNext 表示是否还有下一页。页码从 0 开始。
func (p Page[T]) HasNext() bool {
	return p.Pagination.Page+1 < p.Pagination.TotalPages
}

// HasPrev 表示是否存在上一页。
func (p Page[T]) HasPrev() bool {
	return p.Pagination.Page > 0
}
