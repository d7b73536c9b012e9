package repository

import (
	"context"

	"weekend-at-joes/backend/internal/apperr"

	"gorm.io/gorm"
)

// PageRequest 描述一次分页请求，Index 从 0 开始。
type PageRequest struct {
	Index int
	Size  int
}

// Validate 拒绝非正的页大小与负页码，后续计算页数时不会除零。
func (p PageRequest) Validate() error {
	if p.Size <= 0 {
		return apperr.BadRequest("page size must be positive, got %d", p.Size)
	}
	if p.Index < 0 {
		return apperr.BadRequest("page index must not be negative, got %d", p.Index)
	}
	return nil
}

// Offset 返回窗口起点。只应在 InRange 为真之后调用，否则乘法可能溢出。
func (p PageRequest) Offset() int {
	return p.Index * p.Size
}

// InRange 判断 Index 是否落在 total 行的页数之内。比较在页数上进行，不做 Index*Size 乘法。
func (p PageRequest) InRange(total int64) bool {
	if p.Size <= 0 || p.Index < 0 {
		return false
	}
	size := int64(p.Size)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return int64(p.Index) < pages
}

// Page 是一页查询结果，TotalCount 为分页前满足过滤条件的总行数。
type Page[T any] struct {
	Items      []T
	TotalCount int64
	Index      int
	Size       int
}

// PageCount = ceil(TotalCount / Size)。
func (p Page[T]) PageCount() int {
	if p.Size <= 0 {
		return 0
	}
	size := int64(p.Size)
	pages := p.TotalCount / size
	if p.TotalCount%size != 0 {
		pages++
	}
	return int(pages)
}

// Paginate 对 base 执行两次查询：先按过滤条件计数，再取窗口内的行。
//
// base 只应包含 Model 与 Where 条件；联表与排序通过 scopes 传入，只作用于取数阶段，
// 这样计数语句不会带上 JOIN / ORDER BY。排序必须显式且稳定（带唯一列兜底），
// 否则跨页结果可能重叠或遗漏。页码越界（包括极大的页码）时返回空列表与正确的总数。
func Paginate[T any](ctx context.Context, base *gorm.DB, req PageRequest, scopes ...func(*gorm.DB) *gorm.DB) (Page[T], error) {
	if err := req.Validate(); err != nil {
		return Page[T]{}, err
	}

	var total int64
	if err := base.WithContext(ctx).Count(&total).Error; err != nil {
		return Page[T]{}, translate("count page", err)
	}

	items := make([]T, 0)
	if req.InRange(total) {
		err := base.WithContext(ctx).
			Scopes(scopes...).
			Offset(req.Offset()).
			Limit(req.Size).
			Find(&items).Error
		if err != nil {
			return Page[T]{}, translate("fetch page", err)
		}
	}

	return Page[T]{
		Items:      items,
		TotalCount: total,
		Index:      req.Index,
		Size:       req.Size,
	}, nil
}
