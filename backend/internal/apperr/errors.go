// Package apperr 定义贯穿仓储、服务与路由三层的错误分类。
//
// 仓储层把数据库错误翻译成这里的哨兵错误，服务层补充鉴权类错误，
// handler 只需要 errors.Is 判断即可映射到 HTTP 状态码。
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrBadRequest          = errors.New("bad request")
	ErrUnavailable         = errors.New("service unavailable")
	ErrRateLimited         = errors.New("too many requests")
	ErrInternal            = errors.New("internal error")
)

// BadRequest 构造带说明的 ErrBadRequest。
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// NotFound 构造带说明的 ErrNotFound。
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Forbidden 构造带说明的 ErrForbidden。
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Kind 返回 err 所属的分类哨兵；无法归类的错误视为 ErrInternal。
func Kind(err error) error {
	for _, kind := range []error{
		ErrNotFound,
		ErrConstraintViolation,
		ErrUnauthorized,
		ErrForbidden,
		ErrBadRequest,
		ErrUnavailable,
		ErrRateLimited,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// NotFoundAsForbidden 用于变更前的所有权检查：目标不存在时同样返回 Forbidden，
// 避免非所有者借此探测资源是否存在。
func NotFoundAsForbidden(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	return err
}
