// Package response 统一 HTTP 响应外壳，结构与 pkg/wire.Envelope 对应。
package response

import (
	"net/http"

	"weekend-at-joes/pkg/wire"

	"github.com/gin-gonic/gin"
)

// ErrorCode 是客户端识别失败原因的错误码。
type ErrorCode string

const (
	ErrBadRequest         ErrorCode = "BAD_REQUEST"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrForbidden          ErrorCode = "FORBIDDEN"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrConflict           ErrorCode = "CONFLICT"
	ErrTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCaptchaInvalid     ErrorCode = "CAPTCHA_INVALID"
	ErrCaptchaRequired    ErrorCode = "CAPTCHA_REQUIRED"
	ErrInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
)

// Error 错误响应体。
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

// Response 所有接口的公共外壳。
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

// MetaPagination 分页信息，直接复用前后端共享的结构。
type MetaPagination = wire.Pagination

// Success 返回成功结果；status 为 0 时按 200 处理。
func Success(c *gin.Context, status int, data any, meta any) {
	if status == 0 {
		status = http.StatusOK
	}
	resp := Response{Success: true, Data: data}
	if meta != nil {
		resp.Meta = meta
	}
	c.JSON(status, resp)
}

// Created 返回 201。
func Created(c *gin.Context, data any) {
	Success(c, http.StatusCreated, data, nil)
}

// NoContent 返回 204，无 body。
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail 返回错误结果；status 为 0 时按 500 处理。
func Fail(c *gin.Context, status int, code ErrorCode, message string, details any) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	resp := Response{
		Success: false,
		Error:   &Error{Code: code, Message: message, Details: details},
	}
	c.JSON(status, resp)
}

// Abort 与 Fail 相同，但同时终止后续中间件，供中间件使用。
func Abort(c *gin.Context, status int, code ErrorCode, message string) {
	Fail(c, status, code, message, nil)
	c.Abort()
}
