package handler

import (
	"net/http"
	"strconv"

	"weekend-at-joes/backend/internal/apperr"
	"weekend-at-joes/backend/internal/domain/user"
	response "weekend-at-joes/backend/internal/infra/common"
	"weekend-at-joes/backend/internal/middleware"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/pkg/ident"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 把分类错误映射为状态码与错误码。5xx 只返回通用文案并记录日志。
func respondError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	switch kind := apperr.Kind(err); kind {
	case apperr.ErrBadRequest:
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
	case apperr.ErrNotFound:
		response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
	case apperr.ErrConstraintViolation:
		response.Fail(c, http.StatusConflict, response.ErrConflict, err.Error(), nil)
	case apperr.ErrUnauthorized:
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, err.Error(), nil)
	case apperr.ErrForbidden:
		response.Fail(c, http.StatusForbidden, response.ErrForbidden, err.Error(), nil)
	case apperr.ErrRateLimited:
		response.Fail(c, http.StatusTooManyRequests, response.ErrTooManyRequests, err.Error(), nil)
	case apperr.ErrUnavailable:
		logger.Warnw("service unavailable", "path", c.FullPath(), "error", err)
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, "service temporarily unavailable", nil)
	default:
		logger.Errorw("request failed", "path", c.FullPath(), "error", err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error", nil)
	}
}

// bindJSON 解析请求体，失败时直接返回 400。
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return false
	}
	return true
}

// requirePrincipal 取当前身份；鉴权中间件之后正常不会缺失，缺失按 401 处理。
func requirePrincipal(c *gin.Context) (user.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "authentication required", nil)
		return user.Principal{}, false
	}
	return p, true
}

// optionalPrincipal 匿名访问时返回 nil。
func optionalPrincipal(c *gin.Context) *user.Principal {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return nil
	}
	return &p
}

// uuidParam 解析路径中的 UUID，非法时返回 400。
func uuidParam[T ~[16]byte](c *gin.Context, name string) (T, bool) {
	id, err := ident.Parse[T](c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid "+name, nil)
		return id, false
	}
	return id, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return v, true
}

// pageParams 读取 :index/:size，校验交给仓储层的 PageRequest。
func pageParams(c *gin.Context) (repository.PageRequest, bool) {
	index, ok := intParam(c, "index")
	if !ok {
		return repository.PageRequest{}, false
	}
	size, ok := intParam(c, "size")
	if !ok {
		return repository.PageRequest{}, false
	}
	return repository.PageRequest{Index: index, Size: size}, true
}

func pageMeta[T any](page repository.Page[T]) response.MetaPagination {
	return response.MetaPagination{
		Page:         page.Index,
		PageSize:     page.Size,
		TotalItems:   int(page.TotalCount),
		TotalPages:   page.PageCount(),
		CurrentCount: len(page.Items),
	}
}
