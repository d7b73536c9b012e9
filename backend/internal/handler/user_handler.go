package handler

import (
	"net/http"

	response "weekend-at-joes/backend/internal/infra/common"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	usersvc "weekend-at-joes/backend/internal/service/user"
	"weekend-at-joes/pkg/ident"
	"weekend-at-joes/pkg/wire"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler 负责用户资料相关接口。
type UserHandler struct {
	service *usersvc.Service
	logger  *zap.SugaredLogger
}

func NewUserHandler(service *usersvc.Service) *UserHandler {
	return &UserHandler{service: service, logger: appLogger.Named("user.handler")}
}

func (h *UserHandler) scope(operation string) *zap.SugaredLogger {
	return h.logger.With("operation", operation)
}

// Me 返回当前登录用户。
func (h *UserHandler) Me(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	u, err := h.service.Get(c.Request.Context(), p.UUID)
	if err != nil {
		respondError(c, h.scope("me"), err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), nil)
}

// Get 返回任意用户的公开资料。
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := uuidParam[ident.UserUUID](c, "uuid")
	if !ok {
		return
	}
	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.scope("get"), err)
		return
	}
	resp := toUserResponse(u)
	resp.Roles = nil
	response.Success(c, http.StatusOK, resp, nil)
}

// UpdateDisplayName 修改自己的展示名称。
func (h *UserHandler) UpdateDisplayName(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.UpdateDisplayNameRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.service.UpdateDisplayName(c.Request.Context(), p, req.DisplayName)
	if err != nil {
		respondError(c, h.scope("update_display_name"), err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), nil)
}

// Delete 注销当前账号。
func (h *UserHandler) Delete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if _, err := h.service.Delete(c.Request.Context(), p); err != nil {
		respondError(c, h.scope("delete"), err)
		return
	}
	h.scope("delete").Infow("user deleted", "user_uuid", p.UUID)
	response.NoContent(c)
}
