package handler

import (
	"net/http"

	response "weekend-at-joes/backend/internal/infra/common"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/service/adminuser"
	"weekend-at-joes/pkg/ident"
	"weekend-at-joes/pkg/wire"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminUserHandler 负责管理员用户总览与角色分配，路由层已限制为管理员。
type AdminUserHandler struct {
	service *adminuser.Service
	logger  *zap.SugaredLogger
}

func NewAdminUserHandler(service *adminuser.Service) *AdminUserHandler {
	return &AdminUserHandler{service: service, logger: appLogger.Named("handler.adminuser")}
}

// List 分页列出用户，?q= 按名称过滤。
func (h *AdminUserHandler) List(c *gin.Context) {
	req, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.service.ListOverview(c.Request.Context(), adminuser.ListParams{Page: req, Query: c.Query("q")})
	if err != nil {
		respondError(c, h.logger.With("operation", "list"), err)
		return
	}
	items := make([]wire.UserOverviewResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, wire.UserOverviewResponse{
			User:              toUserResponse(item.User),
			CreatedAt:         item.User.CreatedAt,
			Articles:          item.Counts.Articles,
			PublishedArticles: item.Counts.PublishedArticles,
			Threads:           item.Counts.Threads,
			Posts:             item.Counts.Posts,
		})
	}
	response.Success(c, http.StatusOK, items, pageMeta(page))
}

// SetRoles 替换目标用户的角色列表。
func (h *AdminUserHandler) SetRoles(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	target, ok := uuidParam[ident.UserUUID](c, "uuid")
	if !ok {
		return
	}
	var req wire.SetRolesRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.service.SetRoles(c.Request.Context(), p, target, req.Roles)
	if err != nil {
		respondError(c, h.logger.With("operation", "set_roles"), err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), nil)
}
