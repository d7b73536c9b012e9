package handler

import (
	"context"
	"net/http"

	domain "weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/backend/internal/domain/user"
	response "weekend-at-joes/backend/internal/infra/common"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	forumsvc "weekend-at-joes/backend/internal/service/forum"
	"weekend-at-joes/pkg/ident"
	"weekend-at-joes/pkg/wire"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ForumHandler 处理论坛、线程与帖子接口。
type ForumHandler struct {
	service *forumsvc.Service
	logger  *zap.SugaredLogger
}

func NewForumHandler(service *forumsvc.Service) *ForumHandler {
	return &ForumHandler{service: service, logger: appLogger.Named("forum.handler")}
}

func (h *ForumHandler) ListForums(c *gin.Context) {
	forums, err := h.service.ListForums(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]wire.ForumResponse, 0, len(forums))
	for _, f := range forums {
		out = append(out, toForumResponse(f))
	}
	response.Success(c, http.StatusOK, out, nil)
}

func (h *ForumHandler) GetForum(c *gin.Context) {
	id, ok := uuidParam[ident.ForumUUID](c, "uuid")
	if !ok {
		return
	}
	f, err := h.service.GetForum(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toForumResponse(f), nil)
}

func (h *ForumHandler) CreateForum(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.NewForumRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.service.CreateForum(c.Request.Context(), p, req.Title, req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, toForumResponse(f))
}

func (h *ForumHandler) DeleteForum(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.ForumUUID](c, "uuid")
	if !ok {
		return
	}
	if err := h.service.DeleteForum(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

// Threads 分页列出论坛内未归档的线程。
func (h *ForumHandler) Threads(c *gin.Context) {
	id, ok := uuidParam[ident.ForumUUID](c, "uuid")
	if !ok {
		return
	}
	req, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.service.ThreadsInForum(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	items := make([]wire.MinimalThreadResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, toMinimalThreadResponse(item.Thread, item.User))
	}
	response.Success(c, http.StatusOK, items, pageMeta(page))
}

func (h *ForumHandler) CreateThread(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.NewThreadRequest
	if !bindJSON(c, &req) {
		return
	}
	data, err := h.service.CreateThread(c.Request.Context(), p, req.ForumUUID, req.Title, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, toThreadResponse(data))
}

func (h *ForumHandler) GetThread(c *gin.Context) {
	id, ok := uuidParam[ident.ThreadUUID](c, "uuid")
	if !ok {
		return
	}
	data, err := h.service.GetThread(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toFullThreadResponse(data), nil)
}

func (h *ForumHandler) LockThread(c *gin.Context) {
	h.moderate(c, h.service.LockThread)
}

func (h *ForumHandler) UnlockThread(c *gin.Context) {
	h.moderate(c, h.service.UnlockThread)
}

func (h *ForumHandler) ArchiveThread(c *gin.Context) {
	h.moderate(c, h.service.ArchiveThread)
}

type threadModeration func(ctx context.Context, requester user.Principal, id ident.ThreadUUID) (domain.MinimalThreadData, error)

func (h *ForumHandler) moderate(c *gin.Context, action threadModeration) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.ThreadUUID](c, "uuid")
	if !ok {
		return
	}
	data, err := action(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toMinimalThreadResponse(data.Thread, data.User), nil)
}

// Reply 回复线程。
func (h *ForumHandler) Reply(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.NewPostRequest
	if !bindJSON(c, &req) {
		return
	}
	data, err := h.service.Reply(c.Request.Context(), p, req.ThreadUUID, req.ParentUUID, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, toPostResponse(data))
}

func (h *ForumHandler) EditPost(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.EditPostRequest
	if !bindJSON(c, &req) {
		return
	}
	data, err := h.service.EditPost(c.Request.Context(), p, domain.PostChangeset{UUID: req.UUID, Content: req.Content})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPostResponse(data), nil)
}

func (h *ForumHandler) CensorPost(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.PostUUID](c, "uuid")
	if !ok {
		return
	}
	data, err := h.service.CensorPost(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPostResponse(data), nil)
}
