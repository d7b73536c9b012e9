package handler

import (
	"net/http"

	domain "weekend-at-joes/backend/internal/domain/article"
	response "weekend-at-joes/backend/internal/infra/common"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	articlesvc "weekend-at-joes/backend/internal/service/article"
	"weekend-at-joes/pkg/ident"
	"weekend-at-joes/pkg/wire"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ArticleHandler 处理 /api/article 下的接口。
type ArticleHandler struct {
	service *articlesvc.Service
	logger  *zap.SugaredLogger
}

func NewArticleHandler(service *articlesvc.Service) *ArticleHandler {
	return &ArticleHandler{service: service, logger: appLogger.Named("article.handler")}
}

// Get 未发布的文章只有作者能看到。
func (h *ArticleHandler) Get(c *gin.Context) {
	id, ok := uuidParam[ident.ArticleUUID](c, "uuid")
	if !ok {
		return
	}
	data, err := h.service.Get(c.Request.Context(), optionalPrincipal(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toFullArticleResponse(data), nil)
}

// List 分页列出已发布文章。
func (h *ArticleHandler) List(c *gin.Context) {
	req, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.service.Published(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	items := make([]wire.ArticlePreviewResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, toArticlePreview(item))
	}
	response.Success(c, http.StatusOK, items, pageMeta(page))
}

// Unpublished 当前用户的草稿。
func (h *ArticleHandler) Unpublished(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	articles, err := h.service.Unpublished(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toMinimalArticleResponses(articles), nil)
}

func (h *ArticleHandler) Create(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.NewArticleRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.service.Create(c.Request.Context(), p, articlesvc.CreateParams{
		AuthorUUID: req.AuthorUUID,
		Title:      req.Title,
		Body:       req.Body,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, toArticleResponse(a))
}

func (h *ArticleHandler) Update(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.UpdateArticleRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.service.Update(c.Request.Context(), p, domain.Changeset{UUID: req.UUID, Title: req.Title, Body: req.Body})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toArticleResponse(a), nil)
}

func (h *ArticleHandler) Publish(c *gin.Context) {
	h.setPublished(c, true)
}

func (h *ArticleHandler) Unpublish(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *ArticleHandler) setPublished(c *gin.Context, publish bool) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.ArticleUUID](c, "uuid")
	if !ok {
		return
	}
	if err := h.service.SetPublished(c.Request.Context(), p, id, publish); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.ArticleUUID](c, "uuid")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}
