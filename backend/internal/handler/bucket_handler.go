package handler

import (
	"net/http"

	response "weekend-at-joes/backend/internal/infra/common"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	bucketsvc "weekend-at-joes/backend/internal/service/bucket"
	"weekend-at-joes/pkg/ident"
	"weekend-at-joes/pkg/wire"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BucketHandler 处理 bucket、问题与回答接口。
type BucketHandler struct {
	service *bucketsvc.Service
	logger  *zap.SugaredLogger
}

func NewBucketHandler(service *bucketsvc.Service) *BucketHandler {
	return &BucketHandler{service: service, logger: appLogger.Named("bucket.handler")}
}

func (h *BucketHandler) Create(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.NewBucketRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.service.Create(c.Request.Context(), p, req.BucketName, req.IsPublic)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, toBucketResponse(b))
}

func (h *BucketHandler) Public(c *gin.Context) {
	buckets, err := h.service.Public(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toBucketResponses(buckets), nil)
}

func (h *BucketHandler) Mine(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	buckets, err := h.service.Mine(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toBucketResponses(buckets), nil)
}

func (h *BucketHandler) Get(c *gin.Context) {
	id, ok := uuidParam[ident.BucketUUID](c, "uuid")
	if !ok {
		return
	}
	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toBucketResponse(b), nil)
}

func (h *BucketHandler) Join(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.BucketUUID](c, "uuid")
	if !ok {
		return
	}
	if err := h.service.RequestJoin(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

func (h *BucketHandler) Participants(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.BucketUUID](c, "uuid")
	if !ok {
		return
	}
	users, err := h.service.Participants(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponses(users), nil)
}

func (h *BucketHandler) Pending(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.BucketUUID](c, "uuid")
	if !ok {
		return
	}
	users, err := h.service.Pending(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponses(users), nil)
}

func (h *BucketHandler) IsOwner(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.BucketUUID](c, "uuid")
	if !ok {
		return
	}
	owner, err := h.service.IsOwner(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, owner, nil)
}

func (h *BucketHandler) Approve(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.BucketUUID](c, "uuid")
	if !ok {
		return
	}
	target, ok := uuidParam[ident.UserUUID](c, "user_uuid")
	if !ok {
		return
	}
	if err := h.service.Approve(c.Request.Context(), p, id, target); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

func (h *BucketHandler) RemoveUser(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.BucketUUID](c, "uuid")
	if !ok {
		return
	}
	target, ok := uuidParam[ident.UserUUID](c, "user_uuid")
	if !ok {
		return
	}
	if err := h.service.RemoveUser(c.Request.Context(), p, id, target); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

func (h *BucketHandler) CreateQuestion(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.NewQuestionRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.service.CreateQuestion(c.Request.Context(), p, req.BucketUUID, req.QuestionText)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, toQuestionResponse(q))
}

func (h *BucketHandler) Questions(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.BucketUUID](c, "uuid")
	if !ok {
		return
	}
	questions, err := h.service.Questions(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]wire.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, toQuestionResponse(q))
	}
	response.Success(c, http.StatusOK, out, nil)
}

func (h *BucketHandler) RandomQuestion(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.BucketUUID](c, "uuid")
	if !ok {
		return
	}
	q, err := h.service.RandomQuestion(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toQuestionResponse(q), nil)
}

func (h *BucketHandler) PutOnFloor(c *gin.Context) {
	h.setOnFloor(c, true)
}

func (h *BucketHandler) TakeOffFloor(c *gin.Context) {
	h.setOnFloor(c, false)
}

func (h *BucketHandler) setOnFloor(c *gin.Context, onFloor bool) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.QuestionUUID](c, "uuid")
	if !ok {
		return
	}
	q, err := h.service.SetOnFloor(c.Request.Context(), p, id, onFloor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toQuestionResponse(q), nil)
}

func (h *BucketHandler) DeleteQuestion(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.QuestionUUID](c, "uuid")
	if !ok {
		return
	}
	if err := h.service.DeleteQuestion(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

func (h *BucketHandler) CreateAnswer(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.NewAnswerRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.service.CreateAnswer(c.Request.Context(), p, req.QuestionUUID, req.AnswerText)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, toAnswerResponse(a))
}

func (h *BucketHandler) GetAnswer(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.AnswerUUID](c, "uuid")
	if !ok {
		return
	}
	a, err := h.service.GetAnswer(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, toAnswerResponse(a), nil)
}

func (h *BucketHandler) DeleteAnswer(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.AnswerUUID](c, "uuid")
	if !ok {
		return
	}
	if err := h.service.DeleteAnswer(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}
