package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	response "weekend-at-joes/backend/internal/infra/common"
	"weekend-at-joes/backend/internal/infra/livechat"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/infra/metrics"
	chatsvc "weekend-at-joes/backend/internal/service/chat"
	"weekend-at-joes/pkg/ident"
	"weekend-at-joes/pkg/wire"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
	liveReadLimit  = 512
)

// ChatHandler 处理聊天室、消息与实时推送。
type ChatHandler struct {
	service  *chatsvc.Service
	broker   livechat.Broker
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger
}

// NewChatHandler checkOrigin 为 nil 时使用 gorilla 默认的同源校验。
func NewChatHandler(service *chatsvc.Service, broker livechat.Broker, checkOrigin func(*http.Request) bool) *ChatHandler {
	return &ChatHandler{
		service: service,
		broker:  broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: appLogger.Named("chat.handler"),
	}
}

func (h *ChatHandler) Create(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req wire.NewChatRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.service.Create(c.Request.Context(), p, req.ChatName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, toChatResponse(created))
}

func (h *ChatHandler) List(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	chats, err := h.service.ForUser(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]wire.ChatResponse, 0, len(chats))
	for _, item := range chats {
		out = append(out, toChatResponse(item))
	}
	response.Success(c, http.StatusOK, out, nil)
}

func (h *ChatHandler) AddUser(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.ChatUUID](c, "uuid")
	if !ok {
		return
	}
	var req wire.AddUserToChatRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.AddUser(c.Request.Context(), p, id, req.UserUUID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

// Messages 每页 25 条，最新的在前。
func (h *ChatHandler) Messages(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.ChatUUID](c, "uuid")
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	page, err := h.service.Messages(c.Request.Context(), p, id, index)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	items := make([]wire.MessageResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, toMessageResponse(item))
	}
	response.Success(c, http.StatusOK, items, pageMeta(page))
}

// Send 保存消息后推送给在线订阅者；推送失败不影响本次请求结果。
func (h *ChatHandler) Send(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.ChatUUID](c, "uuid")
	if !ok {
		return
	}
	var req wire.NewMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	data, err := h.service.Send(c.Request.Context(), p, id, chatsvc.SendParams{
		AuthorUUID: req.AuthorUUID,
		ReplyUUID:  req.ReplyUUID,
		Content:    req.Content,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	resp := toMessageResponse(data)
	h.publish(c.Request.Context(), id, resp)
	response.Created(c, resp)
}

func (h *ChatHandler) publish(ctx context.Context, chatID ident.ChatUUID, msg wire.MessageResponse) {
	if h.broker == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorw("encode live message failed", "chat_uuid", chatID, "error", err)
		return
	}
	if err := h.broker.Publish(ctx, chatID, payload); err != nil {
		h.logger.Warnw("publish live message failed", "chat_uuid", chatID, "error", err)
	}
}

// Live 升级为 websocket，持续推送该聊天室的新消息。客户端发来的内容被忽略，只用于探测断开。
func (h *ChatHandler) Live(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam[ident.ChatUUID](c, "uuid")
	if !ok {
		return
	}
	if h.broker == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, "live chat disabled", nil)
		return
	}
	if err := h.service.RequireMember(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, err := h.broker.Subscribe(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写回了错误响应。
		h.logger.Debugw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	metrics.LiveListenerDelta(1)
	defer metrics.LiveListenerDelta(-1)
	log := h.logger.With("chat_uuid", id, "user_uuid", p.UUID)
	log.Debug("live listener connected")

	go func() {
		defer cancel()
		conn.SetReadLimit(liveReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(livePongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(liveWriteWait))
			return
		case payload, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Debugw("live write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
