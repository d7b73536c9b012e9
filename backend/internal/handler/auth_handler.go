package handler

import (
	"errors"
	"net/http"

	response "weekend-at-joes/backend/internal/infra/common"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/service/auth"
	"weekend-at-joes/pkg/wire"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 负责对接 Gin，处理鉴权相关的 HTTP 请求。
type AuthHandler struct {
	service *auth.Service
	logger  *zap.SugaredLogger
}

// NewAuthHandler 构造鉴权 handler，注入业务层服务做实际处理。
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service, logger: appLogger.Named("auth.handler")}
}

// Captcha 返回注册验证码；未启用时 404。
func (h *AuthHandler) Captcha(c *gin.Context) {
	id, image, err := h.service.GenerateCaptcha(c.Request.Context(), c.ClientIP())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, wire.CaptchaResponse{CaptchaID: id, Image: image}, nil)
}

// Register 处理用户注册，成功后直接返回令牌。
func (h *AuthHandler) Register(c *gin.Context) {
	var req wire.NewUserRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.Register(c.Request.Context(), auth.RegisterParams{
		UserName:    req.UserName,
		DisplayName: req.DisplayName,
		Password:    req.PlaintextPassword,
		CaptchaID:   req.CaptchaID,
		CaptchaCode: req.CaptchaCode,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, loginResponse(result))
}

// Login 校验凭证并返回令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req wire.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.Login(c.Request.Context(), auth.LoginParams{UserName: req.UserName, Password: req.Password})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, loginResponse(result), nil)
}

// Refresh 轮换刷新令牌。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req wire.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, loginResponse(result), nil)
}

// Logout 撤销刷新令牌。
func (h *AuthHandler) Logout(c *gin.Context) {
	var req wire.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

// fail 为登录与验证码错误给出更具体的错误码，其余走通用映射。
func (h *AuthHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidLogin):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials, "invalid user name or password", nil)
	case errors.Is(err, auth.ErrCaptchaRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrCaptchaRequired, err.Error(), nil)
	case errors.Is(err, auth.ErrCaptchaInvalid), errors.Is(err, auth.ErrCaptchaExpired):
		response.Fail(c, http.StatusBadRequest, response.ErrCaptchaInvalid, err.Error(), nil)
	default:
		respondError(c, h.logger, err)
	}
}

func loginResponse(r auth.Result) wire.LoginResponse {
	return wire.LoginResponse{User: toUserResponse(r.User), Tokens: toTokenResponse(r.Tokens)}
}
