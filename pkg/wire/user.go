package wire

import (
	"time"

	"weekend-at-joes/pkg/ident"
)

type UserResponse struct {
	UUID        ident.UserUUID `json:"uuid"`
	UserName    string         `json:"user_name"`
	DisplayName string         `json:"display_name"`
	Roles       []string       `json:"roles,omitempty"`
}

type NewUserRequest struct {
	UserName          string `json:"user_name" binding:"required,min=3,max=32"`
	DisplayName       string `json:"display_name" binding:"required,max=64"`
	PlaintextPassword string `json:"plaintext_password" binding:"required,min=8"`
	CaptchaID         string `json:"captcha_id"`
	CaptchaCode       string `json:"captcha_code"`
}

type LoginRequest struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LoginResponse 同时返回令牌与当前用户，注册与登录共用。
type LoginResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UpdateDisplayNameRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=64"`
}

type CaptchaResponse struct {
	CaptchaID string `json:"captcha_id"`
	Image     string `json:"image"`
}

// SetRolesRequest 整体替换用户角色，管理员接口使用。
type SetRolesRequest struct {
	Roles []string `json:"roles"`
}

// UserOverviewResponse 是管理员用户总览中的一行。
type UserOverviewResponse struct {
	User              UserResponse `json:"user"`
	CreatedAt         time.Time    `json:"created_at"`
	Articles          int64        `json:"articles"`
	PublishedArticles int64        `json:"published_articles"`
	Threads           int64        `json:"threads"`
	Posts             int64        `json:"posts"`
}
