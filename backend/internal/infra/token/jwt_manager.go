package token

import (
	"errors"
	"fmt"
	"time"

	"weekend-at-joes/pkg/ident"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	// ErrTokenInvalid 表示签名、格式或类型不正确。
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired 表示令牌已过期。
	ErrTokenExpired = errors.New("token expired")
)

// Subject 是签发令牌所需的用户信息。
type Subject struct {
	UserID   ident.UserUUID
	UserName string
	Roles    []string
}

// Pair 是一次签发得到的访问令牌与刷新令牌。
// RefreshTokenID / RefreshExpiresAt 供刷新令牌存储使用，不对外暴露。
type Pair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int64
	RefreshTokenID   string
	RefreshExpiresAt time.Time
}

// AccessClaims 是访问令牌解析结果，中间件据此写入请求上下文。
type AccessClaims struct {
	UserID   ident.UserUUID
	UserName string
	Roles    []string
}

// RefreshClaims 是刷新令牌解析结果。
type RefreshClaims struct {
	UserID    ident.UserUUID
	TokenID   string
	ExpiresAt time.Time
}

// claims 是两种令牌共用的载荷结构。
type claims struct {
	UserName  string   `json:"user_name,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager 使用 HS256 对称密钥签发与校验令牌。
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTManager 创建 JWT 管理器；TTL 非正时分别回退到 15 分钟与 7 天。
func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue 为用户签发一对令牌，刷新令牌带唯一 jti。
func (m *JWTManager) Issue(subject Subject) (Pair, error) {
	now := m.now()
	accessExp := now.Add(m.accessTTL)
	access, err := m.sign(claims{
		UserName:  subject.UserName,
		Roles:     subject.Roles,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	})
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshID := uuid.NewString()
	refreshExp := now.Add(m.refreshTTL)
	refresh, err := m.sign(claims{
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        refreshID,
			Subject:   subject.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	})
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        int64(m.accessTTL.Seconds()),
		RefreshTokenID:   refreshID,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ParseAccessToken 校验访问令牌并返回其中的用户身份。
func (m *JWTManager) ParseAccessToken(raw string) (AccessClaims, error) {
	parsed, err := m.parse(raw, tokenTypeAccess)
	if err != nil {
		return AccessClaims{}, err
	}
	userID, err := ident.Parse[ident.UserUUID](parsed.Subject)
	if err != nil {
		return AccessClaims{}, fmt.Errorf("%w: subject: %v", ErrTokenInvalid, err)
	}
	return AccessClaims{UserID: userID, UserName: parsed.UserName, Roles: parsed.Roles}, nil
}

// ParseRefreshToken 校验刷新令牌并返回用户与 jti。
func (m *JWTManager) ParseRefreshToken(raw string) (RefreshClaims, error) {
	parsed, err := m.parse(raw, tokenTypeRefresh)
	if err != nil {
		return RefreshClaims{}, err
	}
	userID, err := ident.Parse[ident.UserUUID](parsed.Subject)
	if err != nil {
		return RefreshClaims{}, fmt.Errorf("%w: subject: %v", ErrTokenInvalid, err)
	}
	if parsed.ID == "" {
		return RefreshClaims{}, fmt.Errorf("%w: missing jti", ErrTokenInvalid)
	}
	var expiresAt time.Time
	if parsed.ExpiresAt != nil {
		expiresAt = parsed.ExpiresAt.Time
	}
	return RefreshClaims{UserID: userID, TokenID: parsed.ID, ExpiresAt: expiresAt}, nil
}

func (m *JWTManager) sign(c claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *JWTManager) parse(raw, wantType string) (*claims, error) {
	parsed := &claims{}
	_, err := jwt.ParseWithClaims(raw, parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if parsed.TokenType != wantType {
		return nil, fmt.Errorf("%w: expected %s token", ErrTokenInvalid, wantType)
	}
	return parsed, nil
}
