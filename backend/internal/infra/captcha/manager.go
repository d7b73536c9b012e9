// Package captcha 生成注册用的数字验证码，答案保存在 Redis（或本地内存）中，校验一次即失效。
package captcha

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weekend-at-joes/backend/internal/infra/ratelimit"

	"github.com/mojocn/base64Captcha"
)

var (
	ErrCaptchaNotFound = errors.New("captcha not found or expired")
	ErrCaptchaMismatch = errors.New("captcha code mismatch")
	ErrRateLimited     = errors.New("captcha requests too frequent")
)

// Manager 负责生成、校验以及按 IP 限流。
type Manager struct {
	store   AnswerStore
	driver  base64Captcha.Driver
	limiter ratelimit.Limiter
	rule    ratelimit.Rule
	prefix  string
}

// NewManager 构造验证码管理器，非正数参数回退到默认值。limiter 为 nil 时不限流。
func NewManager(store AnswerStore, limiter ratelimit.Limiter, opts Options) *Manager {
	if opts.Width <= 0 {
		opts.Width = 240
	}
	if opts.Height <= 0 {
		opts.Height = 80
	}
	if opts.Length <= 0 {
		opts.Length = 5
	}
	if opts.MaxSkew <= 0 {
		opts.MaxSkew = 0.7
	}
	if opts.DotCount <= 0 {
		opts.DotCount = 80
	}
	if strings.TrimSpace(opts.Prefix) == "" {
		opts.Prefix = "captcha"
	}
	rule := ratelimit.Rule{Limit: opts.RateLimit, Window: opts.RateWindow}
	if rule.Window <= 0 {
		rule.Window = time.Minute
	}

	return &Manager{
		store:   store,
		driver:  base64Captcha.NewDriverDigit(opts.Height, opts.Width, opts.Length, opts.MaxSkew, opts.DotCount),
		limiter: limiter,
		rule:    rule,
		prefix:  opts.Prefix,
	}
}

// Generate 返回验证码 ID 与 base64 图片。
func (m *Manager) Generate(ctx context.Context, ip string) (string, string, error) {
	if err := m.checkRateLimit(ctx, ip); err != nil {
		return "", "", err
	}

	id, content, answer := m.driver.GenerateIdQuestionAnswer()
	item, err := m.driver.DrawCaptcha(content)
	if err != nil {
		return "", "", fmt.Errorf("draw captcha: %w", err)
	}
	if err := m.store.Save(ctx, id, strings.ToLower(answer)); err != nil {
		return "", "", fmt.Errorf("store captcha: %w", err)
	}
	return id, item.EncodeB64string(), nil
}

// Verify 取出并删除答案，再与提交值比较（忽略大小写与首尾空白）。
func (m *Manager) Verify(ctx context.Context, id, answer string) error {
	if strings.TrimSpace(id) == "" {
		return ErrCaptchaNotFound
	}
	stored, err := m.store.Take(ctx, id)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), stored) {
		return ErrCaptchaMismatch
	}
	return nil
}

func (m *Manager) checkRateLimit(ctx context.Context, ip string) error {
	if m.limiter == nil || m.rule.Disabled() || strings.TrimSpace(ip) == "" {
		return nil
	}
	decision, err := m.limiter.Allow(ctx, m.prefix+":ip:"+ip, m.rule)
	if err != nil {
		return fmt.Errorf("captcha rate limit: %w", err)
	}
	if !decision.Allowed {
		return ErrRateLimited
	}
	return nil
}
