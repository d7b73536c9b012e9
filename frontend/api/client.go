// Package api 是前端访问后端 REST 接口的客户端。
package api

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks weekend-at-joes/frontend/api Client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"weekend-at-joes/pkg/ident"
	"weekend-at-joes/pkg/wire"
)

// Client 组件依赖的后端操作。
type Client interface {
	Login(ctx context.Context, req wire.LoginRequest) (wire.LoginResponse, error)
	Register(ctx context.Context, req wire.NewUserRequest) (wire.LoginResponse, error)
	PublishedArticles(ctx context.Context, index, size int) (wire.Page[wire.ArticlePreviewResponse], error)
	BucketParticipants(ctx context.Context, bucket ident.BucketUUID) ([]wire.UserResponse, error)
	IsBucketOwner(ctx context.Context, bucket ident.BucketUUID) (bool, error)
	RemoveBucketUser(ctx context.Context, bucket ident.BucketUUID, userID ident.UserUUID) error
}

// Error 是后端返回的非 2xx 响应。
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsStatus 判断 err 是否为指定状态码的 *Error。
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// HTTPClient 基于 net/http 的实现。浏览器中 http.DefaultClient 走 fetch。
type HTTPClient struct {
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient base 为空时使用同源相对路径。
func NewHTTPClient(base string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{base: strings.TrimRight(base, "/"), http: client}
}

// SetToken 设置后续请求携带的访问令牌，空串表示匿名。
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) Login(ctx context.Context, req wire.LoginRequest) (wire.LoginResponse, error) {
	var out wire.LoginResponse
	_, err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out)
	return out, err
}

func (c *HTTPClient) Register(ctx context.Context, req wire.NewUserRequest) (wire.LoginResponse, error) {
	var out wire.LoginResponse
	_, err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out)
	return out, err
}

func (c *HTTPClient) PublishedArticles(ctx context.Context, index, size int) (wire.Page[wire.ArticlePreviewResponse], error) {
	var items []wire.ArticlePreviewResponse
	meta, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/article/articles/%d/%d", index, size), nil, &items)
	if err != nil {
		return wire.Page[wire.ArticlePreviewResponse]{}, err
	}
	page := wire.Page[wire.ArticlePreviewResponse]{Items: items}
	if meta != nil {
		page.Pagination = *meta
	}
	return page, nil
}

func (c *HTTPClient) BucketParticipants(ctx context.Context, bucket ident.BucketUUID) ([]wire.UserResponse, error) {
	var out []wire.UserResponse
	_, err := c.do(ctx, http.MethodGet, "/api/buckets/"+bucket.String()+"/users", nil, &out)
	return out, err
}

func (c *HTTPClient) IsBucketOwner(ctx context.Context, bucket ident.BucketUUID) (bool, error) {
	var out bool
	_, err := c.do(ctx, http.MethodGet, "/api/buckets/"+bucket.String()+"/is_owner", nil, &out)
	return out, err
}

func (c *HTTPClient) RemoveBucketUser(ctx context.Context, bucket ident.BucketUUID, userID ident.UserUUID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/buckets/"+bucket.String()+"/users/"+userID.String(), nil, nil)
	return err
}

// do 发送请求并解开响应外壳，out 为 nil 时忽略 data。
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (*wire.Pagination, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var env wire.Envelope[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &Error{Status: resp.StatusCode}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &Error{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Meta, nil
}
