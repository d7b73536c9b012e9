package client

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"weekend-at-joes/backend/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPort = 6379

// NewRedisClient 根据配置创建 redis.Client 并 PING 一次。Endpoint 为空返回 nil，调用方回退到内存实现。
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, nil
	}
	host, port, err := splitEndpoint(cfg.Endpoint, defaultRedisPort)
	if err != nil {
		return nil, fmt.Errorf("invalid redis endpoint: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func splitEndpoint(endpoint string, defaultPort int) (string, int, error) {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.Contains(endpoint, ":") {
		return endpoint, defaultPort, nil
	}
	host, rawPort, err := net.SplitHostPort(endpoint)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}
