package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// 支持的在线数据库驱动。
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Server 是 HTTP 服务的类型化配置，全部来自环境变量。
type Server struct {
	HTTP       HTTPConfig
	DB         DBConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Pagination PaginationConfig
	Limits     LimitsConfig
	CORS       CORSConfig
	IPGuard    IPGuardConfig
	// FrontendDist 指向 go-app 构建产物目录，为空则不托管前端。
	FrontendDist string `env:"FRONTEND_DIST"`
}

// HTTPConfig 监听地址与请求超时。
type HTTPConfig struct {
	Host string `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `env:"PORT" env-default:"8080"`
	// RequestTimeout 同时约束等待连接池的时间，超时后返回 503。
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Addr 返回 host:port。
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig 在线模式的数据库连接参数。DSN 非空时优先使用。
type DBConfig struct {
	Driver   string `env:"DB_DRIVER" env-default:"mysql"`
	DSN      string `env:"DB_DSN"`
	Host     string `env:"DB_HOST" env-default:"127.0.0.1"`
	Port     int    `env:"DB_PORT"`
	User     string `env:"DB_USER" env-default:"joes"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" env-default:"joes"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
}

// RedisConfig 为空 Endpoint 时使用进程内实现。
type RedisConfig struct {
	Endpoint string        `env:"REDIS_ENDPOINT"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT" env-default:"5s"`
}

// AuthConfig JWT 与注册验证码。
type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTTL      time.Duration `env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL     time.Duration `env:"JWT_REFRESH_TTL" env-default:"168h"`
	CaptchaEnabled bool          `env:"CAPTCHA_ENABLED" env-default:"false"`
}

// PaginationConfig 约束客户端可请求的页大小。
type PaginationConfig struct {
	MaxPageSize int `env:"PAGINATION_MAX_PAGE_SIZE" env-default:"100"`
}

// LimitsConfig 写操作与登录的限流窗口，Limit 为 0 表示关闭。
type LimitsConfig struct {
	LoginLimit    int           `env:"LOGIN_RATE_LIMIT" env-default:"10"`
	LoginWindow   time.Duration `env:"LOGIN_RATE_WINDOW" env-default:"1m"`
	PostLimit     int           `env:"POST_RATE_LIMIT" env-default:"20"`
	PostWindow    time.Duration `env:"POST_RATE_WINDOW" env-default:"1m"`
	MessageLimit  int           `env:"MESSAGE_RATE_LIMIT" env-default:"60"`
	MessageWindow time.Duration `env:"MESSAGE_RATE_WINDOW" env-default:"1m"`
}

// CORSConfig 允许的前端来源，逗号分隔；为空时仅放行 localhost。
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// IPGuardConfig 全局按 IP 限流与封禁，默认关闭。
type IPGuardConfig struct {
	Enabled      bool          `env:"IP_GUARD_ENABLED" env-default:"false"`
	Window       time.Duration `env:"IP_GUARD_WINDOW" env-default:"30s"`
	MaxRequests  int           `env:"IP_GUARD_MAX_REQUESTS" env-default:"120"`
	StrikeWindow time.Duration `env:"IP_GUARD_STRIKE_WINDOW" env-default:"10m"`
	StrikeLimit  int           `env:"IP_GUARD_STRIKE_LIMIT" env-default:"5"`
	BanTTL       time.Duration `env:"IP_GUARD_BAN_TTL" env-default:"30m"`
	HoneypotPath string        `env:"IP_GUARD_HONEYPOT_PATH" env-default:"__internal__/trace"`
}

// LoadServer 先加载 .env，再读取环境变量并校验。
func LoadServer() (Server, error) {
	LoadEnvFiles()

	var cfg Server
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Server{}, fmt.Errorf("read server config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (s *Server) normalise() error {
	s.DB.Driver = strings.ToLower(strings.TrimSpace(s.DB.Driver))
	switch s.DB.Driver {
	case DriverMySQL:
		if s.DB.Port == 0 {
			s.DB.Port = 3306
		}
	case DriverPostgres:
		if s.DB.Port == 0 {
			s.DB.Port = 5432
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", s.DB.Driver)
	}
	if s.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if s.Pagination.MaxPageSize <= 0 {
		return fmt.Errorf("PAGINATION_MAX_PAGE_SIZE must be positive")
	}
	if s.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT must be positive")
	}
	return nil
}
