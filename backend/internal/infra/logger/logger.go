// Package logger 持有进程级 zap 日志器，handler/service 通过 Named 取得带组件字段的子 logger。
package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	global *zap.Logger
	once   sync.Once
)

// Options 是日志初始化参数，默认值见 optionsFromEnv。
type Options struct {
	Level      string
	Encoding   string
	FilePath   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
	// Console 为 false 时只写文件，容器内通常仍保留控制台输出。
	Console bool
}

// Init 按环境变量构建全局 logger，只会执行一次。
func Init() (*zap.Logger, error) {
	var initErr error
	once.Do(func() {
		built, err := Build(optionsFromEnv())
		if err != nil {
			initErr = err
			return
		}
		set(built)
	})
	if initErr != nil {
		return nil, initErr
	}
	if l := current(); l != nil {
		return l, nil
	}
	return nil, errors.New("logger not initialized")
}

// L 返回全局 logger，未初始化时自动初始化。
func L() *zap.Logger {
	if l := current(); l != nil {
		return l
	}
	l, err := Init()
	if err != nil {
		panic(fmt.Sprintf("logger init failed: %v", err))
	}
	return l
}

// S 返回 SugaredLogger。
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// Named 返回带 component 字段的 SugaredLogger，例如 Named("article.handler")。
func Named(component string) *zap.SugaredLogger {
	return S().With("component", component)
}

// Sync 刷新缓冲区，进程退出前调用。
func Sync() {
	if l := current(); l != nil {
		_ = l.Sync()
	}
}

// ReplaceForTest 用给定 logger 替换全局实例（通常是 zap.NewNop 或 zaptest），返回恢复函数。
func ReplaceForTest(l *zap.Logger) func() {
	mu.Lock()
	prev := global
	global = l
	mu.Unlock()
	return func() { set(prev) }
}

func set(l *zap.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func optionsFromEnv() Options {
	opts := Options{
		Level:      envLower("LOG_LEVEL", "info"),
		Encoding:   envLower("LOG_ENCODING", "json"),
		FilePath:   strings.TrimSpace(os.Getenv("LOG_FILE")),
		MaxSize:    envPositive("LOG_MAX_SIZE", 20),
		MaxBackups: envPositive("LOG_MAX_BACKUPS", 5),
		MaxAge:     envPositive("LOG_MAX_AGE", 15),
		Compress:   true,
		Console:    true,
	}
	if opts.FilePath == "" {
		opts.FilePath = filepath.Join("logs", "joes.log")
	}
	// LOG_FILE=- 表示关闭文件输出。
	if opts.FilePath == "-" {
		opts.FilePath = ""
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_COMPRESS")); raw != "" {
		opts.Compress = raw == "1" || strings.EqualFold(raw, "true")
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_CONSOLE")); raw != "" {
		opts.Console = !(raw == "0" || strings.EqualFold(raw, "false"))
	}
	return opts
}

// Build 根据 Options 组合控制台与滚动文件两个 core。
func Build(opts Options) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if opts.Level != "" {
		if err := lvl.Set(opts.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339Nano)
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var cores []zapcore.Core
	if opts.FilePath != "" {
		if dir := filepath.Dir(opts.FilePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("logger create dir: %w", err)
			}
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
		enc := zapcore.NewJSONEncoder(encCfg)
		if opts.Encoding == "console" {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rotating), lvl))
	}
	if opts.Console || len(cores) == 0 {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(os.Stdout), lvl))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func envLower(key, fallback string) string {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(key))); v != "" {
		return v
	}
	return fallback
}

func envPositive(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
