package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"weekend-at-joes/pkg/ident"
)

const (
	// ModeLocal 单机模式：SQLite + 内存存储，固定的离线用户。
	ModeLocal = "local"
	// ModeOnline 默认模式：MySQL/PostgreSQL + Redis。
	ModeOnline = "online"

	defaultLocalUserUUID    = "00000000-0000-4000-8000-000000000001"
	defaultLocalUserName    = "joe"
	defaultLocalDisplayName = "Joe"
	defaultLocalDBRelPath   = "data/joes-local.db"
)

// RuntimeFlags 汇总运行模式与本地模式参数。
type RuntimeFlags struct {
	Mode  string
	Local LocalRuntime
}

// IsLocal 是否运行在本地模式。
func (f RuntimeFlags) IsLocal() bool {
	return f.Mode == ModeLocal
}

// LocalRuntime 描述本地模式下的 SQLite 路径与离线用户。
type LocalRuntime struct {
	DBPath      string
	UserUUID    ident.UserUUID
	UserName    string
	DisplayName string
	IsAdmin     bool
}

// LoadRuntimeFlags 读取 APP_MODE 与 LOCAL_* 环境变量。未知的模式按 online 处理。
func LoadRuntimeFlags() RuntimeFlags {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("APP_MODE")))
	if mode != ModeLocal {
		mode = ModeOnline
	}

	local := LocalRuntime{
		DBPath:      normalisePath(defaultLocalDBRelPath),
		UserUUID:    ident.MustParse[ident.UserUUID](defaultLocalUserUUID),
		UserName:    defaultLocalUserName,
		DisplayName: defaultLocalDisplayName,
		IsAdmin:     true,
	}

	if raw := strings.TrimSpace(os.Getenv("LOCAL_SQLITE_PATH")); raw != "" {
		local.DBPath = normalisePath(raw)
	}
	if raw := strings.TrimSpace(os.Getenv("LOCAL_USER_UUID")); raw != "" {
		if parsed, err := ident.Parse[ident.UserUUID](raw); err == nil {
			local.UserUUID = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv("LOCAL_USER_NAME")); raw != "" {
		local.UserName = raw
	}
	if raw := strings.TrimSpace(os.Getenv("LOCAL_USER_DISPLAY_NAME")); raw != "" {
		local.DisplayName = raw
	}
	if raw := strings.TrimSpace(os.Getenv("LOCAL_USER_ADMIN")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			local.IsAdmin = parsed
		}
	}

	return RuntimeFlags{Mode: mode, Local: local}
}

// normalisePath 展开 ~ 前缀并转为绝对路径。
func normalisePath(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
		}
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	if abs, err := filepath.Abs(raw); err == nil {
		return abs
	}
	return raw
}
