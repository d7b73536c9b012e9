package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	envOnce     sync.Once
	envOnceLock sync.Mutex
	skipEnvLoad bool
)

// envFiles 按优先级排列：.env.local 覆盖 .env。
var envFiles = []string{".env", ".env.local"}

// LoadEnvFiles 从当前目录向上查找 .env / .env.local 并加载，进程内只执行一次。
// CONFIG_SKIP_ENV_LOAD=1 时跳过，CI 与测试使用。
func LoadEnvFiles() {
	envOnceLock.Lock()
	skip := skipEnvLoad
	envOnceLock.Unlock()
	if skip || os.Getenv("CONFIG_SKIP_ENV_LOAD") == "1" {
		return
	}

	envOnce.Do(func() {
		for _, name := range envFiles {
			path, ok := findUpwards(name)
			if !ok {
				continue
			}
			if err := godotenv.Overload(path); err != nil {
				log.Printf("[config] load %s failed: %v", path, err)
				continue
			}
			log.Printf("[config] loaded environment file: %s", path)
		}
	})
}

// SetEnvFileLoadingForTest 开关 .env 自动加载，仅供测试使用。
func SetEnvFileLoadingForTest(enabled bool) {
	envOnceLock.Lock()
	defer envOnceLock.Unlock()

	skipEnvLoad = !enabled
	envOnce = sync.Once{}
}

func findUpwards(name string) (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
