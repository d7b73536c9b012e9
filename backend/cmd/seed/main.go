package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"weekend-at-joes/backend/internal/app"
	"weekend-at-joes/backend/internal/bootstrapdata"
	"weekend-at-joes/backend/internal/config"
	"weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/repository"
)

var (
	outputPath    = flag.String("output", "", "本地模式下生成的 SQLite 文件路径")
	dataDir       = flag.String("data-dir", "", "fixtures.json 所在目录，默认读取 SEED_DATA_DIR")
	adminName     = flag.String("admin", "admin", "管理员登录名")
	adminPassword = flag.String("admin-password", "", "管理员密码，默认读取 SEED_ADMIN_PASSWORD")
	online        = flag.Bool("online", false, "写入在线数据库而不是本地 SQLite")
)

// main 初始化数据库并写入演示数据。默认在本地模式下运行。
func main() {
	flag.Parse()

	if !*online {
		ensureLocalMode()
	}
	if *outputPath != "" {
		if err := os.Setenv("LOCAL_SQLITE_PATH", strings.TrimSpace(*outputPath)); err != nil {
			panic(fmt.Sprintf("set LOCAL_SQLITE_PATH failed: %v", err))
		}
	}

	zapLogger, err := logger.Init()
	if err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	defer logger.Sync()
	sugar := zapLogger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resources, err := app.InitResources(ctx)
	if err != nil {
		sugar.Fatalw("initialise resources failed", "error", err)
	}
	defer func() {
		if closeErr := resources.Close(); closeErr != nil {
			sugar.Warnw("close resources failed", "error", closeErr)
		}
	}()

	password := *adminPassword
	if password == "" {
		password = os.Getenv("SEED_ADMIN_PASSWORD")
	}

	if _, err := bootstrapdata.Seed(ctx, repository.NewRepositories(resources.DBConn()), bootstrapdata.Options{
		DataDir:       *dataDir,
		AdminName:     *adminName,
		AdminPassword: password,
		Logger:        sugar,
	}); err != nil {
		sugar.Errorw("seed failed", "error", err)
		return
	}

	if resources.Config.IsLocal() {
		sugar.Infow("local database ready", "sqlite_path", resources.Config.Local.DBPath)
	}
}

// ensureLocalMode 未显式指定 -online 时切换到本地模式。
func ensureLocalMode() {
	if mode := strings.TrimSpace(os.Getenv("APP_MODE")); !strings.EqualFold(mode, config.ModeLocal) {
		if err := os.Setenv("APP_MODE", config.ModeLocal); err != nil {
			panic(fmt.Sprintf("set APP_MODE failed: %v", err))
		}
	}
}
