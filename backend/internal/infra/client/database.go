// Package client 负责创建数据库与 Redis 连接，连接池在进程启动时建立一次并注入仓储。
package client

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"weekend-at-joes/backend/internal/config"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolOptions 控制 database/sql 连接池。MaxOpenConns 是并发请求可占用连接的上限。
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func poolFrom(cfg config.DBConfig) PoolOptions {
	return PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
}

// gormConfig 开启 TranslateError，仓储层据此识别唯一键/外键冲突。
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// OpenDatabase 按 DB_DRIVER 打开在线数据库。
func OpenDatabase(ctx context.Context, cfg config.DBConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return OpenMySQL(ctx, cfg)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// BuildMySQLDSN 用驱动自带的 Config 拼接 DSN，避免手工转义密码中的特殊字符。
func BuildMySQLDSN(cfg config.DBConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
		return "", fmt.Errorf("mysql host, user and database are required")
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN(), nil
}

// OpenMySQL 创建 MySQL 连接并 ping 一次。
func OpenMySQL(ctx context.Context, cfg config.DBConfig) (*gorm.DB, error) {
	dsn, err := BuildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(gormmysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open gorm mysql: %w", err)
	}
	if err := configurePool(ctx, db, poolFrom(cfg)); err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	return db, nil
}

// BuildPostgresDSN 生成 key=value 形式的 DSN，交给 pgx 解析。
func BuildPostgresDSN(cfg config.DBConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
		return "", fmt.Errorf("postgres host, user and database are required")
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable TimeZone=UTC", cfg.Host, port, cfg.User, cfg.Name)
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}
	return dsn, nil
}

// OpenPostgres 创建 PostgreSQL 连接并 ping 一次。
func OpenPostgres(ctx context.Context, cfg config.DBConfig) (*gorm.DB, error) {
	dsn, err := BuildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}
	if err := configurePool(ctx, db, poolFrom(cfg)); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return db, nil
}

// OpenSQLite 打开本地模式的 SQLite 文件，目录不存在时自动创建。
// SQLite 单写者，连接池固定为 1。
func OpenSQLite(ctx context.Context, path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := configurePool(ctx, db, PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1}); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return db, nil
}

func configurePool(ctx context.Context, db *gorm.DB, opts PoolOptions) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// CloseDatabase 关闭底层连接池。
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
