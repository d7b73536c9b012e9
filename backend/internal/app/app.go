package app

import (
	"context"
	"errors"
	"fmt"

	"weekend-at-joes/backend/internal/apperr"
	"weekend-at-joes/backend/internal/config"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/infra/client"
	"weekend-at-joes/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AppConfig 汇总运行模式与服务配置。
type AppConfig struct {
	config.RuntimeFlags
	Server config.Server
}

// Resources 是进程级共享的外部资源，Redis 在未配置或本地模式下为 nil。
type Resources struct {
	Config AppConfig
	DB     *gorm.DB
	Redis  *redis.Client
}

// InitResources 读取配置并打开数据库与 Redis，完成迁移。
func InitResources(ctx context.Context) (*Resources, error) {
	config.LoadEnvFiles()

	serverCfg, err := config.LoadServer()
	if err != nil {
		return nil, err
	}
	res := &Resources{Config: AppConfig{RuntimeFlags: config.LoadRuntimeFlags(), Server: serverCfg}}

	if res.Config.IsLocal() {
		res.DB, err = client.OpenSQLite(ctx, res.Config.Local.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open local database: %w", err)
		}
	} else {
		res.DB, err = client.OpenDatabase(ctx, serverCfg.DB)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		res.Redis, err = client.NewRedisClient(ctx, serverCfg.Redis)
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	if err := repository.AutoMigrate(res.DB.WithContext(ctx)); err != nil {
		_ = res.Close()
		return nil, err
	}

	if res.Config.IsLocal() {
		if _, err := EnsureLocalUser(ctx, repository.NewUserRepository(res.DB), res.Config.Local); err != nil {
			_ = res.Close()
			return nil, err
		}
	}
	return res, nil
}

// EnsureLocalUser 确保本地模式的固定用户存在，返回其实体。
// 该账号的密码是随机值，只能通过离线鉴权使用。
func EnsureLocalUser(ctx context.Context, users *repository.UserRepository, local config.LocalRuntime) (user.User, error) {
	existing, err := users.Get(ctx, local.UserUUID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return user.User{}, fmt.Errorf("load local user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash local password: %w", err)
	}
	var roles []string
	if local.IsAdmin {
		roles = []string{user.RoleAdmin}
	}
	created, err := users.Create(ctx, user.User{
		UUID:         local.UserUUID,
		UserName:     local.UserName,
		DisplayName:  local.DisplayName,
		PasswordHash: string(hash),
		Roles:        user.EncodeRoles(roles...),
	})
	if err != nil {
		return user.User{}, fmt.Errorf("create local user: %w", err)
	}
	return created, nil
}

func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	if r.DB != nil {
		errs = append(errs, client.CloseDatabase(r.DB))
	}
	return errors.Join(errs...)
}

func (r *Resources) DBConn() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.DB
}
