// Package repotest 为服务层与 handler 测试提供迁移好的内存 SQLite 与种子数据。
package repotest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/pkg/ident"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// NewDB 返回独立的共享缓存内存库，测试结束时关闭。
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))
	return db
}

// Password 是 SeedUser 创建的账号的明文密码。
const Password = "correct horse battery"

var passwordHash = func() string {
	out, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(out)
}()

// SeedUser 创建一个用户，返回实体与其身份。
func SeedUser(t testing.TB, db *gorm.DB, name string, roles ...string) (user.User, user.Principal) {
	t.Helper()
	u, err := repository.NewUserRepository(db).Create(context.Background(), user.User{
		UUID:         ident.New[ident.UserUUID](),
		UserName:     name,
		DisplayName:  strings.ToUpper(name[:1]) + name[1:],
		PasswordHash: passwordHash,
		Roles:        user.EncodeRoles(roles...),
	})
	require.NoError(t, err)
	return u, user.PrincipalOf(u)
}
