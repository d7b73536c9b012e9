package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"weekend-at-joes/backend/internal/apperr"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 仓储层对外暴露的错误，均为 apperr 分类的别名，调用方可直接 errors.Is。
var (
	ErrNotFound            = apperr.ErrNotFound
	ErrConstraintViolation = apperr.ErrConstraintViolation
	ErrUnavailable         = apperr.ErrUnavailable
	// ErrUnsupported 表示该实体不提供此操作。
	ErrUnsupported = errors.New("operation not supported for entity")
	// ErrQueryFailed 表示无法归类的存储层失败。
	ErrQueryFailed = fmt.Errorf("%w: query failed", apperr.ErrInternal)
)

// MySQL 错误号：重复键、被引用行无法删除、外键不存在。
const (
	mysqlDuplicateEntry     = 1062
	mysqlRowIsReferenced    = 1451
	mysqlNoReferencedRow    = 1452
	mysqlRowIsReferencedOld = 1217
	mysqlNoReferencedRowOld = 1216
)

// translate 把 gorm / 驱动层错误统一为 apperr 分类，并保留原始错误链。
// 不做任何重试。
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case isConstraintViolation(err):
		return fmt.Errorf("%s: %w: %w", op, ErrConstraintViolation, err)
	case isUnavailable(err):
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrQueryFailed, err)
	}
}

func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDuplicateEntry, mysqlRowIsReferenced, mysqlNoReferencedRow,
			mysqlRowIsReferencedOld, mysqlNoReferencedRowOld:
			return true
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation, pgerrcode.RestrictViolation:
			return true
		}
	}

	// sqlite 驱动未开启 TranslateError 时只能依赖错误文本。
	return strings.Contains(err.Error(), "constraint failed")
}

// isUnavailable 判断错误是否来自连接池耗尽或连接失效，对外表现为 503。
func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}
