package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postgres 可重试错误码：序列化失败、死锁、锁等待失败
var transientPgCodes = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
}

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// lockForUpdate 为查询追加 FOR UPDATE；sqlite 无行锁，依赖数据库级写锁。
func lockForUpdate(db *gorm.DB) *gorm.DB {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	default:
		return db
	}
}

// IsTransientError 判断是否为可重试的并发/锁冲突错误
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := transientPgCodes[pgErr.Code]
		return ok
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}
