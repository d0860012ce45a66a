package db

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	sqliteUniqueFailure  = "UNIQUE constraint failed"
	sqlitePrimaryFailure = "PRIMARY KEY constraint failed"
)

// IsDuplicateKey reports whether err is a unique constraint violation from
// any supported dialect, whether or not gorm translated it.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	msg := err.Error()
	return strings.Contains(msg, sqliteUniqueFailure) || strings.Contains(msg, sqlitePrimaryFailure)
}

// DuplicateConstraint names the violated constraint or column when the
// driver exposes it. Postgres reports the index name, sqlite the
// table.column pair. It returns "" when unknown.
func DuplicateConstraint(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName
	}
	msg := err.Error()
	if i := strings.Index(msg, sqliteUniqueFailure+": "); i >= 0 {
		return strings.TrimSpace(msg[i+len(sqliteUniqueFailure)+2:])
	}
	return ""
}
