package db

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smallbiznis/referralhub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialectByType(t *testing.T) {
	for _, typ := range []string{"postgres", "POSTGRESQL", "mysql", "sqlite"} {
		d, err := Dialect(config.Config{DBType: typ, DBHost: "localhost", DBPort: "5432"})
		require.NoError(t, err, typ)
		assert.NotNil(t, d)
	}

	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(config.Config{
		DBHost: "db", DBPort: "5432", DBUser: "app", DBPassword: "p@ss", DBName: "referralhub", DBSSLMode: "disable",
	})
	assert.Equal(t, "postgres://app:p%40ss@db:5432/referralhub?TimeZone=UTC&sslmode=disable", dsn)

	assert.Equal(t, "postgres://u@x/y", postgresDSN(config.Config{DBURL: "postgres://u@x/y"}))
}

func TestMySQLDSN(t *testing.T) {
	dsn := mysqlDSN(config.Config{DBHost: "db", DBPort: "3306", DBUser: "app", DBPassword: "secret", DBName: "referralhub"})
	parsed, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db:3306", parsed.Addr)
	assert.Equal(t, "referralhub", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "referralhub.db?_foreign_keys=on&_busy_timeout=5000", sqliteDSN(""))
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN("file::memory:?cache=shared"))
}

func TestIsDuplicateKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres", &pgconn.PgError{Code: "23505", ConstraintName: "idx_intentions_email"}, true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"mysql", fmt.Errorf("wrap: %w", &mysqldriver.MySQLError{Number: 1062}), true},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKey(tc.err))
		})
	}
}

func TestIsDuplicateKeyFromStore(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)

	type account struct {
		ID    int64  `gorm:"primaryKey"`
		Email string `gorm:"uniqueIndex"`
	}
	require.NoError(t, conn.AutoMigrate(&account{}))
	require.NoError(t, conn.Create(&account{ID: 1, Email: "a@x.com"}).Error)

	err = conn.Create(&account{ID: 2, Email: "a@x.com"}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}

func TestDuplicateConstraint(t *testing.T) {
	assert.Equal(t, "idx_intentions_email", DuplicateConstraint(&pgconn.PgError{Code: "23505", ConstraintName: "idx_intentions_email"}))
	assert.Equal(t, "", DuplicateConstraint(&pgconn.PgError{Code: "23503", ConstraintName: "fk"}))
	assert.Equal(t, "users.email (2067)", DuplicateConstraint(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
	assert.Equal(t, "", DuplicateConstraint(errors.New("boom")))
}
