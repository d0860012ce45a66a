package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLoggerConfig tunes NewGormLogger. A zero Level means Warn.
type GormLoggerConfig struct {
	Level                gormlogger.LogLevel
	SlowThreshold        time.Duration
	IgnoreRecordNotFound bool
}

// GormLogger forwards gorm output to zap. Bound parameters are never logged:
// they carry e-mails, password hashes and invitation tokens.
type GormLogger struct {
	log   *zap.Logger
	cfg   GormLoggerConfig
	level gormlogger.LogLevel
}

func NewGormLogger(base *zap.Logger, cfg GormLoggerConfig) *GormLogger {
	if base == nil {
		base = zap.NewNop()
	}
	if cfg.Level == 0 {
		cfg.Level = gormlogger.Warn
	}
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = defaultSlowQuery
	}
	return &GormLogger{log: base.Named("gorm"), cfg: cfg, level: cfg.Level}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []interface{}) {
	if l.level < min {
		return
	}
	if ce := WithContext(ctx, l.log).Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write()
	}
}

// Trace logs failed statements at error, slow ones at warn and, in Info
// mode, every statement at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var lvl zapcore.Level
	switch {
	case err != nil && l.level >= gormlogger.Error:
		if l.cfg.IgnoreRecordNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		lvl = zapcore.ErrorLevel
	case elapsed > l.cfg.SlowThreshold && l.level >= gormlogger.Warn:
		lvl = zapcore.WarnLevel
	case l.level >= gormlogger.Info:
		lvl = zapcore.DebugLevel
	default:
		return
	}

	sql, rows := fc()
	op, table := describeSQL(sql)
	fields := []zap.Field{
		zap.String("db.operation", op),
		zap.String("db.table", table),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.Duration("elapsed", elapsed),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	msg := "sql"
	if lvl == zapcore.WarnLevel {
		msg = "slow sql"
	}
	if ce := WithContext(ctx, l.log).Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

// describeSQL returns the statement verb and the first table it names.
func describeSQL(sql string) (string, string) {
	tokens := strings.Fields(strings.ToUpper(sql))
	raw := strings.Fields(sql)
	op := "UNKNOWN"
	for i, tok := range tokens {
		tok = strings.Trim(tok, "();")
		switch tok {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			if op == "UNKNOWN" {
				op = tok
			}
			if tok == "UPDATE" && i+1 < len(raw) {
				return op, cleanTable(raw[i+1])
			}
		case "FROM", "INTO":
			if op != "UNKNOWN" && i+1 < len(raw) {
				return op, cleanTable(raw[i+1])
			}
		}
	}
	return op, ""
}

func cleanTable(name string) string {
	return strings.Trim(name, "`\"();,")
}

var _ gormlogger.Interface = (*GormLogger)(nil)
