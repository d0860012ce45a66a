package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/referralhub/internal/observability/context"
	"github.com/smallbiznis/referralhub/pkg/telemetry/correlation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsRequestFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActor(ctx, "user", "42")
	ctx = correlation.ContextWithCorrelationID(ctx, "cid-1")

	WithContext(ctx, base).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["correlation_id"] != "cid-1" || fields["actor_id"] != "42" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestGinMiddlewareSetsRequestAndCorrelationHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinMiddleware(MiddlewareConfig{}))

	var seenRequestID string
	engine.GET("/ping", func(c *gin.Context) {
		seenRequestID = obscontext.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "not-a-uuid")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected generated uuid request id, got %q", got)
	}
	if got != seenRequestID {
		t.Fatalf("expected handler to see %q, got %q", got, seenRequestID)
	}
	if rec.Header().Get(correlation.HeaderName) == "" {
		t.Fatalf("expected correlation header")
	}
}

func TestDescribeSQL(t *testing.T) {
	cases := []struct {
		sql, op, table string
	}{
		{`SELECT * FROM "members" WHERE id = $1`, "SELECT", "members"},
		{"  update intentions set status = 'APPROVED'", "UPDATE", "intentions"},
		{"INSERT INTO `thanks` (`id`) VALUES (?)", "INSERT", "thanks"},
		{"WITH x AS (SELECT 1) SELECT * FROM x", "SELECT", "x"},
		{"", "UNKNOWN", ""},
	}
	for _, tc := range cases {
		op, table := describeSQL(tc.sql)
		if op != tc.op || table != tc.table {
			t.Fatalf("describeSQL(%q): expected %s/%s, got %s/%s", tc.sql, tc.op, tc.table, op, table)
		}
	}
}

func TestGormLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), GormLoggerConfig{SlowThreshold: 100 * time.Millisecond, IgnoreRecordNotFound: true})
	ctx := context.Background()
	stmt := func() (string, int64) { return "SELECT * FROM members", 1 }

	l.Trace(ctx, time.Now(), stmt, gormlogger.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("record not found must be ignored")
	}

	l.Trace(ctx, time.Now(), stmt, errors.New("boom"))
	l.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	l.Trace(ctx, time.Now(), stmt, nil)

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected error and slow entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel || entries[1].Message != "slow sql" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[1].ContextMap()["db.table"] != "members" {
		t.Fatalf("expected table field, got %v", entries[1].ContextMap())
	}
}

func TestRequestLevel(t *testing.T) {
	cases := []struct {
		route  string
		status int
		want   zapcore.Level
	}{
		{"/api/health", http.StatusInternalServerError, zapcore.DebugLevel},
		{"/metrics", http.StatusOK, zapcore.DebugLevel},
		{"/api/indicacoes", http.StatusOK, zapcore.InfoLevel},
		{"/api/indicacoes", http.StatusForbidden, zapcore.WarnLevel},
		{"unmatched", http.StatusBadGateway, zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		if got := requestLevel(tc.route, tc.status); got != tc.want {
			t.Fatalf("%s %d: expected %s, got %s", tc.route, tc.status, tc.want, got)
		}
	}
}

func TestGinMiddlewareClassifiesErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinMiddleware(MiddlewareConfig{
		ErrorClassifier: func(error) (string, string) { return "validation", "VALIDATION_ERROR" },
	}))
	engine.POST("/api/intencoes", func(c *gin.Context) {
		_ = c.Error(errors.New("bad input"))
		c.Status(http.StatusBadRequest)
	})

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/intencoes", nil))

	entries := logs.FilterMessage("http_request").AllUntimed()
	if len(entries) != 1 {
		t.Fatalf("expected one request entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if entries[0].Level != zapcore.WarnLevel || fields["error_code"] != "VALIDATION_ERROR" || fields["route"] != "/api/intencoes" {
		t.Fatalf("unexpected entry: level=%s fields=%v", entries[0].Level, fields)
	}
	if _, ok := fields["error"]; ok {
		t.Fatalf("4xx must not carry the raw error")
	}
}

func TestNewCoreHonoursLevel(t *testing.T) {
	var buf zaptest.Buffer
	log := zap.New(newCore(Config{Debug: true}, zapcore.WarnLevel, &buf))

	log.Info("dropped")
	log.Warn("kept", zap.String("k", "v"))

	lines := buf.Lines()
	if len(lines) != 1 || !strings.Contains(lines[0], `"msg":"kept"`) || !strings.Contains(lines[0], `"ts":`) {
		t.Fatalf("unexpected output: %v", lines)
	}
}
