package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/referralhub/internal/audit/domain"
	"github.com/smallbiznis/referralhub/internal/audit/repository"
	"github.com/smallbiznis/referralhub/internal/clock"
	obscontext "github.com/smallbiznis/referralhub/internal/observability/context"
	"github.com/smallbiznis/referralhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecord(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	repo := repository.Provide()
	svc := NewService(Params{DB: conn, Log: zap.NewNop(), GenID: node, Clock: clock.NewFakeClock(now), Repo: repo})

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActor(ctx, "user", "99")

	err = svc.Record(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionIntentionApprove,
		TargetType: "intention",
		TargetID:   "7",
		Metadata:   map[string]any{"tokenConvite": "0b7f3c1e-8a55-4f7e-9d1c-2f3a4b5c6d7e"},
	})
	require.NoError(t, err)

	items, err := repo.ListByTarget(context.Background(), conn, "intention", "7")
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, "user", got.ActorType)
	assert.Equal(t, "99", got.ActorID)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "****6d7e", got.Metadata["tokenConvite"])
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestRecordRequiresAction(t *testing.T) {
	svc := NewService(Params{Log: zap.NewNop(), Clock: clock.SystemClock{}})
	err := svc.Record(context.Background(), auditdomain.Entry{})
	if !errors.Is(err, auditdomain.ErrInvalidAction) {
		t.Fatalf("expected invalid action, got %v", err)
	}
}
