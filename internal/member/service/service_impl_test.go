package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/member/domain"
	"github.com/smallbiznis/referralhub/internal/member/repository"
	"github.com/smallbiznis/referralhub/pkg/db"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, domain.Service, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Member{}))
	clk := clock.NewFakeClock(time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC))
	svc := New(Params{DB: conn, Log: zap.NewNop(), Clock: clk, Repo: repository.Provide()})
	return conn, svc, clk
}

func seedMember(t *testing.T, conn *gorm.DB, clk *clock.FakeClock, id int64, name, email string, status domain.Status) *domain.Member {
	t.Helper()
	clk.Advance(time.Minute)
	now := clk.Now()
	m := &domain.Member{
		ID:        snowflake.ID(id),
		UserID:    snowflake.ID(id + 1000),
		FullName:  name,
		Email:     email,
		Phone:     "11999990000",
		Company:   name + " SA",
		Status:    status,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, conn.Create(m).Error)
	return m
}

func strPtr(s string) *string { return &s }

func TestGetByIDAndUserID(t *testing.T) {
	conn, svc, clk := setup(t)
	m := seedMember(t, conn, clk, 1, "Ana", "ana@x.com", domain.StatusActive)

	got, err := svc.GetByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, m.Email, got.Email)

	got, err = svc.GetByUserID(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = svc.GetByID(context.Background(), "2")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetByID(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListAndCount(t *testing.T) {
	conn, svc, clk := setup(t)
	statuses := []domain.Status{domain.StatusActive, domain.StatusActive, domain.StatusInactive, domain.StatusSuspended, domain.StatusPending}
	for i, st := range statuses {
		seedMember(t, conn, clk, int64(i+1), fmt.Sprintf("Membro %d", i+1), fmt.Sprintf("m%d@x.com", i+1), st)
	}

	res, err := svc.List(context.Background(), domain.ListRequest{Status: "active"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.EqualValues(t, 2, res.Items[0].ID)

	res, err = svc.List(context.Background(), domain.ListRequest{Search: "m3@X", Pagination: pagination.Pagination{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Membro 3", res.Items[0].FullName)

	counts, err := svc.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{Active: 2, Inactive: 1, Pending: 1, Suspended: 1, Total: 5}, counts)
}

func TestUpdate(t *testing.T) {
	conn, svc, clk := setup(t)
	seedMember(t, conn, clk, 1, "Ana", "ana@x.com", domain.StatusActive)

	out, err := svc.Update(context.Background(), domain.UpdateRequest{
		ID:       "1",
		ActorID:  "admin-key",
		Company:  strPtr(" Nova Empresa "),
		Bio:      strPtr(""),
		LinkedIn: strPtr("https://linkedin.com/in/ana"),
		Status:   strPtr("suspended"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nova Empresa", out.Company)
	assert.Equal(t, "https://linkedin.com/in/ana", out.LinkedIn)
	assert.Equal(t, domain.StatusSuspended, out.Status)
	assert.Equal(t, "ana@x.com", out.Email)
	assert.Equal(t, "Ana", out.FullName)
}

func TestUpdateValidation(t *testing.T) {
	conn, svc, clk := setup(t)
	seedMember(t, conn, clk, 1, "Ana", "ana@x.com", domain.StatusActive)

	_, err := svc.Update(context.Background(), domain.UpdateRequest{ID: "1"})
	require.ErrorIs(t, err, domain.ErrEmptyUpdate)

	_, err = svc.Update(context.Background(), domain.UpdateRequest{ID: "1", FullName: strPtr("  ")})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Update(context.Background(), domain.UpdateRequest{ID: "1", Status: strPtr("BANNED")})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.Update(context.Background(), domain.UpdateRequest{ID: "9", Bio: strPtr("x")})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
