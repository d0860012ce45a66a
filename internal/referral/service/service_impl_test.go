package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/referralhub/internal/audit/domain"
	auditrepo "github.com/smallbiznis/referralhub/internal/audit/repository"
	auditsvc "github.com/smallbiznis/referralhub/internal/audit/service"
	"github.com/smallbiznis/referralhub/internal/clock"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	memberrepo "github.com/smallbiznis/referralhub/internal/member/repository"
	"github.com/smallbiznis/referralhub/internal/referral/domain"
	"github.com/smallbiznis/referralhub/internal/referral/repository"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"github.com/smallbiznis/referralhub/pkg/db"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   domain.Service
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&memberdomain.Member{}, &domain.Indication{}, &domain.Thanks{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))

	for _, id := range []int64{1, 2, 3} {
		now := clk.Now()
		require.NoError(t, conn.Create(&memberdomain.Member{
			ID:        snowflake.ID(id),
			UserID:    snowflake.ID(100 + id),
			FullName:  "Membro",
			Email:     "m" + snowflake.ID(id).String() + "@x.com",
			Phone:     "1",
			Company:   "Acme",
			Status:    memberdomain.StatusActive,
			JoinedAt:  now,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error)
	}

	return &fixture{
		db:    conn,
		clock: clk,
		svc: New(Params{
			DB:         conn,
			Log:        zap.NewNop(),
			GenID:      node,
			Clock:      clk,
			Repo:       repository.Provide(),
			MemberRepo: memberrepo.Provide(),
		}),
	}
}

func (f *fixture) create(t *testing.T, from, to string) *domain.Indication {
	t.Helper()
	f.clock.Advance(time.Minute)
	ind, err := f.svc.CreateIndication(context.Background(), domain.CreateIndicationRequest{
		ReferrerID:     from,
		ReferredID:     to,
		Title:          "Projeto ERP",
		Description:    "Implantação de ERP",
		ClientName:     "Cliente SA",
		EstimatedValue: 15000,
	})
	require.NoError(t, err)
	return ind
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateIndicationDefaultsToOpen(t *testing.T) {
	f := newFixture(t)
	ind := f.create(t, "1", "2")

	assert.Equal(t, domain.StatusOpen, ind.Status)
	assert.Nil(t, ind.ClosedValue)
	assert.Nil(t, ind.ClosedAt)
	assert.EqualValues(t, 1, ind.ReferrerID)
	assert.EqualValues(t, 2, ind.ReferredID)
}

func TestCreateIndicationAllowsSelfReferral(t *testing.T) {
	f := newFixture(t)
	ind := f.create(t, "3", "3")
	assert.True(t, ind.Involves(3))
}

func TestCreateIndicationValidation(t *testing.T) {
	f := newFixture(t)
	base := domain.CreateIndicationRequest{ReferrerID: "1", ReferredID: "2", Title: "t", Description: "d", ClientName: "c"}

	cases := map[string]struct {
		mutate func(*domain.CreateIndicationRequest)
		want   error
	}{
		"title":       {func(r *domain.CreateIndicationRequest) { r.Title = "" }, domain.ErrInvalidTitle},
		"description": {func(r *domain.CreateIndicationRequest) { r.Description = " " }, domain.ErrInvalidDescription},
		"client":      {func(r *domain.CreateIndicationRequest) { r.ClientName = "" }, domain.ErrInvalidClient},
		"value":       {func(r *domain.CreateIndicationRequest) { r.EstimatedValue = -1 }, domain.ErrInvalidValue},
		"referrer":    {func(r *domain.CreateIndicationRequest) { r.ReferrerID = "77" }, domain.ErrReferrerNotFound},
		"referred":    {func(r *domain.CreateIndicationRequest) { r.ReferredID = "77" }, domain.ErrReferredNotFound},
		"bad id":      {func(r *domain.CreateIndicationRequest) { r.ReferrerID = "x" }, domain.ErrInvalidID},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := f.svc.CreateIndication(context.Background(), req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTransitionValueAccounting(t *testing.T) {
	f := newFixture(t)
	ind := f.create(t, "1", "2")
	id := ind.ID.String()

	_, err := f.svc.Transition(context.Background(), domain.TransitionRequest{ID: id, Status: "CLOSED"})
	require.ErrorIs(t, err, domain.ErrClosedValueRequired)

	_, err = f.svc.Transition(context.Background(), domain.TransitionRequest{ID: id, Status: "CLOSED", ClosedValue: floatPtr(-5)})
	require.ErrorIs(t, err, domain.ErrInvalidValue)

	closed, err := f.svc.Transition(context.Background(), domain.TransitionRequest{ID: id, Status: "closed", ClosedValue: floatPtr(10000)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedValue)
	assert.Equal(t, 10000.0, *closed.ClosedValue)
	require.NotNil(t, closed.ClosedAt)
	assert.True(t, closed.ClosedAt.Equal(f.clock.Now()))

	// Any status may follow any other.
	reopened, err := f.svc.Transition(context.Background(), domain.TransitionRequest{ID: id, Status: "OPEN"})
	require.NoError(t, err)
	assert.Nil(t, reopened.ClosedValue)
	assert.Nil(t, reopened.ClosedAt)

	when := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	lost, err := f.svc.Transition(context.Background(), domain.TransitionRequest{ID: id, Status: "LOST", ClosedValue: floatPtr(99), ClosedAt: &when})
	require.NoError(t, err)
	assert.Nil(t, lost.ClosedValue)
	require.NotNil(t, lost.ClosedAt)
	assert.True(t, lost.ClosedAt.Equal(when))

	got, err := f.svc.GetIndication(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLost, got.Status)
	assert.Nil(t, got.ClosedValue)
}

func TestTransitionAuditsActingRole(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.AutoMigrate(&auditdomain.AuditLog{}))
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	audits := auditrepo.Provide()
	svc := New(Params{
		DB:         f.db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      f.clock,
		Repo:       repository.Provide(),
		MemberRepo: memberrepo.Provide(),
		AuditSvc: auditsvc.NewService(auditsvc.Params{
			DB: f.db, Log: zap.NewNop(), GenID: node, Clock: f.clock, Repo: audits,
		}),
	})

	ind := f.create(t, "1", "2")
	id := ind.ID.String()
	_, err = svc.Transition(context.Background(), domain.TransitionRequest{
		ID: id, Status: "IN_PROGRESS", ActorType: "member", ActorID: "101",
	})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), domain.TransitionRequest{
		ID: id, Status: "LOST", ActorType: "admin", ActorID: "7",
	})
	require.NoError(t, err)

	entries, err := audits.ListByTarget(context.Background(), f.db, "indication", id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	actors := map[string]string{}
	for _, e := range entries {
		assert.Equal(t, auditdomain.ActionIndicationStatus, e.Action)
		actors[e.ActorID] = e.ActorType
	}
	assert.Equal(t, map[string]string{"101": "member", "7": "admin"}, actors)
}

func TestTransitionErrors(t *testing.T) {
	f := newFixture(t)
	ind := f.create(t, "1", "2")

	_, err := f.svc.Transition(context.Background(), domain.TransitionRequest{ID: ind.ID.String(), Status: "WON"})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.Transition(context.Background(), domain.TransitionRequest{ID: "12345", Status: "OPEN"})
	require.ErrorIs(t, err, domain.ErrIndicationNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListIndicationsByMemberAndStatus(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "1", "2")
	f.create(t, "2", "3")
	f.create(t, "3", "1")
	_, err := f.svc.Transition(context.Background(), domain.TransitionRequest{ID: a.ID.String(), Status: "IN_PROGRESS"})
	require.NoError(t, err)

	res, err := f.svc.ListIndications(context.Background(), domain.ListIndicationsRequest{MemberID: "1"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.EqualValues(t, 2, res.PageInfo.Total)

	res, err = f.svc.ListIndications(context.Background(), domain.ListIndicationsRequest{Status: "in_progress"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, a.ID, res.Items[0].ID)

	res, err = f.svc.ListIndications(context.Background(), domain.ListIndicationsRequest{Pagination: pagination.Pagination{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.True(t, res.PageInfo.HasPrev)
}

func TestRecordThanks(t *testing.T) {
	f := newFixture(t)
	ind := f.create(t, "1", "2")

	plain, err := f.svc.RecordThanks(context.Background(), domain.RecordThanksRequest{SenderID: "2", RecipientID: "1", Message: " Obrigado! "})
	require.NoError(t, err)
	assert.Nil(t, plain.IndicationID)
	assert.Equal(t, "Obrigado!", plain.Message)

	scoped, err := f.svc.RecordThanks(context.Background(), domain.RecordThanksRequest{SenderID: "2", RecipientID: "1", IndicationID: ind.ID.String(), Message: "Valeu pela indicação"})
	require.NoError(t, err)
	require.NotNil(t, scoped.IndicationID)
	assert.Equal(t, ind.ID, *scoped.IndicationID)

	_, err = f.svc.RecordThanks(context.Background(), domain.RecordThanksRequest{SenderID: "2", RecipientID: "1", IndicationID: "424242", Message: "x"})
	require.ErrorIs(t, err, domain.ErrIndicationNotFound)

	_, err = f.svc.RecordThanks(context.Background(), domain.RecordThanksRequest{SenderID: "9", RecipientID: "1", Message: "x"})
	require.ErrorIs(t, err, domain.ErrSenderNotFound)

	_, err = f.svc.RecordThanks(context.Background(), domain.RecordThanksRequest{SenderID: "2", RecipientID: "9", Message: "x"})
	require.ErrorIs(t, err, domain.ErrRecipientNotFound)

	_, err = f.svc.RecordThanks(context.Background(), domain.RecordThanksRequest{SenderID: "2", RecipientID: "1"})
	require.ErrorIs(t, err, domain.ErrInvalidMessage)

	list, err := f.svc.ListThanks(context.Background(), domain.ListThanksRequest{MemberID: "1"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)

	list, err = f.svc.ListThanks(context.Background(), domain.ListThanksRequest{MemberID: "3"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}
