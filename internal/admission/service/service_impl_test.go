package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/referralhub/internal/admission/domain"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	"github.com/smallbiznis/referralhub/internal/auth/password"
	authrepo "github.com/smallbiznis/referralhub/internal/auth/repository"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/config"
	intentiondomain "github.com/smallbiznis/referralhub/internal/intention/domain"
	intentionrepo "github.com/smallbiznis/referralhub/internal/intention/repository"
	intentionsvc "github.com/smallbiznis/referralhub/internal/intention/service"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	memberrepo "github.com/smallbiznis/referralhub/internal/member/repository"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"github.com/smallbiznis/referralhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	intentions intentiondomain.Service
	svc        domain.Service
	hasher     password.Hasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}, &memberdomain.Member{}, &intentiondomain.Intention{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	hasher := password.NewHasher(password.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8})

	iRepo := intentionrepo.Provide()
	return &fixture{
		db: conn,
		intentions: intentionsvc.New(intentionsvc.Params{
			DB:     conn,
			Log:    zap.NewNop(),
			GenID:  node,
			Clock:  clk,
			Config: config.Config{FrontendURL: "http://localhost:3000"},
			Repo:   iRepo,
		}),
		svc: New(Params{
			DB:            conn,
			Log:           zap.NewNop(),
			GenID:         node,
			Clock:         clk,
			Hasher:        hasher,
			IntentionRepo: iRepo,
			UserRepo:      authrepo.Provide(),
			MemberRepo:    memberrepo.Provide(),
		}),
		hasher: hasher,
	}
}

func (f *fixture) approved(t *testing.T, name, email string) (*intentiondomain.Intention, string) {
	t.Helper()
	in, err := f.intentions.Submit(context.Background(), intentiondomain.SubmitRequest{
		Name:      name,
		Email:     email,
		Phone:     "11988887777",
		Company:   "Acme",
		RoleTitle: "CEO",
		Area:      "Consultoria",
	})
	require.NoError(t, err)
	res, err := f.intentions.Approve(context.Background(), intentiondomain.ApproveRequest{ID: in.ID.String(), ApproverID: "admin1"})
	require.NoError(t, err)
	return in, res.Token
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestRedeemCreatesUserAndMember(t *testing.T) {
	f := newFixture(t)
	in, token := f.approved(t, "Ana", "ana@x.com")

	res, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		Token:    token,
		Password: "Strong1pass",
		Phone:    " 11911112222 ",
		Bio:      "Consultora",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@x.com", res.User.Email)
	assert.Equal(t, authdomain.RoleMember, res.User.Role)
	assert.True(t, res.User.Active)
	assert.True(t, f.hasher.Verify("Strong1pass", res.User.PasswordHash))

	assert.Equal(t, res.User.ID, res.Member.UserID)
	assert.Equal(t, memberdomain.StatusActive, res.Member.Status)
	assert.Equal(t, "11911112222", res.Member.Phone)
	assert.Equal(t, "CEO", res.Member.RoleTitle, "falls back to the intention")
	assert.Equal(t, "Consultoria", res.Member.Area)
	assert.Equal(t, "Consultora", res.Member.Bio)

	var stored intentiondomain.Intention
	require.NoError(t, f.db.First(&stored, "id = ?", in.ID).Error)
	assert.Nil(t, stored.InvitationToken)
	assert.Equal(t, intentiondomain.StatusApproved, stored.Status)
}

func TestEndToEndSingleUseToken(t *testing.T) {
	f := newFixture(t)
	in, token := f.approved(t, "Ana", "ana@x.com")
	assert.Equal(t, intentiondomain.StatusPending, in.Status)

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{Token: token, Password: "Strong1pass"})
	require.NoError(t, err)

	_, err = f.svc.Redeem(context.Background(), domain.RedeemRequest{Token: token, Password: "Strong1pass"})
	require.ErrorIs(t, err, intentiondomain.ErrTokenNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.intentions.LookupByToken(context.Background(), token)
	require.ErrorIs(t, err, intentiondomain.ErrTokenNotFound)

	assert.EqualValues(t, 1, f.count(t, &authdomain.User{}))
	assert.EqualValues(t, 1, f.count(t, &memberdomain.Member{}))
}

func TestConcurrentRedeemAdmitsOnce(t *testing.T) {
	f := newFixture(t)
	in, token := f.approved(t, "Ana", "ana@x.com")

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Redeem(context.Background(), domain.RedeemRequest{Token: token, Password: "Strong1pass"})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		kind := apperror.KindOf(err)
		if kind != apperror.KindNotFound && kind != apperror.KindInvalidState && kind != apperror.KindConflict {
			t.Fatalf("unexpected error %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.EqualValues(t, 1, f.count(t, &authdomain.User{}))
	assert.EqualValues(t, 1, f.count(t, &memberdomain.Member{}))

	var stored intentiondomain.Intention
	require.NoError(t, f.db.First(&stored, "id = ?", in.ID).Error)
	assert.Nil(t, stored.InvitationToken)
}

func TestRedeemPreconditions(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{Token: "nope", Password: "Strong1pass"})
	require.ErrorIs(t, err, intentiondomain.ErrTokenNotFound)

	_, err = f.svc.Redeem(context.Background(), domain.RedeemRequest{Token: uuid.NewString(), Password: "Strong1pass"})
	require.ErrorIs(t, err, intentiondomain.ErrTokenNotFound)

	_, token := f.approved(t, "Ana", "ana@x.com")
	_, err = f.svc.Redeem(context.Background(), domain.RedeemRequest{Token: token, Password: "fraca"})
	require.ErrorIs(t, err, domain.ErrWeakPassword)
	assert.EqualValues(t, 0, f.count(t, &authdomain.User{}))
}

func TestRedeemRejectsNonApprovedIntention(t *testing.T) {
	f := newFixture(t)
	in, token := f.approved(t, "Ana", "ana@x.com")
	require.NoError(t, f.db.Model(&intentiondomain.Intention{}).Where("id = ?", in.ID).Update("status", intentiondomain.StatusRejected).Error)

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{Token: token, Password: "Strong1pass"})
	require.ErrorIs(t, err, intentiondomain.ErrTokenNotRedeemable)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
}

func TestRedeemConflictsWithExistingUser(t *testing.T) {
	f := newFixture(t)
	in, token := f.approved(t, "Ana", "ana@x.com")
	require.NoError(t, f.db.Create(&authdomain.User{
		ID:           99,
		Email:        "ana@x.com",
		PasswordHash: "x",
		Name:         "Ana Admin",
		Role:         authdomain.RoleAdmin,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}).Error)

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{Token: token, Password: "Strong1pass"})
	require.ErrorIs(t, err, domain.ErrEmailClaimed)

	var stored intentiondomain.Intention
	require.NoError(t, f.db.First(&stored, "id = ?", in.ID).Error)
	require.NotNil(t, stored.InvitationToken, "token survives a failed redemption")
}

func TestRedeemRollsBackOnMemberFailure(t *testing.T) {
	f := newFixture(t)
	in, token := f.approved(t, "Ana", "ana@x.com")
	require.NoError(t, f.db.Migrator().DropTable(&memberdomain.Member{}))

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{Token: token, Password: "Strong1pass"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))

	assert.EqualValues(t, 0, f.count(t, &authdomain.User{}))
	var stored intentiondomain.Intention
	require.NoError(t, f.db.First(&stored, "id = ?", in.ID).Error)
	require.NotNil(t, stored.InvitationToken)
	assert.Equal(t, token, *stored.InvitationToken)
}
