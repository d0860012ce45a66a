package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/internal/auth/domain"
	"github.com/smallbiznis/referralhub/internal/auth/password"
	"github.com/smallbiznis/referralhub/internal/auth/repository"
	"github.com/smallbiznis/referralhub/internal/auth/token"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testHashParams = password.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

type fixture struct {
	db     *gorm.DB
	svc    domain.Service
	hasher password.Hasher
	issuer *token.Issuer
	clock  *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	f := &fixture{
		db:     conn,
		hasher: password.NewHasher(testHashParams),
		issuer: token.NewIssuer("0123456789abcdef0123456789abcdef", time.Hour, "referralhub", clk),
		clock:  clk,
	}
	f.svc = New(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		Hasher: f.hasher,
		Issuer: f.issuer,
	})
	return f
}

func (f *fixture) seedUser(t *testing.T, id int64, email, pass string, role domain.Role, active bool) *domain.User {
	t.Helper()
	hash, err := f.hasher.Hash(pass)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := f.clock.Now()
	u := &domain.User{ID: snowflake.ID(id), Email: email, PasswordHash: hash, Name: "Ana", Role: role, Active: active, CreatedAt: now, UpdatedAt: now}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 1, "ana@example.com", "Senha123", domain.RoleAdmin, true)

	res, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "  ANA@example.com ", Password: "Senha123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" || res.User.Email != "ana@example.com" {
		t.Fatalf("unexpected result %+v", res)
	}

	p, err := f.svc.Authenticate(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.Role != domain.RoleAdmin || p.Subject != "1" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 1, "ana@example.com", "Senha123", domain.RoleMember, true)
	f.seedUser(t, 2, "off@example.com", "Senha123", domain.RoleMember, false)

	cases := []domain.LoginRequest{
		{Email: "ana@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "Senha123"},
		{Email: "off@example.com", Password: "Senha123"},
		{Email: "", Password: ""},
	}
	for _, req := range cases {
		_, err := f.svc.Login(context.Background(), req)
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected invalid credentials, got %v", req.Email, err)
		}
	}
}

func TestAuthenticateRejectsDeactivatedUser(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, 1, "ana@example.com", "Senha123", domain.RoleMember, true)

	raw, _, err := f.issuer.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := f.db.Model(&domain.User{}).Where("id = ?", u.ID).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = f.svc.Authenticate(context.Background(), raw)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestAuthenticateUsesCurrentRole(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, 1, "ana@example.com", "Senha123", domain.RoleAdmin, true)

	raw, _, _ := f.issuer.Issue(u)
	f.db.Model(&domain.User{}).Where("id = ?", u.ID).Update("role", domain.RoleMember)

	p, err := f.svc.Authenticate(context.Background(), raw)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.IsAdmin() {
		t.Fatalf("expected demoted role, got %s", p.Role)
	}
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 7, "ana@example.com", "Senha123", domain.RoleMember, true)

	if _, err := f.svc.GetByID(context.Background(), "7"); err != nil {
		t.Fatalf("expected user, got %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), "8"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), "abc"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
}
