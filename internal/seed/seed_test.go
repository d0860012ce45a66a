package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	"github.com/smallbiznis/referralhub/internal/auth/password"
	authrepo "github.com/smallbiznis/referralhub/internal/auth/repository"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/config"
	"github.com/smallbiznis/referralhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var cheapParams = password.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func newSeeder(t *testing.T) (*Seeder, *gorm.DB, password.Hasher) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	hasher := password.NewHasher(cheapParams)
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	return NewSeeder(conn, zap.NewNop(), node, clk, hasher, authrepo.Provide()), conn, hasher
}

func TestEnsureAdminCreatesOnce(t *testing.T) {
	s, conn, hasher := newSeeder(t)
	cfg := config.BootstrapConfig{AdminEmail: " Admin@Rede.com ", AdminPassword: "Segura123", AdminName: "Root"}

	user, created, err := s.EnsureAdmin(context.Background(), cfg)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, "admin@rede.com", user.Email)
	assert.Equal(t, authdomain.RoleAdmin, user.Role)
	assert.True(t, user.Active)
	assert.True(t, hasher.Verify("Segura123", user.PasswordHash))

	again, created, err := s.EnsureAdmin(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	require.NoError(t, conn.Model(&authdomain.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureAdminSkipsWithoutEmail(t *testing.T) {
	s, _, _ := newSeeder(t)

	user, created, err := s.EnsureAdmin(context.Background(), config.BootstrapConfig{})
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, created)
}

func TestEnsureAdminRejectsWeakPassword(t *testing.T) {
	s, conn, _ := newSeeder(t)

	_, _, err := s.EnsureAdmin(context.Background(), config.BootstrapConfig{AdminEmail: "admin@rede.com", AdminPassword: "admin"})
	require.ErrorIs(t, err, ErrWeakBootstrapPassword)

	var count int64
	require.NoError(t, conn.Model(&authdomain.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
