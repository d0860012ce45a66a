package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig() Config {
	return Config{
		AuthJWTSecret: "0123456789abcdef0123456789abcdef",
		AuthJWTTTL:    time.Hour,
		AdminKey:      "admin-secret",
		AdminActorID:  "admin-key",
		Timezone:      "America/Sao_Paulo",
		RateLimit:     RateLimitConfig{Enabled: true, Rate: 1, Burst: 5},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsShortSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.AuthJWTSecret = "short"
	cfg.AdminKey = "abc"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "ADMIN_KEY")
}

func TestValidateRejectsUnknownTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Mars/Olympus"
	require.Error(t, cfg.Validate())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetenvDurationAcceptsDays(t *testing.T) {
	t.Setenv("TEST_TTL", "7d")
	assert.Equal(t, 7*24*time.Hour, getenvDuration("TEST_TTL", time.Hour))

	t.Setenv("TEST_TTL", "90m")
	assert.Equal(t, 90*time.Minute, getenvDuration("TEST_TTL", time.Hour))

	t.Setenv("TEST_TTL", "garbage")
	assert.Equal(t, time.Hour, getenvDuration("TEST_TTL", time.Hour))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FRONTEND_URL", "https://rede.example.com/")

	cfg := Load()
	assert.Equal(t, "3001", cfg.HTTPPort)
	assert.Equal(t, "https://rede.example.com", cfg.FrontendURL)
	assert.Equal(t, 24*time.Hour, cfg.AuthJWTTTL)
}

func TestDashboardConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yml")
	require.NoError(t, os.WriteFile(path, []byte("dashboard:\n  top_limit: 10\n"), 0o600))

	holder, err := NewDashboardConfigHolder(Config{DashboardConfigFile: path}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 10, holder.Get().TopLimit)
}

func TestDashboardConfigRejectsInvalidLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yml")
	require.NoError(t, os.WriteFile(path, []byte("dashboard:\n  top_limit: 0\n"), 0o600))

	_, err := NewDashboardConfigHolder(Config{DashboardConfigFile: path}, zaptest.NewLogger(t))
	require.Error(t, err)
}

func TestNilDashboardHolderFallsBackToDefaults(t *testing.T) {
	var holder *DashboardConfigHolder
	assert.Equal(t, DefaultDashboardTopLimit, holder.Get().TopLimit)
}

func TestTrustedProxiesList(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	assert.Nil(t, getenvList("TRUSTED_PROXIES"))

	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, ,192.168.1.1 ")
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, getenvList("TRUSTED_PROXIES"))
}
