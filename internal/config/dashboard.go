package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	DefaultDashboardTopLimit = 5
	maxDashboardTopLimit     = 50
)

// DashboardConfig holds the tunables of the metrics aggregator that operators
// may change without a restart.
type DashboardConfig struct {
	TopLimit int `mapstructure:"top_limit"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{TopLimit: DefaultDashboardTopLimit}
}

type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

// NewStaticDashboardConfigHolder returns a holder that never reloads.
func NewStaticDashboardConfigHolder(cfg DashboardConfig) *DashboardConfigHolder {
	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDashboardConfigHolder(cfg Config, log *zap.Logger) (*DashboardConfigHolder, error) {
	log = log.Named("dashboard.config")
	v := viper.New()

	if cfg.DashboardConfigFile != "" {
		v.SetConfigFile(cfg.DashboardConfigFile)
	} else {
		v.SetConfigName("dashboard")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/referralhub")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("REFERRALHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("dashboard.top_limit", DefaultDashboardTopLimit)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		// An explicitly configured file must exist. Without one the defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if cfg.DashboardConfigFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	var current DashboardConfig
	if err := v.UnmarshalKey("dashboard", &current); err != nil {
		return nil, err
	}
	if err := validateDashboardConfig(current); err != nil {
		return nil, err
	}

	holder := NewStaticDashboardConfigHolder(current)
	if !watch {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DashboardConfig
		if err := v.UnmarshalKey("dashboard", &updated); err != nil {
			log.Warn("dashboard config reload failed", zap.Error(err))
			return
		}
		if err := validateDashboardConfig(updated); err != nil {
			log.Warn("invalid dashboard config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("dashboard config reloaded", zap.String("file", e.Name), zap.Int("top_limit", updated.TopLimit))
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	if h == nil {
		return DefaultDashboardConfig()
	}
	cfg, ok := h.current.Load().(DashboardConfig)
	if !ok {
		return DefaultDashboardConfig()
	}
	return cfg
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if cfg.TopLimit <= 0 {
		return errors.New("dashboard.top_limit must be positive")
	}
	if cfg.TopLimit > maxDashboardTopLimit {
		return errors.New("dashboard.top_limit is too large")
	}
	return nil
}
