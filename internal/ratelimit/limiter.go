package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/config"
	"github.com/sony/gobreaker"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	BackendRedis = "redis"
	BackendLocal = "local"

	keyPrefix = "referralhub:ratelimit:"
)

type Decision struct {
	Allowed    bool
	Backend    string
	RetryAfter time.Duration
}

// Limiter throttles by key. When redis is configured it is the source of
// truth; while redis is failing the breaker routes calls to the process
// local buckets.
type Limiter struct {
	log     *zap.Logger
	clock   clock.Clock
	rate    float64
	burst   int
	bucket  *TokenBucket
	breaker *gobreaker.CircuitBreaker
	local   *LocalLimiter
}

type Options struct {
	Rate    float64
	Burst   int
	Redis   redis.Scripter
	Breaker gobreaker.Settings
}

func NewLimiter(opts Options, clk clock.Clock, log *zap.Logger) (*Limiter, error) {
	if opts.Rate <= 0 || opts.Burst <= 0 {
		return nil, errors.New("rate limit rate and burst must be positive")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	l := &Limiter{
		log:   log.Named("ratelimit"),
		clock: clk,
		rate:  opts.Rate,
		burst: opts.Burst,
		local: NewLocalLimiter(opts.Rate, opts.Burst),
	}
	if opts.Redis != nil {
		l.bucket = NewTokenBucket(opts.Redis)
		l.breaker = gobreaker.NewCircuitBreaker(breakerSettings(opts.Breaker, l.log))
	}
	return l, nil
}

func breakerSettings(st gobreaker.Settings, log *zap.Logger) gobreaker.Settings {
	if st.Name == "" {
		st.Name = "ratelimit.redis"
	}
	if st.Interval == 0 {
		st.Interval = 60 * time.Second
	}
	if st.Timeout == 0 {
		st.Timeout = 30 * time.Second
	}
	if st.ReadyToTrip == nil {
		st.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		}
	}
	if st.OnStateChange == nil {
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			log.Warn("rate limit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		}
	}
	return st
}

// Allow consumes one token for key. A redis failure is never surfaced to
// the caller; the decision then comes from the local bucket.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	key = strings.TrimSpace(key)
	if l.bucket == nil {
		return l.local.Allow(key, l.clock.Now())
	}

	res, err := l.breaker.Execute(func() (any, error) {
		return l.bucket.Allow(ctx, keyPrefix+key, l.rate, l.burst)
	})
	if err != nil {
		if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			l.log.Warn("redis rate limit check failed, using local limiter", zap.Error(err))
		}
		return l.local.Allow(key, l.clock.Now())
	}
	return res.(Decision)
}

// BreakerState reports the redis breaker state, or "disabled" without redis.
func (l *Limiter) BreakerState() string {
	if l.breaker == nil {
		return "disabled"
	}
	return l.breaker.State().String()
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Clock     clock.Clock
	Log       *zap.Logger
}

// Provide returns nil when rate limiting is disabled.
func Provide(p Params) (*Limiter, error) {
	cfg := p.Config.RateLimit
	if !cfg.Enabled {
		return nil, nil
	}

	opts := Options{Rate: cfg.Rate, Burst: cfg.Burst}
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  500 * time.Millisecond,
			ReadTimeout:  250 * time.Millisecond,
			WriteTimeout: 250 * time.Millisecond,
		})
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		opts.Redis = client
	}

	limiter, err := NewLimiter(opts, p.Clock, p.Log)
	if err != nil {
		return nil, err
	}

	pruneStop := make(chan struct{})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go limiter.pruneLoop(pruneStop, time.Minute)
			return nil
		},
		OnStop: func(context.Context) error {
			close(pruneStop)
			return nil
		},
	})
	return limiter, nil
}

func (l *Limiter) pruneLoop(stop <-chan struct{}, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := l.local.Prune(l.clock.Now()); n > 0 {
				l.log.Debug("pruned idle rate limit buckets", zap.Int("count", n))
			}
		}
	}
}
