package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// tokenBucketScript refills KEYS[1] from redis server time and takes one
// token. It returns {allowed, retry_after_ms}.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local t = redis.call("TIME")
local now = t[1] * 1000 + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local last = tonumber(state[2]) or now
tokens = math.min(burst, tokens + math.max(0, now - last) * rate / 1000)

local allowed = 0
local wait = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, wait}
`

// TokenBucket shares one bucket per key across replicas through redis.
type TokenBucket struct {
	client redis.Scripter
	script *redis.Script
}

func NewTokenBucket(client redis.Scripter) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client, script: redis.NewScript(tokenBucketScript)}
}

var errBucketUnconfigured = errors.New("ratelimit: redis bucket not configured")

func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (Decision, error) {
	switch {
	case t == nil || t.client == nil:
		return Decision{}, errBucketUnconfigured
	case key == "":
		return Decision{}, errors.New("ratelimit: empty key")
	case rate <= 0 || burst <= 0:
		return Decision{}, fmt.Errorf("ratelimit: rate %v and burst %d must be positive", rate, burst)
	}

	out, err := t.script.Run(ctx, t.client, []string{key}, rate, burst, bucketTTL(rate, burst).Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(out) != 2 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script reply %v", out)
	}
	return Decision{
		Allowed:    out[0] == 1,
		RetryAfter: time.Duration(out[1]) * time.Millisecond,
		Backend:    BackendRedis,
	}, nil
}

// bucketTTL keeps idle buckets for twice the time a full refill takes.
func bucketTTL(rate float64, burst int) time.Duration {
	return time.Duration(max(1, math.Ceil(2*float64(burst)/rate))) * time.Second
}

// refillDelay is the wait until the bucket holds one whole token.
func refillDelay(tokens, rate float64) time.Duration {
	if tokens >= 1 || rate <= 0 {
		return 0
	}
	return time.Duration((1 - tokens) / rate * float64(time.Second))
}
