package ratelimit

import "go.uber.org/fx"

// Module provides a nil *Limiter when RATE_LIMIT_ENABLED is off; the HTTP
// middleware treats that as unlimited.
var Module = fx.Module("ratelimit",
	fx.Provide(Provide),
)
