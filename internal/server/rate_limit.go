package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/referralhub/internal/observability/logger"
	"go.uber.org/zap"
)

// PublicRateLimit throttles unauthenticated endpoints per route and client IP.
func (s *Server) PublicRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		decision := s.limiter.Allow(ctx, endpoint+":"+c.ClientIP())
		if decision.Allowed {
			s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint, decision.Backend)
			c.Next()
			return
		}

		logger.FromContext(ctx).Warn("public rate limit exceeded",
			zap.String("endpoint", endpoint),
			zap.String("backend", decision.Backend),
		)
		s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, decision.Backend)

		retry := int(math.Ceil(decision.RetryAfter.Seconds()))
		if retry < 1 {
			retry = 1
		}
		c.Header("Retry-After", strconv.Itoa(retry))
		AbortWithError(c, ErrRateLimited)
	}
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return c.Request.Method + " " + endpoint
}
