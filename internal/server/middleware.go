package server

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	obscontext "github.com/smallbiznis/referralhub/internal/observability/context"
	"github.com/smallbiznis/referralhub/pkg/apperror"
)

const (
	HeaderAdminKey      = "X-Admin-Key"
	contextPrincipalKey = "principal"
)

var errAdminKeyMismatch = errors.New("admin key mismatch")

// AuthRequired resolves the caller from X-Admin-Key or a bearer token. The
// shared key wins when both are sent.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := s.authenticate(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextPrincipalKey, principal)
		ctx := obscontext.WithActor(c.Request.Context(), principal.Method, principal.Subject)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) authenticate(c *gin.Context) (*authdomain.Principal, error) {
	if key := strings.TrimSpace(c.GetHeader(HeaderAdminKey)); key != "" {
		if !s.adminKeyMatches(key) {
			return nil, apperror.Wrap(authdomain.ErrForbidden, errAdminKeyMismatch)
		}
		return &authdomain.Principal{
			Subject: s.cfg.AdminActorID,
			Role:    authdomain.RoleAdmin,
			Method:  authdomain.MethodAdminKey,
		}, nil
	}

	raw, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil, authdomain.ErrMissingCredential
	}
	return s.authsvc.Authenticate(c.Request.Context(), raw)
}

func (s *Server) adminKeyMatches(key string) bool {
	expected := s.cfg.AdminKey
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func principalFromContext(c *gin.Context) (*authdomain.Principal, bool) {
	v, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := v.(*authdomain.Principal)
	return principal, ok && principal != nil
}
