package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
)

// authorize checks the casbin policy for the authenticated caller. It must
// run after AuthRequired.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFromContext(c)
		if !ok {
			AbortWithError(c, authdomain.ErrMissingCredential)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), principal, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
