package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"senha" binding:"required"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, result, "Login realizado com sucesso")
}

// Me returns the caller's user and, for members, the member profile.
func (s *Server) Me(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		AbortWithError(c, authdomain.ErrMissingCredential)
		return
	}
	if principal.Method == authdomain.MethodAdminKey {
		respondOK(c, gin.H{"tipo": principal.Role, "id": principal.Subject}, "")
		return
	}

	ctx := c.Request.Context()
	user, err := s.authsvc.GetByID(ctx, principal.UserID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	out := gin.H{"usuario": user}
	if member, err := s.memberSvc.GetByUserID(ctx, principal.UserID.String()); err == nil {
		out["membro"] = member
	}
	respondOK(c, out, "")
}
