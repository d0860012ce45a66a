package server

import (
	"github.com/gin-gonic/gin"
	admissiondomain "github.com/smallbiznis/referralhub/internal/admission/domain"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
)

type redeemRequest struct {
	Password  string `json:"senha" binding:"required,strongpassword"`
	RoleTitle string `json:"cargo" binding:"omitempty,min=2,max=255"`
	Area      string `json:"areaAtuacao" binding:"omitempty,min=2,max=255"`
	Phone     string `json:"telefone" binding:"omitempty,min=10,max=20"`
	LinkedIn  string `json:"linkedin" binding:"omitempty,url"`
	Bio       string `json:"bio" binding:"omitempty,max=1000"`
	PhotoURL  string `json:"fotoUrl" binding:"omitempty,url"`
}

type updateMemberRequest struct {
	FullName  *string `json:"nomeCompleto" binding:"omitempty,min=3,max=255"`
	Phone     *string `json:"telefone" binding:"omitempty,min=10,max=20"`
	Company   *string `json:"empresa" binding:"omitempty,min=2,max=255"`
	RoleTitle *string `json:"cargo" binding:"omitempty,max=255"`
	Area      *string `json:"areaAtuacao" binding:"omitempty,max=255"`
	LinkedIn  *string `json:"linkedin" binding:"omitempty,max=512"`
	Bio       *string `json:"bio" binding:"omitempty,max=1000"`
	PhotoURL  *string `json:"fotoUrl" binding:"omitempty,max=512"`
	Status    *string `json:"status"`
}

// RedeemInvitation is the public completion of an approved intention.
func (s *Server) RedeemInvitation(c *gin.Context) {
	var uri tokenURI
	if err := c.ShouldBindUri(&uri); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}
	var req redeemRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	res, err := s.admissionSvc.Redeem(c.Request.Context(), admissiondomain.RedeemRequest{
		Token:     uri.Token,
		Password:  req.Password,
		Phone:     req.Phone,
		RoleTitle: req.RoleTitle,
		Area:      req.Area,
		LinkedIn:  req.LinkedIn,
		Bio:       req.Bio,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, res, "Cadastro realizado com sucesso! Você já pode fazer login.")
}

func (s *Server) ListMembers(c *gin.Context) {
	var query listQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	res, err := s.memberSvc.List(c.Request.Context(), memberdomain.ListRequest{
		Status:     query.Status,
		Search:     query.Search,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, res.Items, res.PageInfo)
}

func (s *Server) MemberStats(c *gin.Context) {
	counts, err := s.memberSvc.CountByStatus(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, counts, "")
}

func (s *Server) GetMember(c *gin.Context) {
	member, err := s.memberSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, member, "")
}

func (s *Server) UpdateMember(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		AbortWithError(c, authdomain.ErrMissingCredential)
		return
	}
	var req updateMemberRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	member, err := s.memberSvc.Update(c.Request.Context(), memberdomain.UpdateRequest{
		ID:        c.Param("id"),
		ActorID:   principal.Subject,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Company:   req.Company,
		RoleTitle: req.RoleTitle,
		Area:      req.Area,
		LinkedIn:  req.LinkedIn,
		Bio:       req.Bio,
		PhotoURL:  req.PhotoURL,
		Status:    req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, member, "Membro atualizado")
}
