package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	intentiondomain "github.com/smallbiznis/referralhub/internal/intention/domain"
)

type submitIntentionRequest struct {
	Name      string `json:"nome" binding:"required,min=3,max=255"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"telefone" binding:"required,min=10,max=20"`
	Company   string `json:"empresa" binding:"required,min=2,max=255"`
	RoleTitle string `json:"cargo" binding:"omitempty,max=255"`
	Area      string `json:"areaAtuacao" binding:"omitempty,max=255"`
	Message   string `json:"mensagem" binding:"omitempty,max=1000"`
}

type rejectIntentionRequest struct {
	Reason string `json:"motivo" binding:"required,min=10,max=500"`
}

type tokenURI struct {
	Token string `uri:"token" binding:"required,uuid_token"`
}

func (s *Server) SubmitIntention(c *gin.Context) {
	var req submitIntentionRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	intention, err := s.intentionSvc.Submit(c.Request.Context(), intentiondomain.SubmitRequest{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		RoleTitle: req.RoleTitle,
		Area:      req.Area,
		Message:   req.Message,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, gin.H{"id": intention.ID, "status": intention.Status},
		"Sua intenção foi registrada com sucesso! Aguarde nossa avaliação.")
}

func (s *Server) LookupIntentionByToken(c *gin.Context) {
	var uri tokenURI
	if err := c.ShouldBindUri(&uri); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	intention, err := s.intentionSvc.LookupByToken(c.Request.Context(), uri.Token)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, intention, "")
}

func (s *Server) ListIntentions(c *gin.Context) {
	var query listQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}

	res, err := s.intentionSvc.List(c.Request.Context(), intentiondomain.ListRequest{
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

func (s *Server) IntentionStats(c *gin.Context) {
	counts, err := s.intentionSvc.CountByStatus(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, counts, "")
}

func (s *Server) GetIntention(c *gin.Context) {
	intention, err := s.intentionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, intention, "")
}

func (s *Server) ApproveIntention(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		AbortWithError(c, authdomain.ErrMissingCredential)
		return
	}

	res, err := s.intentionSvc.Approve(c.Request.Context(), intentiondomain.ApproveRequest{
		ID:         c.Param("id"),
		ApproverID: principal.Subject,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, res, "Intenção aprovada com sucesso!")
}

func (s *Server) RejectIntention(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		AbortWithError(c, authdomain.ErrMissingCredential)
		return
	}

	var req rejectIntentionRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	intention, err := s.intentionSvc.Reject(c.Request.Context(), intentiondomain.RejectRequest{
		ID:         c.Param("id"),
		ApproverID: principal.Subject,
		Reason:     req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, gin.H{"id": intention.ID, "status": intention.Status}, "Intenção rejeitada")
}
