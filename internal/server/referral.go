package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	referraldomain "github.com/smallbiznis/referralhub/internal/referral/domain"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
)

type createIndicationRequest struct {
	ReferrerID     string  `json:"membroIndicadorId"`
	ReferredID     string  `json:"membroIndicadoId" binding:"required"`
	Title          string  `json:"titulo" binding:"required,min=3,max=255"`
	Description    string  `json:"descricao" binding:"required,min=10,max=2000"`
	ClientName     string  `json:"nomeCliente" binding:"required,min=2,max=255"`
	ClientContact  string  `json:"contatoCliente" binding:"omitempty,max=255"`
	EstimatedValue float64 `json:"valorEstimado" binding:"gte=0"`
}

type transitionIndicationRequest struct {
	Status      string   `json:"status" binding:"required,oneof=OPEN IN_PROGRESS CLOSED LOST"`
	ClosedValue *float64 `json:"valorFechado" binding:"omitempty,gte=0"`
	ClosedAt    string   `json:"dataFechamento"`
}

type recordThanksRequest struct {
	SenderID     string `json:"remetenteId"`
	RecipientID  string `json:"destinatarioId" binding:"required"`
	IndicationID string `json:"indicacaoId"`
	Message      string `json:"mensagem" binding:"required,min=3,max=1000"`
}

type indicationQuery struct {
	pagination.Pagination
	Status   string `form:"status"`
	MemberID string `form:"membroId"`
}

type thanksQuery struct {
	pagination.Pagination
	MemberID string `form:"membroId"`
}

// actingMember returns nil for administrators. Any other caller must own an
// active member profile.
func (s *Server) actingMember(c *gin.Context) (*authdomain.Principal, *memberdomain.Member, error) {
	principal, ok := principalFromContext(c)
	if !ok {
		return nil, nil, authdomain.ErrMissingCredential
	}
	if principal.IsAdmin() {
		return principal, nil, nil
	}

	member, err := s.memberSvc.GetByUserID(c.Request.Context(), principal.UserID.String())
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, nil, authdomain.ErrForbidden
		}
		return nil, nil, err
	}
	if member.Status != memberdomain.StatusActive {
		return nil, nil, authdomain.ErrForbidden
	}
	return principal, member, nil
}

// selfOrRequested forces members onto their own id. Administrators act for
// whichever member they name.
func selfOrRequested(member *memberdomain.Member, requested string) (string, error) {
	if member == nil {
		return requested, nil
	}
	own := member.ID.String()
	if requested != "" && requested != own {
		return "", authdomain.ErrForbidden
	}
	return own, nil
}

func (s *Server) CreateIndication(c *gin.Context) {
	_, member, err := s.actingMember(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var req createIndicationRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	referrerID, err := selfOrRequested(member, req.ReferrerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if referrerID == "" {
		AbortWithError(c, newValidationError("membroIndicadorId", "Membro indicador é obrigatório"))
		return
	}

	indication, err := s.referralSvc.CreateIndication(c.Request.Context(), referraldomain.CreateIndicationRequest{
		ReferrerID:     referrerID,
		ReferredID:     req.ReferredID,
		Title:          req.Title,
		Description:    req.Description,
		ClientName:     req.ClientName,
		ClientContact:  req.ClientContact,
		EstimatedValue: req.EstimatedValue,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, indication, "Indicação registrada com sucesso")
}

func (s *Server) ListIndications(c *gin.Context) {
	_, member, err := s.actingMember(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var query indicationQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}
	memberID, err := selfOrRequested(member, query.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	res, err := s.referralSvc.ListIndications(c.Request.Context(), referraldomain.ListIndicationsRequest{
		Status:     query.Status,
		MemberID:   memberID,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, res.Items, res.PageInfo)
}

func (s *Server) GetIndication(c *gin.Context) {
	_, member, err := s.actingMember(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	indication, err := s.referralSvc.GetIndication(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if member != nil && !indication.Involves(member.ID) {
		AbortWithError(c, authdomain.ErrForbidden)
		return
	}
	respondOK(c, indication, "")
}

func (s *Server) TransitionIndication(c *gin.Context) {
	principal, member, err := s.actingMember(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var req transitionIndicationRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	closedAt, err := parseOptionalTime(req.ClosedAt)
	if err != nil {
		AbortWithError(c, newValidationError("dataFechamento", "Data inválida"))
		return
	}

	ctx := c.Request.Context()
	if member != nil {
		current, err := s.referralSvc.GetIndication(ctx, c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !current.Involves(member.ID) {
			AbortWithError(c, authdomain.ErrForbidden)
			return
		}
	}

	indication, err := s.referralSvc.Transition(ctx, referraldomain.TransitionRequest{
		ID:          c.Param("id"),
		Status:      req.Status,
		ClosedValue: req.ClosedValue,
		ClosedAt:    closedAt,
		ActorType:   strings.ToLower(string(principal.Role)),
		ActorID:     principal.Subject,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, indication, "Status da indicação atualizado")
}

func (s *Server) RecordThanks(c *gin.Context) {
	_, member, err := s.actingMember(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var req recordThanksRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	senderID, err := selfOrRequested(member, req.SenderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if senderID == "" {
		AbortWithError(c, newValidationError("remetenteId", "Remetente é obrigatório"))
		return
	}

	thanks, err := s.referralSvc.RecordThanks(c.Request.Context(), referraldomain.RecordThanksRequest{
		SenderID:     senderID,
		RecipientID:  req.RecipientID,
		IndicationID: req.IndicationID,
		Message:      req.Message,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, thanks, "Obrigado registrado com sucesso")
}

func (s *Server) ListThanks(c *gin.Context) {
	_, member, err := s.actingMember(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var query thanksQuery
	if err := bindQuery(c, &query); err != nil {
		AbortWithError(c, err)
		return
	}
	memberID, err := selfOrRequested(member, query.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	res, err := s.referralSvc.ListThanks(c.Request.Context(), referraldomain.ListThanksRequest{
		MemberID:   memberID,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, res.Items, res.PageInfo)
}
