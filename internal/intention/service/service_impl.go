package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/referralhub/internal/audit/domain"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/config"
	"github.com/smallbiznis/referralhub/internal/intention/domain"
	"github.com/smallbiznis/referralhub/internal/notification"
	"github.com/smallbiznis/referralhub/internal/observability/metrics"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"github.com/smallbiznis/referralhub/pkg/db"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invitePath = "/cadastro/"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     domain.Repository
	Notifier notification.Notifier `optional:"true"`
	AuditSvc auditdomain.Service   `optional:"true"`
	Metrics  *metrics.Metrics      `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	frontendURL string
	repo        domain.Repository
	notifier    notification.Notifier
	auditSvc    auditdomain.Service
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("intention.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		frontendURL: strings.TrimRight(p.Config.FrontendURL, "/"),
		repo:        p.Repo,
		notifier:    p.Notifier,
		auditSvc:    p.AuditSvc,
		metrics:     p.Metrics,
	}
}

// Submit stores a new PENDING intention. An email that was ever used, in any
// status, is rejected.
func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Intention, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	email, ok := normalizeEmail(req.Email)
	if !ok {
		return nil, domain.ErrInvalidEmail
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, domain.ErrInvalidPhone
	}
	company := strings.TrimSpace(req.Company)
	if company == "" {
		return nil, domain.ErrInvalidCompany
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	now := s.clock.Now().UTC()
	intention := domain.Intention{
		ID:          s.genID.Generate(),
		Name:        name,
		Email:       email,
		Phone:       phone,
		Company:     company,
		RoleTitle:   strings.TrimSpace(req.RoleTitle),
		Area:        strings.TrimSpace(req.Area),
		Message:     strings.TrimSpace(req.Message),
		Status:      domain.StatusPending,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &intention); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, apperror.Internal(err)
	}

	s.metrics.RecordIntention(ctx, "submitted")
	s.log.Info("intention submitted", zap.String("intention_id", intention.ID.String()))
	return &intention, nil
}

func (s *Service) Approve(ctx context.Context, req domain.ApproveRequest) (*domain.ApproveResult, error) {
	token := uuid.NewString()
	intention, err := s.decide(ctx, req.ID, req.ApproverID, domain.StatusApproved, nil, &token)
	if err != nil {
		return nil, err
	}

	link := s.frontendURL + invitePath + token
	if s.notifier != nil {
		err := s.notifier.SendInvitation(ctx, notification.InvitationNotice{
			Name:       intention.Name,
			Email:      intention.Email,
			InviteLink: link,
		})
		if err != nil {
			s.log.Warn("invitation notice failed", zap.String("intention_id", intention.ID.String()), zap.Error(err))
		}
	}
	s.audit(ctx, auditdomain.ActionIntentionApprove, intention, map[string]any{
		"tokenConvite": token,
	})
	s.metrics.RecordIntention(ctx, "approved")

	return &domain.ApproveResult{Intention: intention, Token: token, InviteLink: link}, nil
}

func (s *Service) Reject(ctx context.Context, req domain.RejectRequest) (*domain.Intention, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}
	intention, err := s.decide(ctx, req.ID, req.ApproverID, domain.StatusRejected, &reason, nil)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		err := s.notifier.SendRejection(ctx, notification.RejectionNotice{
			Name:   intention.Name,
			Email:  intention.Email,
			Reason: reason,
		})
		if err != nil {
			s.log.Warn("rejection notice failed", zap.String("intention_id", intention.ID.String()), zap.Error(err))
		}
	}
	s.audit(ctx, auditdomain.ActionIntentionReject, intention, map[string]any{
		"motivo": reason,
	})
	s.metrics.RecordIntention(ctx, "rejected")

	return intention, nil
}

// decide moves a PENDING intention to status. The conditional write makes a
// concurrent decision on the same row lose with ErrAlreadyDecided.
func (s *Service) decide(ctx context.Context, rawID, approverID string, status domain.Status, reason, token *string) (*domain.Intention, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	approverID = strings.TrimSpace(approverID)
	if approverID == "" {
		return nil, domain.ErrApproverRequired
	}

	current, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if current.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyDecided
	}

	now := s.clock.Now().UTC()
	applied, err := s.repo.Decide(ctx, s.db, domain.Decision{
		ID:         id,
		Status:     status,
		ApproverID: approverID,
		DecidedAt:  now,
		Reason:     reason,
		Token:      token,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !applied {
		return nil, domain.ErrAlreadyDecided
	}

	current.Status = status
	current.ApprovedBy = &approverID
	current.DecidedAt = &now
	current.RejectionReason = reason
	current.InvitationToken = token
	current.UpdatedAt = now

	s.log.Info("intention decided",
		zap.String("intention_id", id.String()),
		zap.String("status", string(status)),
		zap.String("approver_id", approverID),
	)
	return current, nil
}

func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.PublicIntention, error) {
	token = strings.TrimSpace(token)
	if _, err := uuid.Parse(token); err != nil {
		return nil, domain.ErrTokenNotFound
	}

	intention, err := s.repo.FindByToken(ctx, s.db, token)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if intention == nil {
		return nil, domain.ErrTokenNotFound
	}
	if intention.Status != domain.StatusApproved {
		return nil, domain.ErrTokenNotRedeemable
	}
	return intention.Public(), nil
}

// CountByStatus runs one count per status plus the total.
func (s *Service) CountByStatus(ctx context.Context) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	targets := []struct {
		status domain.Status
		dst    *int64
	}{
		{domain.StatusPending, &counts.Pending},
		{domain.StatusApproved, &counts.Approved},
		{domain.StatusRejected, &counts.Rejected},
		{"", &counts.Total},
	}
	for _, target := range targets {
		n, err := s.repo.CountByStatus(ctx, s.db, target.status)
		if err != nil {
			return domain.StatusCounts{}, apperror.Internal(err)
		}
		*target.dst = n
	}
	return counts, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	status := domain.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != "" && !status.Valid() {
		return domain.ListResponse{}, domain.ErrInvalidStatus
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Status:     status,
		Search:     strings.TrimSpace(req.Search),
		Pagination: page,
	})
	if err != nil {
		return domain.ListResponse{}, apperror.Internal(err)
	}
	return domain.ListResponse{
		Items:    items,
		PageInfo: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*domain.Intention, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	intention, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if intention == nil {
		return nil, domain.ErrNotFound
	}
	return intention, nil
}

func (s *Service) audit(ctx context.Context, action string, intention *domain.Intention, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	approver := ""
	if intention.ApprovedBy != nil {
		approver = *intention.ApprovedBy
	}
	metadata["email"] = intention.Email
	_ = s.auditSvc.Record(ctx, auditdomain.Entry{
		ActorType:  "admin",
		ActorID:    approver,
		Action:     action,
		TargetType: "intention",
		TargetID:   intention.ID.String(),
		Metadata:   metadata,
	})
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}
