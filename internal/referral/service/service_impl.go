package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/referralhub/internal/audit/domain"
	"github.com/smallbiznis/referralhub/internal/clock"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	"github.com/smallbiznis/referralhub/internal/observability/metrics"
	"github.com/smallbiznis/referralhub/internal/referral/domain"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	MemberRepo memberdomain.Repository
	AuditSvc   auditdomain.Service `optional:"true"`
	Metrics    *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	memberRepo memberdomain.Repository
	auditSvc   auditdomain.Service
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("referral.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		memberRepo: p.MemberRepo,
		auditSvc:   p.AuditSvc,
		metrics:    p.Metrics,
	}
}

// CreateIndication opens a referral between two existing members. A member
// may refer themselves.
func (s *Service) CreateIndication(ctx context.Context, req domain.CreateIndicationRequest) (*domain.Indication, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}
	client := strings.TrimSpace(req.ClientName)
	if client == "" {
		return nil, domain.ErrInvalidClient
	}
	if req.EstimatedValue < 0 {
		return nil, domain.ErrInvalidValue
	}

	referrerID, err := s.requireMember(ctx, req.ReferrerID, domain.ErrReferrerNotFound)
	if err != nil {
		return nil, err
	}
	referredID, err := s.requireMember(ctx, req.ReferredID, domain.ErrReferredNotFound)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	indication := domain.Indication{
		ID:             s.genID.Generate(),
		ReferrerID:     referrerID,
		ReferredID:     referredID,
		Title:          title,
		Description:    description,
		ClientName:     client,
		ClientContact:  strings.TrimSpace(req.ClientContact),
		EstimatedValue: req.EstimatedValue,
		Status:         domain.StatusOpen,
		ReferredAt:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.InsertIndication(ctx, s.db, &indication); err != nil {
		return nil, apperror.Internal(err)
	}

	s.metrics.RecordIndication(ctx, "created", string(indication.Status))
	return &indication, nil
}

// Transition sets any status from any status. Value accounting follows the
// target: CLOSED carries a closed value and date, LOST only a date, and the
// open statuses neither.
func (s *Service) Transition(ctx context.Context, req domain.TransitionRequest) (*domain.Indication, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	status := domain.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	now := s.clock.Now().UTC()
	change := domain.StatusChange{Status: status, UpdatedAt: now}
	switch status {
	case domain.StatusClosed:
		if req.ClosedValue == nil {
			return nil, domain.ErrClosedValueRequired
		}
		if *req.ClosedValue < 0 {
			return nil, domain.ErrInvalidValue
		}
		value := *req.ClosedValue
		change.ClosedValue = &value
		change.ClosedAt = closedAt(req.ClosedAt, now)
	case domain.StatusLost:
		change.ClosedAt = closedAt(req.ClosedAt, now)
	}

	current, err := s.repo.FindIndication(ctx, s.db, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if current == nil {
		return nil, domain.ErrIndicationNotFound
	}

	updated, err := s.repo.UpdateStatus(ctx, s.db, id, change)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !updated {
		return nil, domain.ErrIndicationNotFound
	}

	previous := current.Status
	current.Status = change.Status
	current.ClosedValue = change.ClosedValue
	current.ClosedAt = change.ClosedAt
	current.UpdatedAt = now

	s.metrics.RecordIndication(ctx, "transitioned", string(status))
	if s.auditSvc != nil {
		_ = s.auditSvc.Record(ctx, auditdomain.Entry{
			ActorType:  req.ActorType,
			ActorID:    req.ActorID,
			Action:     auditdomain.ActionIndicationStatus,
			TargetType: "indication",
			TargetID:   id.String(),
			Metadata: map[string]any{
				"from": string(previous),
				"to":   string(status),
			},
		})
	}
	return current, nil
}

func (s *Service) GetIndication(ctx context.Context, rawID string) (*domain.Indication, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	indication, err := s.repo.FindIndication(ctx, s.db, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if indication == nil {
		return nil, domain.ErrIndicationNotFound
	}
	return indication, nil
}

func (s *Service) ListIndications(ctx context.Context, req domain.ListIndicationsRequest) (domain.ListIndicationsResponse, error) {
	status := domain.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != "" && !status.Valid() {
		return domain.ListIndicationsResponse{}, domain.ErrInvalidStatus
	}
	memberID, err := optionalID(req.MemberID)
	if err != nil {
		return domain.ListIndicationsResponse{}, err
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.ListIndications(ctx, s.db, domain.IndicationFilter{
		Status:     status,
		MemberID:   memberID,
		Pagination: page,
	})
	if err != nil {
		return domain.ListIndicationsResponse{}, apperror.Internal(err)
	}
	return domain.ListIndicationsResponse{Items: items, PageInfo: pagination.BuildPageInfo(page, total)}, nil
}

// RecordThanks appends an acknowledgment. A referenced indication must exist.
func (s *Service) RecordThanks(ctx context.Context, req domain.RecordThanksRequest) (*domain.Thanks, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.ErrInvalidMessage
	}
	senderID, err := s.requireMember(ctx, req.SenderID, domain.ErrSenderNotFound)
	if err != nil {
		return nil, err
	}
	recipientID, err := s.requireMember(ctx, req.RecipientID, domain.ErrRecipientNotFound)
	if err != nil {
		return nil, err
	}

	var indicationID *snowflake.ID
	if strings.TrimSpace(req.IndicationID) != "" {
		id, err := parseID(req.IndicationID)
		if err != nil {
			return nil, err
		}
		indication, err := s.repo.FindIndication(ctx, s.db, id)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if indication == nil {
			return nil, domain.ErrIndicationNotFound
		}
		indicationID = &id
	}

	now := s.clock.Now().UTC()
	thanks := domain.Thanks{
		ID:           s.genID.Generate(),
		SenderID:     senderID,
		RecipientID:  recipientID,
		IndicationID: indicationID,
		Message:      message,
		ThankedAt:    now,
		CreatedAt:    now,
	}
	if err := s.repo.InsertThanks(ctx, s.db, &thanks); err != nil {
		return nil, apperror.Internal(err)
	}

	s.metrics.RecordThanks(ctx, indicationID != nil)
	return &thanks, nil
}

func (s *Service) ListThanks(ctx context.Context, req domain.ListThanksRequest) (domain.ListThanksResponse, error) {
	memberID, err := optionalID(req.MemberID)
	if err != nil {
		return domain.ListThanksResponse{}, err
	}
	page := req.Pagination.Normalize()
	items, total, err := s.repo.ListThanks(ctx, s.db, domain.ThanksFilter{MemberID: memberID, Pagination: page})
	if err != nil {
		return domain.ListThanksResponse{}, apperror.Internal(err)
	}
	return domain.ListThanksResponse{Items: items, PageInfo: pagination.BuildPageInfo(page, total)}, nil
}

func (s *Service) requireMember(ctx context.Context, raw string, missing error) (snowflake.ID, error) {
	id, err := parseID(raw)
	if err != nil {
		return 0, err
	}
	member, err := s.memberRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	if member == nil {
		return 0, missing
	}
	return id, nil
}

func closedAt(requested *time.Time, now time.Time) *time.Time {
	if requested != nil && !requested.IsZero() {
		t := requested.UTC()
		return &t
	}
	return &now
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func optionalID(raw string) (snowflake.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return parseID(raw)
}
