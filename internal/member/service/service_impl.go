package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/referralhub/internal/audit/domain"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/member/domain"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("member.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*domain.Member, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if member == nil {
		return nil, domain.ErrNotFound
	}
	return member, nil
}

func (s *Service) GetByUserID(ctx context.Context, rawUserID string) (*domain.Member, error) {
	userID, err := parseID(rawUserID)
	if err != nil {
		return nil, err
	}
	member, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if member == nil {
		return nil, domain.ErrNotFound
	}
	return member, nil
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

func (s *Service) CountByStatus(ctx context.Context) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	targets := []struct {
		status domain.Status
		dst    *int64
	}{
		{domain.StatusActive, &counts.Active},
		{domain.StatusInactive, &counts.Inactive},
		{domain.StatusPending, &counts.Pending},
		{domain.StatusSuspended, &counts.Suspended},
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

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Member, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	fields, err := updateFields(req)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrEmptyUpdate
	}
	fields["updated_at"] = s.clock.Now().UTC()

	updated, err := s.repo.Update(ctx, s.db, id, fields)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !updated {
		return nil, domain.ErrNotFound
	}

	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if member == nil {
		return nil, domain.ErrNotFound
	}

	if s.auditSvc != nil {
		changed := make([]string, 0, len(fields))
		for column := range fields {
			if column != "updated_at" {
				changed = append(changed, column)
			}
		}
		_ = s.auditSvc.Record(ctx, auditdomain.Entry{
			ActorType:  "admin",
			ActorID:    req.ActorID,
			Action:     auditdomain.ActionMemberUpdate,
			TargetType: "member",
			TargetID:   member.ID.String(),
			Metadata:   map[string]any{"fields": changed, "status": string(member.Status)},
		})
	}
	return member, nil
}

func updateFields(req domain.UpdateRequest) (map[string]any, error) {
	fields := map[string]any{}

	required := []struct {
		column string
		value  *string
		err    error
	}{
		{"full_name", req.FullName, domain.ErrInvalidName},
		{"phone", req.Phone, domain.ErrInvalidPhone},
		{"company", req.Company, domain.ErrInvalidCompany},
	}
	for _, f := range required {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return nil, f.err
		}
		fields[f.column] = v
	}

	optional := []struct {
		column string
		value  *string
	}{
		{"role_title", req.RoleTitle},
		{"area", req.Area},
		{"linkedin", req.LinkedIn},
		{"bio", req.Bio},
		{"photo_url", req.PhotoURL},
	}
	for _, f := range optional {
		if f.value != nil {
			fields[f.column] = strings.TrimSpace(*f.value)
		}
	}

	if req.Status != nil {
		status := domain.Status(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		fields["status"] = status
	}
	return fields, nil
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
