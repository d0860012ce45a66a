package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/referralhub/internal/admission/domain"
	auditdomain "github.com/smallbiznis/referralhub/internal/audit/domain"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	"github.com/smallbiznis/referralhub/internal/auth/password"
	"github.com/smallbiznis/referralhub/internal/clock"
	intentiondomain "github.com/smallbiznis/referralhub/internal/intention/domain"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	"github.com/smallbiznis/referralhub/internal/observability/metrics"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"github.com/smallbiznis/referralhub/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Hasher        password.Hasher
	IntentionRepo intentiondomain.Repository
	UserRepo      authdomain.Repository
	MemberRepo    memberdomain.Repository
	AuditSvc      auditdomain.Service `optional:"true"`
	Metrics       *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	hasher        password.Hasher
	intentionRepo intentiondomain.Repository
	userRepo      authdomain.Repository
	memberRepo    memberdomain.Repository
	auditSvc      auditdomain.Service
	metrics       *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("admission.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		hasher:        p.Hasher,
		intentionRepo: p.IntentionRepo,
		userRepo:      p.UserRepo,
		memberRepo:    p.MemberRepo,
		auditSvc:      p.AuditSvc,
		metrics:       p.Metrics,
	}
}

// Redeem turns an approved intention into a user and a member. The token is
// consumed in the same transaction that creates the account, so a token can
// produce at most one member even under concurrent calls.
func (s *Service) Redeem(ctx context.Context, req domain.RedeemRequest) (result *domain.Result, err error) {
	defer func() {
		s.metrics.RecordAdmission(ctx, outcome(err))
	}()

	token := strings.TrimSpace(req.Token)
	if _, parseErr := uuid.Parse(token); parseErr != nil {
		return nil, intentiondomain.ErrTokenNotFound
	}

	intention, err := s.intentionRepo.FindByToken(ctx, s.db, token)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if intention == nil {
		return nil, intentiondomain.ErrTokenNotFound
	}
	if intention.Status != intentiondomain.StatusApproved {
		return nil, intentiondomain.ErrTokenNotRedeemable
	}

	existing, err := s.userRepo.FindByEmail(ctx, s.db, intention.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, domain.ErrEmailClaimed
	}

	if !password.ValidateStrength(req.Password) {
		return nil, domain.ErrWeakPassword
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := s.clock.Now().UTC()
	user := &authdomain.User{
		ID:           s.genID.Generate(),
		Email:        intention.Email,
		PasswordHash: hash,
		Name:         intention.Name,
		Role:         authdomain.RoleMember,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	member := &memberdomain.Member{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		FullName:  intention.Name,
		Email:     intention.Email,
		Phone:     fallback(req.Phone, intention.Phone),
		Company:   intention.Company,
		RoleTitle: fallback(req.RoleTitle, intention.RoleTitle),
		Area:      fallback(req.Area, intention.Area),
		LinkedIn:  strings.TrimSpace(req.LinkedIn),
		Bio:       strings.TrimSpace(req.Bio),
		PhotoURL:  strings.TrimSpace(req.PhotoURL),
		Status:    memberdomain.StatusActive,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.admit(ctx, intention.ID, token, user, member, now); err != nil {
		return nil, err
	}

	s.log.Info("member admitted",
		zap.String("intention_id", intention.ID.String()),
		zap.String("member_id", member.ID.String()),
	)
	if s.auditSvc != nil {
		_ = s.auditSvc.Record(ctx, auditdomain.Entry{
			ActorType:  "user",
			ActorID:    user.ID.String(),
			Action:     auditdomain.ActionMemberAdmit,
			TargetType: "member",
			TargetID:   member.ID.String(),
			Metadata:   map[string]any{"intention_id": intention.ID.String()},
		})
	}
	return &domain.Result{User: user, Member: member}, nil
}

// admit runs the three writes on one transaction handle. Any early return
// rolls the handle back.
func (s *Service) admit(ctx context.Context, intentionID snowflake.ID, token string, user *authdomain.User, member *memberdomain.Member, now time.Time) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperror.Internal(tx.Error)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	cleared, err := s.intentionRepo.ClearToken(ctx, tx, intentionID, token, now)
	if err != nil {
		return apperror.Internal(err)
	}
	if !cleared {
		return intentiondomain.ErrTokenNotFound
	}

	if err := s.userRepo.Insert(ctx, tx, user); err != nil {
		if db.IsDuplicateKey(err) {
			s.log.Warn("admission email already claimed", zap.String("constraint", db.DuplicateConstraint(err)))
			return domain.ErrEmailClaimed
		}
		return apperror.Internal(err)
	}
	if err := s.memberRepo.Insert(ctx, tx, member); err != nil {
		if db.IsDuplicateKey(err) {
			return memberdomain.ErrAlreadyExists
		}
		return apperror.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperror.Internal(err)
	}
	committed = true
	return nil
}

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return string(appErr.Kind)
	}
	return string(apperror.KindInternal)
}
