// Package authorization decides which role may perform which action on
// which object.
package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	auditdomain "github.com/smallbiznis/referralhub/internal/audit/domain"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed model.conf
var modelText string

const (
	ObjectIntention  = "intention"
	ObjectMember     = "member"
	ObjectIndication = "indication"
	ObjectThanks     = "thanks"
	ObjectDashboard  = "dashboard"
)

const (
	ActionView       = "view"
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDecide     = "decide"
	ActionTransition = "transition"
	ActionExport     = "export"
)

var (
	ErrInvalidObject = apperror.New(apperror.KindValidation, "invalid_object", "authorization object is required")
	ErrInvalidAction = apperror.New(apperror.KindValidation, "invalid_action", "authorization action is required")
)

type Service interface {
	Authorize(ctx context.Context, principal *authdomain.Principal, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, principal *authdomain.Principal, object, action string) error {
	if principal == nil || !principal.Role.Valid() {
		return authdomain.ErrMissingCredential
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(roleSubject(principal.Role), object, action)
	if err != nil {
		return apperror.Internal(err)
	}
	if !allowed {
		s.auditDenied(ctx, principal, object, action)
		return authdomain.ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) auditDenied(ctx context.Context, principal *authdomain.Principal, object, action string) {
	s.log.Info("access denied",
		zap.String("subject", principal.Subject),
		zap.String("role", string(principal.Role)),
		zap.String("object", object),
		zap.String("action", action),
	)
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.Record(ctx, auditdomain.Entry{
		ActorType:  principal.Method,
		ActorID:    principal.Subject,
		Action:     auditdomain.ActionAccessDenied,
		TargetType: object,
		Metadata: map[string]any{
			"action": action,
			"role":   string(principal.Role),
		},
	})
}

func roleSubject(role authdomain.Role) string {
	return "role:" + strings.ToLower(string(role))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Admins manage everything.
		{"role:admin", ObjectIntention, "*"},
		{"role:admin", ObjectMember, "*"},
		{"role:admin", ObjectIndication, "*"},
		{"role:admin", ObjectThanks, "*"},
		{"role:admin", ObjectDashboard, "*"},

		// Members work the referral ledger.
		{"role:member", ObjectIndication, ActionView},
		{"role:member", ObjectIndication, ActionCreate},
		{"role:member", ObjectIndication, ActionTransition},
		{"role:member", ObjectThanks, ActionView},
		{"role:member", ObjectThanks, ActionCreate},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
