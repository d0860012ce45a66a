package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/internal/auth/domain"
	"github.com/smallbiznis/referralhub/internal/auth/password"
	"github.com/smallbiznis/referralhub/internal/auth/token"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Hasher password.Hasher
	Issuer *token.Issuer
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	hasher password.Hasher
	issuer *token.Issuer
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		repo:   p.Repo,
		hasher: p.Hasher,
		issuer: p.Issuer,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	// Unknown email and wrong password are indistinguishable to the caller.
	if user == nil || !user.Active || !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.log.Info("login rejected", zap.Bool("known_user", user != nil))
		return nil, domain.ErrInvalidCredentials
	}

	signed, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.LoginResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	principal, err := s.issuer.Parse(rawToken)
	if err != nil {
		return nil, apperror.Wrap(domain.ErrInvalidToken, err)
	}

	user, err := s.repo.FindByID(ctx, s.db, principal.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil || !user.Active {
		return nil, domain.ErrInvalidToken
	}
	// Role changes take effect without waiting for token expiry.
	principal.Role = user.Role
	principal.Email = user.Email
	return principal, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || parsed <= 0 {
		return nil, domain.ErrInvalidID
	}
	user, err := s.repo.FindByID(ctx, s.db, snowflake.ID(parsed))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
