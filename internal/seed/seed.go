package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	"github.com/smallbiznis/referralhub/internal/auth/password"
	authservice "github.com/smallbiznis/referralhub/internal/auth/service"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrWeakBootstrapPassword = errors.New("BOOTSTRAP_ADMIN_PASSWORD does not meet the password rules")

type Seeder struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	hasher password.Hasher
	repo   authdomain.Repository
}

func NewSeeder(db *gorm.DB, log *zap.Logger, genID *snowflake.Node, clk clock.Clock, hasher password.Hasher, repo authdomain.Repository) *Seeder {
	return &Seeder{
		db:     db,
		log:    log.Named("seed"),
		genID:  genID,
		clock:  clk,
		hasher: hasher,
		repo:   repo,
	}
}

// EnsureAdmin creates the bootstrap ADMIN user when an e-mail is configured
// and no user owns it yet. An existing user is left untouched.
func (s *Seeder) EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) (*authdomain.User, bool, error) {
	email := authservice.NormalizeEmail(cfg.AdminEmail)
	if email == "" {
		s.log.Debug("no bootstrap admin configured")
		return nil, false, nil
	}

	var (
		user    *authdomain.User
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Role != authdomain.RoleAdmin {
				s.log.Warn("bootstrap admin e-mail belongs to a non admin user", zap.String("user_id", existing.ID.String()))
			}
			user = existing
			return nil
		}

		if !password.ValidateStrength(cfg.AdminPassword) {
			return ErrWeakBootstrapPassword
		}
		hash, err := s.hasher.Hash(cfg.AdminPassword)
		if err != nil {
			return err
		}

		name := strings.TrimSpace(cfg.AdminName)
		if name == "" {
			name = "Administrador"
		}
		now := s.clock.Now().UTC()
		user = &authdomain.User{
			ID:           s.genID.Generate(),
			Email:        email,
			PasswordHash: hash,
			Name:         name,
			Role:         authdomain.RoleAdmin,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Insert(ctx, tx, user); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.log.Info("bootstrap admin created", zap.String("user_id", user.ID.String()))
	}
	return user, created, nil
}
