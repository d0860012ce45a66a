package seed

import (
	"context"

	"github.com/smallbiznis/referralhub/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("seed",
	fx.Provide(NewSeeder),
	fx.Invoke(func(s *Seeder, cfg config.Config) error {
		_, _, err := s.EnsureAdmin(context.Background(), cfg.Bootstrap)
		return err
	}),
)
