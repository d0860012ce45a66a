package auth

import (
	"github.com/smallbiznis/referralhub/internal/auth/password"
	"github.com/smallbiznis/referralhub/internal/auth/repository"
	"github.com/smallbiznis/referralhub/internal/auth/service"
	"github.com/smallbiznis/referralhub/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(password.NewDefaultHasher),
	fx.Provide(token.Provide),
	fx.Provide(service.New),
)
