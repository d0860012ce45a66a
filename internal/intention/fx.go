package intention

import (
	"github.com/smallbiznis/referralhub/internal/intention/repository"
	"github.com/smallbiznis/referralhub/internal/intention/service"
	"go.uber.org/fx"
)

var Module = fx.Module("intention.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
