package audit

import (
	"github.com/smallbiznis/referralhub/internal/audit/repository"
	"github.com/smallbiznis/referralhub/internal/audit/service"
	"go.uber.org/fx"
)

// Module exposes only the audit service. The trail is append-only, so the
// repository stays private to this module.
var Module = fx.Module("audit.service",
	fx.Provide(fx.Private, repository.Provide),
	fx.Provide(service.NewService),
)
