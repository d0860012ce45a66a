package admission

import (
	"github.com/smallbiznis/referralhub/internal/admission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("admission.service",
	fx.Provide(service.New),
)
