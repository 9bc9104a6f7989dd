package integration

import (
	"github.com/heysheet/heysheet/internal/integration/service"
	"go.uber.org/fx"
)

var Module = fx.Module("integration.service",
	fx.Provide(service.NewService),
)
