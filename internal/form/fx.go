package form

import (
	"github.com/heysheet/heysheet/internal/form/repository"
	"github.com/heysheet/heysheet/internal/form/service"
	"go.uber.org/fx"
)

var Module = fx.Module("form.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
