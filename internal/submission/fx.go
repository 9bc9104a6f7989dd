package submission

import (
	"github.com/heysheet/heysheet/internal/sink"
	"github.com/heysheet/heysheet/internal/submission/domain"
	"github.com/heysheet/heysheet/internal/submission/repository"
	"github.com/heysheet/heysheet/internal/submission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("submission",
	fx.Provide(
		repository.Provide,
		provideStatusStore,
		service.NewService,
	),
)

// The repository doubles as the dispatcher's status store.
func provideStatusStore(repo domain.Repository) sink.StatusStore {
	return repo
}
