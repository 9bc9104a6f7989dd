package notion

import (
	integrationdomain "github.com/heysheet/heysheet/internal/integration/domain"
	"github.com/heysheet/heysheet/internal/sink"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notion",
	fx.Provide(fx.Annotate(provideNotionSink, fx.ResultTags(`name:"notion"`))),
)

func provideNotionSink(log *zap.Logger, accounts integrationdomain.Service) sink.Sink {
	return NewAdapter(log, accounts, nil)
}
