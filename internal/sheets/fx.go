package sheets

import (
	integrationdomain "github.com/heysheet/heysheet/internal/integration/domain"
	"github.com/heysheet/heysheet/internal/sink"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("sheets",
	fx.Provide(provideSheetsAppender),
)

func provideSheetsAppender(log *zap.Logger, accounts integrationdomain.Service) sink.RowAppender {
	return NewAdapter(log, accounts, nil)
}
