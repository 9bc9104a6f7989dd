package sink

import (
	"go.uber.org/fx"
)

var Module = fx.Module("sink",
	fx.Provide(NewSlackSink),
	fx.Provide(NewEmailSink),
	fx.Provide(NewDispatcher),
)
