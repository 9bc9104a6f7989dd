package slack

import (
	"github.com/heysheet/heysheet/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.slack",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.Slack.BotToken == "" {
		return &NoOpProvider{}
	}
	return NewAPI(cfg.Slack.BotToken)
}
