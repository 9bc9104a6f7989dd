package analytics

import (
	"github.com/heysheet/heysheet/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics",
	fx.Provide(provideGeoLookup),
	fx.Provide(NewCollector),
)

func provideGeoLookup(cfg config.Config) GeoLookup {
	return NewHTTPGeoLookup(cfg.Geo)
}
