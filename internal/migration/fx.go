package migration

import (
	"github.com/heysheet/heysheet/internal/config"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
	integrationdomain "github.com/heysheet/heysheet/internal/integration/domain"
	submissiondomain "github.com/heysheet/heysheet/internal/submission/domain"
	subscriptiondomain "github.com/heysheet/heysheet/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Versioned migrations target postgres. Other dialects cover
			// local development only and take the gorm schema directly.
			return conn.AutoMigrate(
				&formdomain.Form{},
				&submissiondomain.Submission{},
				&subscriptiondomain.Subscription{},
				&integrationdomain.Account{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
