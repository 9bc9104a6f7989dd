package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/internal/analytics"
	"github.com/heysheet/heysheet/internal/clock"
	"github.com/heysheet/heysheet/internal/config"
	"github.com/heysheet/heysheet/internal/form"
	"github.com/heysheet/heysheet/internal/integration"
	"github.com/heysheet/heysheet/internal/migration"
	"github.com/heysheet/heysheet/internal/observability"
	"github.com/heysheet/heysheet/internal/providers/email"
	"github.com/heysheet/heysheet/internal/providers/slack"
	"github.com/heysheet/heysheet/internal/ratelimit"
	"github.com/heysheet/heysheet/internal/notion"
	"github.com/heysheet/heysheet/internal/server"
	"github.com/heysheet/heysheet/internal/sheets"
	"github.com/heysheet/heysheet/internal/sink"
	"github.com/heysheet/heysheet/internal/storage"
	"github.com/heysheet/heysheet/internal/submission"
	"github.com/heysheet/heysheet/internal/subscription"
	"github.com/heysheet/heysheet/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		analytics.Module,
		storage.Module,
		slack.Module,
		email.Module,
		ratelimit.Module,

		integration.Module,
		subscription.Module,
		form.Module,
		sheets.Module,
		notion.Module,
		sink.Module,
		submission.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
