package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/config"
	"github.com/smallbiznis/referralhub/internal/migration"
	"github.com/smallbiznis/referralhub/internal/observability"
	"github.com/smallbiznis/referralhub/internal/seed"
	"github.com/smallbiznis/referralhub/internal/server"
	"github.com/smallbiznis/referralhub/pkg/db"
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
		server.Module,
		seed.Module,
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
