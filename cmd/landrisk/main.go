package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/config"
	"github.com/landriskai/landrisk/internal/logger"
	"github.com/landriskai/landrisk/internal/migration"
	"github.com/landriskai/landrisk/internal/scheduler"
	"github.com/landriskai/landrisk/internal/server"
	"github.com/landriskai/landrisk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		server.Module,
		scheduler.Module,
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
