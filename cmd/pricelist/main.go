package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pricelist/internal/clock"
	"github.com/smallbiznis/pricelist/internal/config"
	"github.com/smallbiznis/pricelist/internal/logger"
	"github.com/smallbiznis/pricelist/internal/migration"
	"github.com/smallbiznis/pricelist/internal/server"
	"github.com/smallbiznis/pricelist/pkg/db"
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
