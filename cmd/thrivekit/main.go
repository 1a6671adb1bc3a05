package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/thrivekit/thrivekit/internal/alerting"
	"github.com/thrivekit/thrivekit/internal/billing"
	"github.com/thrivekit/thrivekit/internal/clock"
	"github.com/thrivekit/thrivekit/internal/config"
	"github.com/thrivekit/thrivekit/internal/hierarchy"
	"github.com/thrivekit/thrivekit/internal/implementation"
	"github.com/thrivekit/thrivekit/internal/logger"
	"github.com/thrivekit/thrivekit/internal/migration"
	"github.com/thrivekit/thrivekit/internal/providers/payment"
	"github.com/thrivekit/thrivekit/internal/server"
	"github.com/thrivekit/thrivekit/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		alerting.Module,
		migration.Module,

		// Functional domains
		payment.Module,
		hierarchy.Module,
		billing.Module,
		implementation.Module,

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
