package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sds-studio/sds/internal/analytics"
	"github.com/sds-studio/sds/internal/auth"
	"github.com/sds-studio/sds/internal/checkout"
	"github.com/sds-studio/sds/internal/config"
	"github.com/sds-studio/sds/internal/contact"
	"github.com/sds-studio/sds/internal/invoice"
	"github.com/sds-studio/sds/internal/migration"
	"github.com/sds-studio/sds/internal/observability/metrics"
	"github.com/sds-studio/sds/internal/payment"
	"github.com/sds-studio/sds/internal/project"
	"github.com/sds-studio/sds/internal/providers/email"
	"github.com/sds-studio/sds/internal/ratelimit"
	"github.com/sds-studio/sds/internal/seo"
	"github.com/sds-studio/sds/internal/server"
	"github.com/sds-studio/sds/pkg/db"
	"github.com/sds-studio/sds/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		metrics.Module,
		migration.Module,

		email.Module,
		ratelimit.Module,
		analytics.Module,
		auth.Module,
		contact.Module,
		project.Module,
		invoice.Module,
		payment.Module,
		checkout.Module,
		seo.Module,

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
