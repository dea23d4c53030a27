package payment

import (
	"github.com/sds-studio/sds/internal/config"
	"github.com/sds-studio/sds/internal/payment/adapters"
	"github.com/sds-studio/sds/internal/payment/adapters/coinbase"
	"github.com/sds-studio/sds/internal/payment/adapters/stripe"
	"github.com/sds-studio/sds/internal/payment/repository"
	paymentservice "github.com/sds-studio/sds/internal/payment/service"
	"github.com/sds-studio/sds/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(cfg config.Config) *adapters.Registry {
		return adapters.NewRegistry(
			stripe.NewAdapter(cfg.StripeWebhookSecret),
			coinbase.NewAdapter(cfg.CoinbaseWebhookSecret),
		)
	}),
	fx.Provide(paymentservice.NewService),
	fx.Provide(webhook.NewService),
)
