package checkout

import (
	"github.com/sds-studio/sds/internal/checkout/coinbasegw"
	"github.com/sds-studio/sds/internal/checkout/domain"
	"github.com/sds-studio/sds/internal/checkout/service"
	"github.com/sds-studio/sds/internal/checkout/stripegw"
	"github.com/sds-studio/sds/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("checkout.service",
	fx.Provide(func(cfg config.Config) domain.StripeGateway {
		return stripegw.New(cfg.StripeAPIKey)
	}),
	fx.Provide(func(cfg config.Config) domain.CoinbaseGateway {
		return coinbasegw.New(cfg.CoinbaseAPIKey)
	}),
	fx.Provide(service.New),
)
