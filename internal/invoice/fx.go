package invoice

import (
	"github.com/sds-studio/sds/internal/invoice/repository"
	"github.com/sds-studio/sds/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
