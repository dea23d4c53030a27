package contact

import (
	"github.com/sds-studio/sds/internal/contact/repository"
	"github.com/sds-studio/sds/internal/contact/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contact.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
