package project

import (
	"github.com/sds-studio/sds/internal/project/repository"
	"github.com/sds-studio/sds/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
