package auth

import (
	"github.com/sds-studio/sds/internal/auth/repository"
	"github.com/sds-studio/sds/internal/auth/service"
	"github.com/sds-studio/sds/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
