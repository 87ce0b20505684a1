package auth

import (
	"github.com/smallbiznis/billfold/internal/auth/local"
	"github.com/smallbiznis/billfold/internal/auth/repository"
	"github.com/smallbiznis/billfold/internal/auth/service"
	"github.com/smallbiznis/billfold/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(session.NewManager),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(local.NewHandler),
)
