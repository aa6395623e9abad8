package git

import (
	"context"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"git",
		logger.WithNamedLogger("git"),
		fx.Provide(NewService),
		fx.Invoke(func(lc fx.Lifecycle, svc *Service, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if !svc.IsBackendInstalled(ctx) {
						logger.Warn("git is not installed, repository operations will fail")
					}
					return nil
				},
			})
		}),
	)
}
