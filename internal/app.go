package internal

import (
	"context"

	"github.com/capcom6/go-infra-fx/validator"
	"github.com/gitsyncd/gitsyncd/internal/config"
	"github.com/gitsyncd/gitsyncd/internal/events"
	"github.com/gitsyncd/gitsyncd/internal/git"
	"github.com/gitsyncd/gitsyncd/internal/gitsync"
	"github.com/gitsyncd/gitsyncd/internal/repositories"
	"github.com/gitsyncd/gitsyncd/internal/secrets"
	"github.com/gitsyncd/gitsyncd/internal/server"
	"github.com/gitsyncd/gitsyncd/pkg/badgerfx"
	"github.com/go-core-fx/fiberfx"
	"github.com/go-core-fx/healthfx"
	"github.com/go-core-fx/logger"
	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Run() {
	fx.New(
		// CORE MODULES
		logger.Module(),
		logger.WithFxDefaultLogger(),
		badgerfx.Module(),
		healthfx.Module(),
		fiberfx.Module(),
		validator.Module,
		//
		// APP MODULES
		config.Module(),
		server.Module(),
		events.Module(),
		fx.Provide(func() afero.Fs { return afero.NewOsFs() }),
		//
		// BUSINESS MODULES
		fx.Provide(func() healthfx.Version { return healthfx.Version{Version: "0.1.0", ReleaseID: 1} }),
		git.Module(),
		secrets.Module(),
		repositories.Module(),
		gitsync.Module(),
		//
		// WIRING
		fx.Provide(
			func(svc *git.Service) gitsync.Gateway { return svc },
			func(svc *git.Service) secrets.StagedLister { return svc },
			func(scanner *secrets.Scanner) gitsync.SecretScanner { return scanner },
			func(repo *repositories.Repository) gitsync.ConfigStore { return repo },
			func(bus *events.Bus) gitsync.Publisher { return bus },
		),
		//
		// LIFECYCLE MANAGEMENT
		fx.Invoke(func(lc fx.Lifecycle, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					logger.Info("🚀 gitsyncd starting up")
					return nil
				},
				OnStop: func(_ context.Context) error {
					logger.Info("🛑 gitsyncd shutting down gracefully")
					return nil
				},
			})
		}),
	).Run()
}
