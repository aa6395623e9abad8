package events

import (
	"context"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"events",
		logger.WithNamedLogger("events"),
		fx.Provide(NewBus),
		fx.Invoke(func(bus *Bus, lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					bus.Close()
					return nil
				},
			})
		}),
	)
}
