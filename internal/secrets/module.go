package secrets

import (
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"secrets",
		logger.WithNamedLogger("secrets"),
		fx.Provide(NewScanner),
	)
}
