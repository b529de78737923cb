package strategy

import (
	"paper_bot/internal/modules/config"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			func(cfg *config.Config) (*Evaluator, error) {
				return NewFromNames(cfg.Trading.Strategies)
			},
		),
	)
}
